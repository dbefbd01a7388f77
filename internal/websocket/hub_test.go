package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func newTestHub() *Hub {
	return NewHub(zerolog.Nop())
}

// testClient builds a client without a network connection; delivery is
// observed on the Send channel.
func testClient(h *Hub, userID uuid.UUID) *Client {
	return NewClient(h, nil, userID)
}

func recvEnvelope(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case payload := <-c.Send:
		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		return msg
	default:
		t.Fatal("no frame queued")
		return Message{}
	}
}

func wantNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.Send:
		t.Fatalf("unexpected frame: %s", payload)
	default:
	}
}

type chanNotifier struct {
	connected    chan uuid.UUID
	disconnected chan uuid.UUID
}

func newChanNotifier() *chanNotifier {
	return &chanNotifier{
		connected:    make(chan uuid.UUID, 8),
		disconnected: make(chan uuid.UUID, 8),
	}
}

func (n *chanNotifier) UserConnected(userID uuid.UUID)    { n.connected <- userID }
func (n *chanNotifier) UserDisconnected(userID uuid.UUID) { n.disconnected <- userID }

func waitFor(t *testing.T, ch chan uuid.UUID, want uuid.UUID) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("notified about %s, want %s", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("no presence notification")
	}
}

func wantQuiet(t *testing.T, ch chan uuid.UUID) {
	t.Helper()
	select {
	case got := <-ch:
		t.Fatalf("unexpected presence notification for %s", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubOnlineTracking(t *testing.T) {
	h := newTestHub()
	userID := uuid.New()
	c1 := testClient(h, userID)
	c2 := testClient(h, userID)

	if h.IsUserOnline(userID) {
		t.Fatal("user online before any connection")
	}

	h.registerClient(c1)
	h.registerClient(c2)
	if !h.IsUserOnline(userID) {
		t.Fatal("user offline with two connections")
	}

	h.unregisterClient(c1)
	if !h.IsUserOnline(userID) {
		t.Fatal("user offline while one connection remains")
	}

	h.unregisterClient(c2)
	if h.IsUserOnline(userID) {
		t.Fatal("user online after last connection dropped")
	}
}

func TestHubPresenceNotifications(t *testing.T) {
	h := newTestHub()
	notifier := newChanNotifier()
	h.SetPresence(notifier)

	userID := uuid.New()
	c1 := testClient(h, userID)
	c2 := testClient(h, userID)

	// Only the first connection announces the user.
	h.registerClient(c1)
	waitFor(t, notifier.connected, userID)
	h.registerClient(c2)
	wantQuiet(t, notifier.connected)

	// Only the last disconnect announces the departure.
	h.unregisterClient(c2)
	wantQuiet(t, notifier.disconnected)
	h.unregisterClient(c1)
	waitFor(t, notifier.disconnected, userID)
}

func TestHubPublishMessage(t *testing.T) {
	h := newTestHub()
	roomID := uuid.New()

	inRoom1 := testClient(h, uuid.New())
	inRoom2 := testClient(h, uuid.New())
	outside := testClient(h, uuid.New())
	for _, c := range []*Client{inRoom1, inRoom2, outside} {
		h.registerClient(c)
	}
	h.JoinRoom(inRoom1, roomID)
	h.JoinRoom(inRoom2, roomID)

	// Joining queues a room_users snapshot; drain it first.
	for _, c := range []*Client{inRoom1, inRoom2} {
		if msg := recvEnvelope(t, c); msg.Type != TypeRoomUsers {
			t.Fatalf("join frame type = %s, want %s", msg.Type, TypeRoomUsers)
		}
	}

	h.PublishMessage(roomID, map[string]string{"content": "hello"})

	for _, c := range []*Client{inRoom1, inRoom2} {
		msg := recvEnvelope(t, c)
		if msg.Type != TypeMessage {
			t.Errorf("type = %s, want %s", msg.Type, TypeMessage)
		}
		if msg.RoomID == nil || *msg.RoomID != roomID {
			t.Errorf("room id = %v, want %s", msg.RoomID, roomID)
		}
		var data map[string]string
		if err := json.Unmarshal(msg.Data, &data); err != nil || data["content"] != "hello" {
			t.Errorf("data = %s", msg.Data)
		}
	}
	wantNoFrame(t, outside)
}

func TestHubPublishStatus(t *testing.T) {
	h := newTestHub()
	roomID := uuid.New()
	c := testClient(h, uuid.New())
	h.registerClient(c)
	h.JoinRoom(c, roomID)
	recvEnvelope(t, c) // room_users snapshot

	h.PublishStatus(roomID, map[string]string{"status": "online"})

	msg := recvEnvelope(t, c)
	if msg.Type != TypeUserStatus {
		t.Errorf("type = %s, want %s", msg.Type, TypeUserStatus)
	}
}

func TestHubPublishNoSubscribers(t *testing.T) {
	h := newTestHub()
	// A room nobody subscribed to is a silent no-op.
	h.PublishMessage(uuid.New(), map[string]string{"content": "void"})
	h.PublishStatus(uuid.New(), map[string]string{"status": "online"})
}

func TestHubLeaveRoom(t *testing.T) {
	h := newTestHub()
	roomID := uuid.New()
	c := testClient(h, uuid.New())
	h.registerClient(c)
	h.JoinRoom(c, roomID)
	recvEnvelope(t, c) // room_users snapshot

	if !c.IsInRoom(roomID) {
		t.Fatal("client not subscribed after join")
	}
	h.LeaveRoom(c, roomID)
	if c.IsInRoom(roomID) {
		t.Fatal("client still subscribed after leave")
	}

	h.PublishMessage(roomID, map[string]string{"content": "hello"})
	wantNoFrame(t, c)
}

func TestHubUnregisterLeavesRooms(t *testing.T) {
	h := newTestHub()
	roomID := uuid.New()
	c := testClient(h, uuid.New())
	h.registerClient(c)
	h.JoinRoom(c, roomID)

	h.unregisterClient(c)

	if users := h.RoomUsers(roomID); len(users) != 0 {
		t.Fatalf("room users after unregister = %v, want none", users)
	}
	// Publishing afterwards must not touch the closed send channel.
	h.PublishMessage(roomID, map[string]string{"content": "late"})
}

func TestHubRoomUsersDistinct(t *testing.T) {
	h := newTestHub()
	roomID := uuid.New()
	userID := uuid.New()
	c1 := testClient(h, userID)
	c2 := testClient(h, userID)
	other := testClient(h, uuid.New())
	for _, c := range []*Client{c1, c2, other} {
		h.registerClient(c)
		h.JoinRoom(c, roomID)
	}

	users := h.RoomUsers(roomID)
	if len(users) != 2 {
		t.Fatalf("room users = %v, want 2 distinct users", users)
	}
}
