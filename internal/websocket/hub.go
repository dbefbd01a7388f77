package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// MessageType tags the websocket envelope.
type MessageType string

const (
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"

	TypeMessage     MessageType = "message"
	TypeMessageSeen MessageType = "message_seen"

	TypeRoomJoin  MessageType = "room_join"
	TypeRoomLeave MessageType = "room_leave"
	TypeRoomUsers MessageType = "room_users"

	TypeUserStatus MessageType = "user_status"
	TypeError      MessageType = "error"
)

// Message is the wire envelope for everything on a websocket connection.
type Message struct {
	Type      MessageType     `json:"type"`
	RoomID    *uuid.UUID      `json:"room_id,omitempty"`
	UserID    uuid.UUID       `json:"user_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
	Rooms  map[uuid.UUID]bool
	Hub    *Hub
	mu     sync.RWMutex
}

// PresenceNotifier is told when a user gains their first connection and
// when they lose their last one.
type PresenceNotifier interface {
	UserConnected(userID uuid.UUID)
	UserDisconnected(userID uuid.UUID)
}

// Hub is the fanout channel: it tracks live connections and delivers
// events to every current subscriber of a room's message or status
// channel. Delivery is fire-and-forget; a room with no subscribers is a
// no-op and a slow client is skipped, never waited on.
type Hub struct {
	clients map[uuid.UUID]*Client

	// One user may hold several connections.
	userClients map[uuid.UUID]map[uuid.UUID]*Client

	rooms map[uuid.UUID]map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	presence PresenceNotifier

	mu sync.RWMutex

	log zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(log zerolog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[uuid.UUID]map[uuid.UUID]*Client),
		rooms:       make(map[uuid.UUID]map[uuid.UUID]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetPresence wires the presence broadcaster. Must be called before the
// first connection registers.
func (h *Hub) SetPresence(p PresenceNotifier) {
	h.presence = p
}

// Run processes registration and the keepalive ticker until Stop.
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.ping()
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
	h.clients = make(map[uuid.UUID]*Client)
	h.userClients = make(map[uuid.UUID]map[uuid.UUID]*Client)
	h.rooms = make(map[uuid.UUID]map[uuid.UUID]*Client)
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()

	h.clients[client.ID] = client

	first := false
	if _, ok := h.userClients[client.UserID]; !ok {
		h.userClients[client.UserID] = make(map[uuid.UUID]*Client)
		first = true
	}
	h.userClients[client.UserID][client.ID] = client

	h.mu.Unlock()

	h.log.Info().
		Str("client_id", client.ID.String()).
		Str("user_id", client.UserID.String()).
		Msg("client registered")

	if first && h.presence != nil {
		go h.presence.UserConnected(client.UserID)
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()

	last := false
	if _, ok := h.clients[client.ID]; ok {
		for roomID := range client.Rooms {
			h.removeFromRoomLocked(client, roomID)
		}

		if userClients, ok := h.userClients[client.UserID]; ok {
			delete(userClients, client.ID)
			if len(userClients) == 0 {
				delete(h.userClients, client.UserID)
				last = true
			}
		}

		delete(h.clients, client.ID)
		close(client.Send)

		h.log.Info().
			Str("client_id", client.ID.String()).
			Str("user_id", client.UserID.String()).
			Msg("client unregistered")
	}

	h.mu.Unlock()

	if last && h.presence != nil {
		go h.presence.UserDisconnected(client.UserID)
	}
}

// JoinRoom subscribes the client to a room's channels.
func (h *Hub) JoinRoom(client *Client, roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[uuid.UUID]*Client)
	}

	h.rooms[roomID][client.ID] = client
	client.mu.Lock()
	client.Rooms[roomID] = true
	client.mu.Unlock()

	h.sendRoomUsers(client, roomID)
}

func (h *Hub) LeaveRoom(client *Client, roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomLocked(client, roomID)
}

func (h *Hub) removeFromRoomLocked(client *Client, roomID uuid.UUID) {
	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if _, ok := room[client.ID]; !ok {
		return
	}
	delete(room, client.ID)
	client.mu.Lock()
	delete(client.Rooms, roomID)
	client.mu.Unlock()

	if len(room) == 0 {
		delete(h.rooms, roomID)
	}
}

// PublishMessage delivers an event to the room's message channel.
func (h *Hub) PublishMessage(roomID uuid.UUID, event any) {
	h.publish(TypeMessage, roomID, event)
}

// PublishStatus delivers an event to the room's status channel.
func (h *Hub) PublishStatus(roomID uuid.UUID, event any) {
	h.publish(TypeUserStatus, roomID, event)
}

func (h *Hub) publish(msgType MessageType, roomID uuid.UUID, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID.String()).Msg("marshal event")
		return
	}

	envelope := Message{
		Type:      msgType,
		RoomID:    &roomID,
		Data:      data,
		Timestamp: time.Now(),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID.String()).Msg("marshal envelope")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[roomID] {
		select {
		case client.Send <- payload:
		default:
			h.log.Warn().Str("client_id", client.ID.String()).Msg("send channel full, dropping event")
		}
	}
}

func (h *Hub) sendRoomUsers(client *Client, roomID uuid.UUID) {
	users := make([]uuid.UUID, 0)
	if room, ok := h.rooms[roomID]; ok {
		seen := make(map[uuid.UUID]bool)
		for _, c := range room {
			if !seen[c.UserID] {
				seen[c.UserID] = true
				users = append(users, c.UserID)
			}
		}
	}

	msg := Message{
		Type:      TypeRoomUsers,
		RoomID:    &roomID,
		UserID:    client.UserID,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(users)
	if err != nil {
		return
	}
	msg.Data = data
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case client.Send <- payload:
	default:
		h.log.Warn().Str("client_id", client.ID.String()).Msg("send channel full, dropping room users")
	}
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := Message{
		Type:      TypePing,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// IsUserOnline reports whether the user currently holds at least one
// connection. This is the live presence capability behind the members
// listing's online flag.
func (h *Hub) IsUserOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.userClients[userID]) > 0
}

// RoomUsers returns the distinct users currently subscribed to a room.
func (h *Hub) RoomUsers(roomID uuid.UUID) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[uuid.UUID]bool)
	users := make([]uuid.UUID, 0)
	if room, ok := h.rooms[roomID]; ok {
		for _, client := range room {
			if !seen[client.UserID] {
				seen[client.UserID] = true
				users = append(users, client.UserID)
			}
		}
	}
	return users
}
