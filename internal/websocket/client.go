package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512KB
)

// ClientMessageHandler receives every frame the pumps do not consume
// themselves.
type ClientMessageHandler interface {
	HandleMessage(client *Client, msg *Message) error
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Rooms:  make(map[uuid.UUID]bool),
		Hub:    hub,
	}
}

// ReadPump reads frames until the connection drops, then unregisters the
// client. Keepalive and room subscription frames are consumed here;
// everything else is passed to handler, with failures reported back on
// the error channel.
func (c *Client) ReadPump(handler ClientMessageHandler) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn().Err(err).Str("client_id", c.ID.String()).Msg("websocket read error")
			}
			return
		}

		// The client never speaks for anyone else.
		msg.UserID = c.UserID

		if c.consumeControl(&msg) {
			continue
		}
		if handler == nil {
			continue
		}
		if err := handler.HandleMessage(c, &msg); err != nil {
			c.SendError(err.Error())
		}
	}
}

// consumeControl handles pong and room subscription frames inline.
func (c *Client) consumeControl(msg *Message) bool {
	switch msg.Type {
	case TypePong:
		return true
	case TypeRoomJoin:
		if msg.RoomID != nil {
			c.Hub.JoinRoom(c, *msg.RoomID)
		}
		return true
	case TypeRoomLeave:
		if msg.RoomID != nil {
			c.Hub.LeaveRoom(c, *msg.RoomID)
		}
		return true
	}
	return false
}

// WritePump drains the send channel to the connection and keeps it alive
// with pings. A closed send channel means the hub dropped the client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage queues a typed frame for this client. Never blocks; a full
// queue returns ErrClientQueueFull.
func (c *Client) SendMessage(msgType MessageType, data interface{}) error {
	msg := Message{Type: msgType, Timestamp: time.Now()}

	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return err
		}
		msg.Data = encoded
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case c.Send <- payload:
		return nil
	default:
		return ErrClientQueueFull
	}
}

func (c *Client) SendError(errorMsg string) {
	c.SendMessage(TypeError, map[string]string{"error": errorMsg})
}

func (c *Client) IsInRoom(roomID uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Rooms[roomID]
}

func (c *Client) GetRooms() []uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rooms := make([]uuid.UUID, 0, len(c.Rooms))
	for roomID := range c.Rooms {
		rooms = append(rooms, roomID)
	}
	return rooms
}
