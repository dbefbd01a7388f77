package handlers

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/thereayou/roomly/internal/services"
	"github.com/thereayou/roomly/internal/websocket"
)

// MessageHandler dispatches websocket frames into the chat service and
// publishes the resulting events back to the room's message channel.
type MessageHandler struct {
	chat *services.ChatService
	hub  *websocket.Hub
	log  zerolog.Logger
}

func NewMessageHandler(chat *services.ChatService, hub *websocket.Hub, log zerolog.Logger) *MessageHandler {
	return &MessageHandler{chat: chat, hub: hub, log: log}
}

func (h *MessageHandler) HandleMessage(client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypeMessage:
		return h.handleSend(client, msg)

	case websocket.TypeMessageSeen:
		return h.handleSeen(client, msg)

	default:
		h.log.Warn().Str("type", string(msg.Type)).Msg("unknown websocket message type")
		return nil
	}
}

func (h *MessageHandler) handleSend(client *websocket.Client, msg *websocket.Message) error {
	if msg.RoomID == nil {
		return websocket.ErrRoomRequired
	}
	if !client.IsInRoom(*msg.RoomID) {
		return websocket.ErrUserNotInRoom
	}

	var payload struct {
		Content     string `json:"content"`
		ContentType string `json:"content_type"`
	}
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return websocket.ErrInvalidMessage
	}
	if payload.ContentType == "" {
		payload.ContentType = "text"
	}

	event, err := h.chat.SendMessage(context.Background(), client.UserID, *msg.RoomID, payload.Content, payload.ContentType)
	if err != nil {
		return err
	}

	h.hub.PublishMessage(*msg.RoomID, event)
	return nil
}

func (h *MessageHandler) handleSeen(client *websocket.Client, msg *websocket.Message) error {
	if msg.RoomID == nil {
		return websocket.ErrRoomRequired
	}

	var payload struct {
		MessageID uuid.UUID `json:"message_id"`
	}
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return websocket.ErrInvalidMessage
	}

	event, err := h.chat.MarkMessageSeen(context.Background(), client.UserID, *msg.RoomID, payload.MessageID)
	if err != nil {
		return err
	}

	// The updated seen-by set goes to the same room channel the message
	// itself was delivered on.
	h.hub.PublishMessage(*msg.RoomID, event)
	return nil
}
