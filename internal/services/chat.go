package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/thereayou/roomly/internal/apperr"
	"github.com/thereayou/roomly/internal/models"
)

// ChatService orchestrates the membership ledger and the message store.
// Every mutation is gated on membership; the service returns hydrated
// events and leaves delivery to the fanout channel.
type ChatService struct {
	rooms    RoomStore
	members  MemberStore
	messages MessageStore
	users    UserStore
	log      zerolog.Logger
}

func NewChatService(rooms RoomStore, members MemberStore, messages MessageStore, users UserStore, log zerolog.Logger) *ChatService {
	return &ChatService{
		rooms:    rooms,
		members:  members,
		messages: messages,
		users:    users,
		log:      log,
	}
}

// SendMessage appends a message to the room. The sender is part of the
// seen-by set from the start.
func (s *ChatService) SendMessage(ctx context.Context, userID, roomID uuid.UUID, content, contentType string) (*MessageEvent, error) {
	if content == "" {
		return nil, apperr.New(apperr.ValidationFailed, "Message content is required")
	}
	ct, ok := models.ValidContentType(contentType)
	if !ok {
		return nil, apperr.Newf(apperr.InvalidContentType, "Invalid content type: %s", contentType)
	}

	if _, err := s.rooms.RoomByID(ctx, roomID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	sender, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		RoomID:      roomID,
		UserID:      userID,
		Content:     content,
		ContentType: ct,
	}
	message.AddSeen(userID)

	if err := s.messages.InsertMessage(ctx, message); err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("room_id", roomID.String()).
		Str("message_id", message.ID.String()).
		Msg("message stored")

	event := newMessageEvent(message, sender)
	return &event, nil
}

// MarkMessageSeen adds the caller to the message's seen-by set and
// returns the updated event. Idempotent per (message, user).
func (s *ChatService) MarkMessageSeen(ctx context.Context, userID, roomID, messageID uuid.UUID) (*MessageEvent, error) {
	if _, err := s.rooms.RoomByID(ctx, roomID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	message, err := s.messages.MessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.RoomID != roomID {
		return nil, apperr.New(apperr.WrongRoom, "Message does not belong to this room")
	}

	updated, err := s.messages.MarkSeen(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}

	author, err := s.users.UserByID(ctx, updated.UserID)
	if err != nil {
		return nil, err
	}

	event := newMessageEvent(updated, author)
	return &event, nil
}

// GetMessageHistory pages the room history, newest first.
func (s *ChatService) GetMessageHistory(ctx context.Context, userID, roomID uuid.UUID, page, size int) (*MessagePage, error) {
	if _, err := s.rooms.RoomByID(ctx, roomID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	messages, total, err := s.messages.MessagesByRoom(ctx, roomID, page, size)
	if err != nil {
		return nil, err
	}

	events := make([]MessageEvent, len(messages))
	for i := range messages {
		events[i] = newMessageEvent(&messages[i], &messages[i].User)
	}
	return &MessagePage{Messages: events, Page: page, Size: size, Total: total}, nil
}

// DeleteMessage removes a message from the room. Room creator only.
func (s *ChatService) DeleteMessage(ctx context.Context, userID, roomID, messageID uuid.UUID) error {
	room, err := s.rooms.RoomByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room.CreatorID != userID {
		return apperr.New(apperr.Forbidden, "Only the room creator can delete messages")
	}

	message, err := s.messages.MessageByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.RoomID != roomID {
		return apperr.New(apperr.WrongRoom, "Message does not belong to this room")
	}

	if err := s.messages.DeleteMessage(ctx, messageID); err != nil {
		return err
	}
	s.log.Info().
		Str("room_id", roomID.String()).
		Str("message_id", messageID.String()).
		Msg("message deleted")
	return nil
}

func (s *ChatService) requireMember(ctx context.Context, roomID, userID uuid.UUID) error {
	ok, err := s.members.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.NotAMember, "User is not a member of the room")
	}
	return nil
}
