package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/roomly/internal/models"
)

// RoomSummary is the room view returned by every room operation. Member
// count and password presence are derived at response time, never cached.
type RoomSummary struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Code            string    `json:"code"`
	MaxMembers      int       `json:"max_members"`
	CreatorUsername string    `json:"creator_username"`
	MemberCount     int64     `json:"member_count"`
	HasPassword     bool      `json:"has_password"`
}

type RoomPage struct {
	Rooms []RoomSummary `json:"rooms"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
	Total int64         `json:"total"`
}

type RoomMemberInfo struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	Role      string    `json:"role"`
	Online    bool      `json:"online"`
}

// MessageEvent is the fully hydrated message shape, ready for fanout to
// the room's message channel.
type MessageEvent struct {
	ID          uuid.UUID   `json:"id"`
	RoomID      uuid.UUID   `json:"room_id"`
	UserID      uuid.UUID   `json:"user_id"`
	Username    string      `json:"username"`
	AvatarURL   string      `json:"avatar_url"`
	Content     string      `json:"content"`
	ContentType string      `json:"content_type"`
	Timestamp   time.Time   `json:"timestamp"`
	SeenBy      []uuid.UUID `json:"seen_by"`
}

type MessagePage struct {
	Messages []MessageEvent `json:"messages"`
	Page     int            `json:"page"`
	Size     int            `json:"size"`
	Total    int64          `json:"total"`
}

// StatusEvent is published to a room's status channel on presence
// transitions. Status is "online" or "offline".
type StatusEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	RoomID    uuid.UUID `json:"room_id"`
	Status    string    `json:"status"`
}

func newRoomSummary(room *models.Room, memberCount int64) RoomSummary {
	return RoomSummary{
		ID:              room.ID,
		Name:            room.Name,
		Code:            room.Code,
		MaxMembers:      room.MaxMembers,
		CreatorUsername: room.Creator.Username,
		MemberCount:     memberCount,
		HasPassword:     room.HasPassword(),
	}
}

func newMessageEvent(message *models.Message, author *models.User) MessageEvent {
	return MessageEvent{
		ID:          message.ID,
		RoomID:      message.RoomID,
		UserID:      message.UserID,
		Username:    author.Username,
		AvatarURL:   author.AvatarURL,
		Content:     message.Content,
		ContentType: strings.ToLower(string(message.ContentType)),
		Timestamp:   message.CreatedAt,
		SeenBy:      message.SeenByIDs(),
	}
}
