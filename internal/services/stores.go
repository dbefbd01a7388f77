package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/roomly/internal/models"
)

// Store interfaces implemented by internal/database. The services own the
// business rules; the stores own the transactional boundaries (room +
// creator membership all-or-nothing, capacity check under the room lock,
// seen-by union under the message lock).

type RoomStore interface {
	// InsertRoom returns apperr.ErrCodeTaken on a room code collision.
	InsertRoom(ctx context.Context, room *models.Room, creator *models.Membership) error
	RoomByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	RoomByCode(ctx context.Context, code string) (*models.Room, error)
	DeleteRoom(ctx context.Context, id uuid.UUID) error
	SearchRooms(ctx context.Context, query string, page, size int) ([]models.Room, int64, error)
	RoomsByCreator(ctx context.Context, creatorID uuid.UUID, page, size int) ([]models.Room, int64, error)
}

type MemberStore interface {
	AddMember(ctx context.Context, roomID, userID uuid.UUID, role models.MemberRole) (*models.Membership, error)
	RemoveMember(ctx context.Context, roomID, userID uuid.UUID) error
	IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
	MembersByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Membership, error)
	MembershipsByUser(ctx context.Context, userID uuid.UUID) ([]models.Membership, error)
	CountMembers(ctx context.Context, roomID uuid.UUID) (int64, error)
}

type MessageStore interface {
	InsertMessage(ctx context.Context, message *models.Message) error
	MessageByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	MarkSeen(ctx context.Context, messageID, userID uuid.UUID) (*models.Message, error)
	DeleteMessage(ctx context.Context, id uuid.UUID) error
	MessagesByRoom(ctx context.Context, roomID uuid.UUID, page, size int) ([]models.Message, int64, error)
}

type UserStore interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CodeGenerator draws room code candidates (see internal/roomcode).
type CodeGenerator interface {
	Generate() string
}

// PresenceLookup answers point-in-time "is this user connected" queries.
// Implemented by the websocket hub; presence is never persisted.
type PresenceLookup interface {
	IsUserOnline(userID uuid.UUID) bool
}

// StatusPublisher delivers a status event to every current subscriber of
// a room's status channel. Fire-and-forget: no subscribers is a no-op.
type StatusPublisher interface {
	PublishStatus(roomID uuid.UUID, event any)
}
