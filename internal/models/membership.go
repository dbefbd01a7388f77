package models

import (
	"time"

	"github.com/google/uuid"
)

type MemberRole string

const (
	RoleCreator MemberRole = "CREATOR"
	RoleAdmin   MemberRole = "ADMIN"
	RoleMember  MemberRole = "MEMBER"
)

// Membership is one user's seat in one room. The (room, user) pair is
// unique; exactly one CREATOR row exists per room and is written in the
// same transaction as the room itself.
type Membership struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RoomID   uuid.UUID  `gorm:"not null;uniqueIndex:idx_room_user"`
	UserID   uuid.UUID  `gorm:"not null;uniqueIndex:idx_room_user"`
	Role     MemberRole `gorm:"not null"`
	JoinedAt time.Time  `gorm:"not null"`

	Room Room `gorm:"foreignKey:RoomID"`
	User User `gorm:"foreignKey:UserID"`
}
