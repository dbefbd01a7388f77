package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoomNameMinLen = 1
	RoomNameMaxLen = 100
	MinRoomMembers = 1
	MaxRoomMembers = 10
)

type Room struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"not null"`
	CreatorID    uuid.UUID `gorm:"not null"`
	Code         string    `gorm:"uniqueIndex;not null;size:6"`
	PasswordHash string
	MaxMembers   int `gorm:"not null"`
	CreatedAt    time.Time

	Creator User `gorm:"foreignKey:CreatorID"`
}

// HasPassword reports whether the room requires a password to join.
func (r *Room) HasPassword() bool {
	return r.PasswordHash != ""
}
