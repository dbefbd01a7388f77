package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ContentType string

const (
	ContentText  ContentType = "TEXT"
	ContentImage ContentType = "IMAGE"
	ContentVideo ContentType = "VIDEO"
)

// ValidContentType reports whether s (any case) names a known content type.
func ValidContentType(s string) (ContentType, bool) {
	switch ContentType(strings.ToUpper(s)) {
	case ContentText:
		return ContentText, true
	case ContentImage:
		return ContentImage, true
	case ContentVideo:
		return ContentVideo, true
	}
	return "", false
}

type Message struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RoomID      uuid.UUID   `gorm:"not null;index"`
	UserID      uuid.UUID   `gorm:"not null"`
	Content     string      `gorm:"not null"`
	ContentType ContentType `gorm:"not null"`
	CreatedAt   time.Time
	// SeenBy holds the acknowledgement set as comma-joined user ids.
	// Only the helpers below should touch it; they guarantee set
	// semantics regardless of the column encoding.
	SeenBy string `gorm:"column:seen_by"`

	User User `gorm:"foreignKey:UserID"`
	Room Room `gorm:"foreignKey:RoomID"`
}

// SeenByIDs returns the acknowledgement set as a slice. Unparseable
// fragments are dropped rather than propagated.
func (m *Message) SeenByIDs() []uuid.UUID {
	if m.SeenBy == "" {
		return []uuid.UUID{}
	}
	parts := strings.Split(m.SeenBy, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(p)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// HasSeen reports whether userID is in the acknowledgement set.
func (m *Message) HasSeen(userID uuid.UUID) bool {
	for _, id := range m.SeenByIDs() {
		if id == userID {
			return true
		}
	}
	return false
}

// AddSeen adds userID to the acknowledgement set. Returns false if the
// id was already present.
func (m *Message) AddSeen(userID uuid.UUID) bool {
	if m.HasSeen(userID) {
		return false
	}
	if m.SeenBy == "" {
		m.SeenBy = userID.String()
	} else {
		m.SeenBy += "," + userID.String()
	}
	return true
}
