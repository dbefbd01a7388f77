package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PresenceBroadcaster turns connect/disconnect transitions into status
// events on the status channel of every room the user belongs to. It
// keeps no state of its own; the hub decides when a user counts as
// connected.
type PresenceBroadcaster struct {
	members  MemberStore
	users    UserStore
	statuses StatusPublisher
	log      zerolog.Logger
}

func NewPresenceBroadcaster(members MemberStore, users UserStore, statuses StatusPublisher, log zerolog.Logger) *PresenceBroadcaster {
	return &PresenceBroadcaster{
		members:  members,
		users:    users,
		statuses: statuses,
		log:      log,
	}
}

func (b *PresenceBroadcaster) UserConnected(userID uuid.UUID) {
	b.broadcast(userID, "online")
}

func (b *PresenceBroadcaster) UserDisconnected(userID uuid.UUID) {
	b.broadcast(userID, "offline")
}

func (b *PresenceBroadcaster) broadcast(userID uuid.UUID, status string) {
	ctx := context.Background()

	user, err := b.users.UserByID(ctx, userID)
	if err != nil {
		// Unresolved identity: emit nothing.
		b.log.Warn().Err(err).Str("user_id", userID.String()).Msg("presence: user lookup failed")
		return
	}

	memberships, err := b.members.MembershipsByUser(ctx, userID)
	if err != nil {
		b.log.Error().Err(err).Str("user_id", userID.String()).Msg("presence: membership lookup failed")
		return
	}

	for _, m := range memberships {
		b.statuses.PublishStatus(m.RoomID, StatusEvent{
			UserID:    user.ID,
			Username:  user.Username,
			AvatarURL: user.AvatarURL,
			RoomID:    m.RoomID,
			Status:    status,
		})
	}

	b.log.Debug().
		Str("user_id", userID.String()).
		Str("status", status).
		Int("rooms", len(memberships)).
		Msg("presence broadcast")
}
