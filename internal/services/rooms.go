package services

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/thereayou/roomly/internal/apperr"
	"github.com/thereayou/roomly/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// codeRetries bounds the insert-or-retry loop on room code collisions.
// With 36^6 candidate codes a second collision in a row is already
// vanishingly rare.
const codeRetries = 5

// RoomService orchestrates the room directory and the membership ledger:
// room lifecycle, membership invariants and the room read paths.
type RoomService struct {
	rooms    RoomStore
	members  MemberStore
	users    UserStore
	codes    CodeGenerator
	presence PresenceLookup
	log      zerolog.Logger
}

func NewRoomService(rooms RoomStore, members MemberStore, users UserStore, codes CodeGenerator, presence PresenceLookup, log zerolog.Logger) *RoomService {
	return &RoomService{
		rooms:    rooms,
		members:  members,
		users:    users,
		codes:    codes,
		presence: presence,
		log:      log,
	}
}

// CreateRoom creates a room and its creator membership as one unit. The
// optional password is stored only as a bcrypt hash. Code collisions are
// detected by the unique index at insert time and retried with a fresh
// draw.
func (s *RoomService) CreateRoom(ctx context.Context, userID uuid.UUID, name, password string, maxMembers int) (*RoomSummary, error) {
	nameLen := utf8.RuneCountInString(name)
	if nameLen < models.RoomNameMinLen || nameLen > models.RoomNameMaxLen {
		return nil, apperr.Newf(apperr.ValidationFailed, "Room name must be between %d and %d characters", models.RoomNameMinLen, models.RoomNameMaxLen)
	}
	if maxMembers < models.MinRoomMembers || maxMembers > models.MaxRoomMembers {
		return nil, apperr.Newf(apperr.ValidationFailed, "Max members must be between %d and %d", models.MinRoomMembers, models.MaxRoomMembers)
	}

	creator, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var passwordHash string
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Internalf(err, "hash room password")
		}
		passwordHash = string(hash)
	}

	var room *models.Room
	for attempt := 0; ; attempt++ {
		room = &models.Room{
			Name:         name,
			CreatorID:    creator.ID,
			Code:         s.codes.Generate(),
			PasswordHash: passwordHash,
			MaxMembers:   maxMembers,
		}
		membership := &models.Membership{
			UserID: creator.ID,
			Role:   models.RoleCreator,
		}
		err = s.rooms.InsertRoom(ctx, room, membership)
		if err == nil {
			break
		}
		if !errors.Is(err, apperr.ErrCodeTaken) {
			return nil, err
		}
		if attempt+1 >= codeRetries {
			return nil, apperr.New(apperr.Internal, "could not allocate a unique room code")
		}
		s.log.Warn().Str("code", room.Code).Msg("room code collision, retrying")
	}

	s.log.Info().
		Str("room_id", room.ID.String()).
		Str("code", room.Code).
		Str("creator_id", creator.ID.String()).
		Msg("room created")

	room.Creator = *creator
	summary := newRoomSummary(room, 1)
	return &summary, nil
}

// JoinRoom adds the user to the room identified by code. The capacity and
// duplicate checks commit atomically inside the ledger.
func (s *RoomService) JoinRoom(ctx context.Context, userID uuid.UUID, code, password string) (*RoomSummary, error) {
	if _, err := s.users.UserByID(ctx, userID); err != nil {
		return nil, err
	}
	room, err := s.rooms.RoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if room.HasPassword() {
		if bcrypt.CompareHashAndPassword([]byte(room.PasswordHash), []byte(password)) != nil {
			return nil, apperr.New(apperr.BadPassword, "Incorrect password")
		}
	}

	if _, err := s.members.AddMember(ctx, room.ID, userID, models.RoleMember); err != nil {
		return nil, err
	}

	count, err := s.members.CountMembers(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("room_id", room.ID.String()).
		Str("user_id", userID.String()).
		Msg("user joined room")

	summary := newRoomSummary(room, count)
	return &summary, nil
}

// DeleteRoom removes the room and cascades to its memberships and
// messages. Creator only.
func (s *RoomService) DeleteRoom(ctx context.Context, userID, roomID uuid.UUID) error {
	room, err := s.rooms.RoomByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room.CreatorID != userID {
		return apperr.New(apperr.Forbidden, "Only the room creator can delete the room")
	}
	if err := s.rooms.DeleteRoom(ctx, roomID); err != nil {
		return err
	}
	s.log.Info().Str("room_id", roomID.String()).Msg("room deleted")
	return nil
}

// KickMember removes another member from the room. Creator only; the
// creator cannot kick themselves, so the CREATOR row is never removable
// this way.
func (s *RoomService) KickMember(ctx context.Context, userID, roomID, targetUserID uuid.UUID) error {
	room, err := s.rooms.RoomByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room.CreatorID != userID {
		return apperr.New(apperr.Forbidden, "Only the room creator can kick members")
	}
	if targetUserID == userID {
		return apperr.New(apperr.CannotKickSelf, "Creator cannot kick themselves")
	}
	if err := s.members.RemoveMember(ctx, roomID, targetUserID); err != nil {
		return err
	}
	s.log.Info().
		Str("room_id", roomID.String()).
		Str("target_id", targetUserID.String()).
		Msg("member kicked")
	return nil
}

// GetRoomMembers lists the room's members with their role and a live
// online flag. The flag is a point-in-time query against connected
// sessions, never a stored field.
func (s *RoomService) GetRoomMembers(ctx context.Context, userID, roomID uuid.UUID) ([]RoomMemberInfo, error) {
	if _, err := s.rooms.RoomByID(ctx, roomID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	members, err := s.members.MembersByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	infos := make([]RoomMemberInfo, len(members))
	for i, m := range members {
		infos[i] = RoomMemberInfo{
			ID:        m.User.ID,
			Username:  m.User.Username,
			AvatarURL: m.User.AvatarURL,
			Role:      roleName(m.Role),
			Online:    s.presence.IsUserOnline(m.UserID),
		}
	}
	return infos, nil
}

func (s *RoomService) SearchRooms(ctx context.Context, query string, page, size int) (*RoomPage, error) {
	rooms, total, err := s.rooms.SearchRooms(ctx, query, page, size)
	if err != nil {
		return nil, err
	}
	return s.roomPage(ctx, rooms, page, size, total)
}

func (s *RoomService) GetRoomByID(ctx context.Context, userID, roomID uuid.UUID) (*RoomSummary, error) {
	room, err := s.rooms.RoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	count, err := s.members.CountMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	summary := newRoomSummary(room, count)
	return &summary, nil
}

// GetUserRooms pages the rooms the user belongs to, most recently joined
// first.
func (s *RoomService) GetUserRooms(ctx context.Context, userID uuid.UUID, page, size int) (*RoomPage, error) {
	memberships, err := s.members.MembershipsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := int64(len(memberships))
	from := page * size
	if from > len(memberships) {
		from = len(memberships)
	}
	to := from + size
	if to > len(memberships) {
		to = len(memberships)
	}

	rooms := make([]models.Room, 0, to-from)
	for _, m := range memberships[from:to] {
		rooms = append(rooms, m.Room)
	}
	return s.roomPage(ctx, rooms, page, size, total)
}

func (s *RoomService) GetUserRoomIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	memberships, err := s.members.MembershipsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(memberships))
	for i, m := range memberships {
		ids[i] = m.RoomID
	}
	return ids, nil
}

// GetOwnRooms pages the rooms the user created.
func (s *RoomService) GetOwnRooms(ctx context.Context, userID uuid.UUID, page, size int) (*RoomPage, error) {
	rooms, total, err := s.rooms.RoomsByCreator(ctx, userID, page, size)
	if err != nil {
		return nil, err
	}
	return s.roomPage(ctx, rooms, page, size, total)
}

// roomPage builds summaries with the live member count for each room,
// the single authoritative count source.
func (s *RoomService) roomPage(ctx context.Context, rooms []models.Room, page, size int, total int64) (*RoomPage, error) {
	summaries := make([]RoomSummary, len(rooms))
	for i := range rooms {
		count, err := s.members.CountMembers(ctx, rooms[i].ID)
		if err != nil {
			return nil, err
		}
		summaries[i] = newRoomSummary(&rooms[i], count)
	}
	return &RoomPage{Rooms: summaries, Page: page, Size: size, Total: total}, nil
}

func (s *RoomService) requireMember(ctx context.Context, roomID, userID uuid.UUID) error {
	ok, err := s.members.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.Forbidden, "You are not a member of this room")
	}
	return nil
}

func roleName(role models.MemberRole) string {
	switch role {
	case models.RoleCreator:
		return "creator"
	case models.RoleAdmin:
		return "admin"
	default:
		return "member"
	}
}
