package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/roomly/internal/apperr"
	"github.com/thereayou/roomly/internal/models"
)

// fakeStore is an in-memory stand-in for internal/database. It keeps the
// same invariants the real layer enforces transactionally: unique room
// codes, unique (room, user) memberships and the capacity check.
type fakeStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*models.User
	rooms     map[uuid.UUID]*models.Room
	roomOrder []uuid.UUID
	members   []*models.Membership
	messages  []*models.Message

	base time.Time
	seq  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[uuid.UUID]*models.User),
		rooms: make(map[uuid.UUID]*models.Room),
		base:  time.Now(),
	}
}

func (f *fakeStore) tick() time.Time {
	f.seq++
	return f.base.Add(time.Duration(f.seq) * time.Millisecond)
}

func (f *fakeStore) addUser(username string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := &models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeStore) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "User not found")
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) InsertRoom(_ context.Context, room *models.Room, creator *models.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.rooms {
		if r.Code == room.Code {
			return apperr.ErrCodeTaken
		}
	}

	room.ID = uuid.New()
	room.CreatedAt = f.tick()
	stored := *room
	f.rooms[room.ID] = &stored
	f.roomOrder = append(f.roomOrder, room.ID)

	creator.ID = uuid.New()
	creator.RoomID = room.ID
	creator.JoinedAt = f.tick()
	m := *creator
	f.members = append(f.members, &m)
	return nil
}

func (f *fakeStore) roomCopy(r *models.Room) *models.Room {
	copied := *r
	if u, ok := f.users[r.CreatorID]; ok {
		copied.Creator = *u
	}
	return &copied
}

func (f *fakeStore) RoomByID(_ context.Context, id uuid.UUID) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.rooms[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Room not found")
	}
	return f.roomCopy(r), nil
}

func (f *fakeStore) RoomByCode(_ context.Context, code string) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.rooms {
		if r.Code == code {
			return f.roomCopy(r), nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "Room not found")
}

func (f *fakeStore) DeleteRoom(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.rooms[id]; !ok {
		return apperr.New(apperr.NotFound, "Room not found")
	}
	delete(f.rooms, id)
	for i, rid := range f.roomOrder {
		if rid == id {
			f.roomOrder = append(f.roomOrder[:i], f.roomOrder[i+1:]...)
			break
		}
	}

	members := f.members[:0]
	for _, m := range f.members {
		if m.RoomID != id {
			members = append(members, m)
		}
	}
	f.members = members

	messages := f.messages[:0]
	for _, m := range f.messages {
		if m.RoomID != id {
			messages = append(messages, m)
		}
	}
	f.messages = messages
	return nil
}

func (f *fakeStore) SearchRooms(_ context.Context, query string, page, size int) ([]models.Room, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := make([]models.Room, 0)
	// Newest rooms first.
	for i := len(f.roomOrder) - 1; i >= 0; i-- {
		r := f.rooms[f.roomOrder[i]]
		if strings.Contains(strings.ToLower(r.Name), strings.ToLower(query)) {
			matched = append(matched, *f.roomCopy(r))
		}
	}
	return pageRooms(matched, page, size)
}

func (f *fakeStore) RoomsByCreator(_ context.Context, creatorID uuid.UUID, page, size int) ([]models.Room, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := make([]models.Room, 0)
	for i := len(f.roomOrder) - 1; i >= 0; i-- {
		r := f.rooms[f.roomOrder[i]]
		if r.CreatorID == creatorID {
			matched = append(matched, *f.roomCopy(r))
		}
	}
	return pageRooms(matched, page, size)
}

func pageRooms(matched []models.Room, page, size int) ([]models.Room, int64, error) {
	total := int64(len(matched))
	from := page * size
	if from > len(matched) {
		from = len(matched)
	}
	to := from + size
	if to > len(matched) {
		to = len(matched)
	}
	return matched[from:to], total, nil
}

func (f *fakeStore) AddMember(_ context.Context, roomID, userID uuid.UUID, role models.MemberRole) (*models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	room, ok := f.rooms[roomID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Room not found")
	}

	count := 0
	for _, m := range f.members {
		if m.RoomID != roomID {
			continue
		}
		if m.UserID == userID {
			return nil, apperr.New(apperr.AlreadyMember, "User is already a member of this room")
		}
		count++
	}
	if count >= room.MaxMembers {
		return nil, apperr.New(apperr.RoomFull, "Room is full")
	}

	m := &models.Membership{
		ID:       uuid.New(),
		RoomID:   roomID,
		UserID:   userID,
		Role:     role,
		JoinedAt: f.tick(),
	}
	f.members = append(f.members, m)
	copied := *m
	return &copied, nil
}

func (f *fakeStore) RemoveMember(_ context.Context, roomID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, m := range f.members {
		if m.RoomID == roomID && m.UserID == userID {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.NotAMember, "User is not a member of the room")
}

func (f *fakeStore) IsMember(_ context.Context, roomID, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range f.members {
		if m.RoomID == roomID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) MembersByRoom(_ context.Context, roomID uuid.UUID) ([]models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Oldest memberships first.
	out := make([]models.Membership, 0)
	for _, m := range f.members {
		if m.RoomID != roomID {
			continue
		}
		copied := *m
		if u, ok := f.users[m.UserID]; ok {
			copied.User = *u
		}
		out = append(out, copied)
	}
	return out, nil
}

func (f *fakeStore) MembershipsByUser(_ context.Context, userID uuid.UUID) ([]models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Most recently joined first.
	out := make([]models.Membership, 0)
	for i := len(f.members) - 1; i >= 0; i-- {
		m := f.members[i]
		if m.UserID != userID {
			continue
		}
		copied := *m
		if r, ok := f.rooms[m.RoomID]; ok {
			copied.Room = *f.roomCopy(r)
		}
		out = append(out, copied)
	}
	return out, nil
}

func (f *fakeStore) CountMembers(_ context.Context, roomID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, m := range f.members {
		if m.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) InsertMessage(_ context.Context, message *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	message.ID = uuid.New()
	message.CreatedAt = f.tick()
	stored := *message
	f.messages = append(f.messages, &stored)
	return nil
}

func (f *fakeStore) messageCopy(m *models.Message) *models.Message {
	copied := *m
	if u, ok := f.users[m.UserID]; ok {
		copied.User = *u
	}
	return &copied
}

func (f *fakeStore) MessageByID(_ context.Context, id uuid.UUID) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range f.messages {
		if m.ID == id {
			return f.messageCopy(m), nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "Message not found")
}

func (f *fakeStore) MarkSeen(_ context.Context, messageID, userID uuid.UUID) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range f.messages {
		if m.ID == messageID {
			m.AddSeen(userID)
			return f.messageCopy(m), nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "Message not found")
}

func (f *fakeStore) DeleteMessage(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, m := range f.messages {
		if m.ID == id {
			f.messages = append(f.messages[:i], f.messages[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.NotFound, "Message not found")
}

func (f *fakeStore) MessagesByRoom(_ context.Context, roomID uuid.UUID, page, size int) ([]models.Message, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Newest messages first.
	matched := make([]models.Message, 0)
	for i := len(f.messages) - 1; i >= 0; i-- {
		m := f.messages[i]
		if m.RoomID == roomID {
			matched = append(matched, *f.messageCopy(m))
		}
	}

	total := int64(len(matched))
	from := page * size
	if from > len(matched) {
		from = len(matched)
	}
	to := from + size
	if to > len(matched) {
		to = len(matched)
	}
	return matched[from:to], total, nil
}

// scriptedCodes returns a fixed sequence of codes, repeating the last one.
type scriptedCodes struct {
	codes []string
	next  int
}

func (s *scriptedCodes) Generate() string {
	code := s.codes[s.next]
	if s.next < len(s.codes)-1 {
		s.next++
	}
	return code
}

// seqCodes hands out CODE00, CODE01, ... so every draw is unique.
type seqCodes struct {
	n int
}

func (s *seqCodes) Generate() string {
	s.n++
	return fmt.Sprintf("CODE%02d", s.n-1)
}

type fakePresence struct {
	online map[uuid.UUID]bool
}

func (f *fakePresence) IsUserOnline(userID uuid.UUID) bool {
	return f.online[userID]
}

type publishedStatus struct {
	roomID uuid.UUID
	event  StatusEvent
}

// recordingStatuses captures everything published to status channels.
type recordingStatuses struct {
	mu     sync.Mutex
	events []publishedStatus
}

func (r *recordingStatuses) PublishStatus(roomID uuid.UUID, event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedStatus{roomID: roomID, event: event.(StatusEvent)})
}

func (r *recordingStatuses) published() []publishedStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]publishedStatus, len(r.events))
	copy(out, r.events)
	return out
}
