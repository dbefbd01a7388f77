package websocket

import "errors"

var (
	ErrClientQueueFull = errors.New("client message queue is full")
	ErrInvalidMessage  = errors.New("invalid message format")
	ErrRoomRequired    = errors.New("room id is required")
	ErrUserNotInRoom   = errors.New("user not in room")
)
