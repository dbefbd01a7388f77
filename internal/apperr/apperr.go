// Package apperr defines the caller-facing error taxonomy shared by the
// room and chat services. Every business failure carries a Kind that the
// transport edge maps to an HTTP status; anything else is Internal.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	NotFound           Kind = "not_found"
	Forbidden          Kind = "forbidden"
	AlreadyMember      Kind = "already_member"
	NotAMember         Kind = "not_a_member"
	RoomFull           Kind = "room_full"
	BadPassword        Kind = "bad_password"
	WrongRoom          Kind = "wrong_room"
	CannotKickSelf     Kind = "cannot_kick_self"
	InvalidContentType Kind = "invalid_content_type"
	ValidationFailed   Kind = "validation_failed"
	Internal           Kind = "internal"
)

// ErrCodeTaken signals a room code collision on insert; the room service
// retries with a fresh code. It never reaches callers.
var ErrCodeTaken = errors.New("room code already taken")

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Internalf wraps an unexpected storage failure. The cause is kept in the
// message for logs; the Kind tells handlers to answer with a generic 500.
func Internalf(err error, context string) *Error {
	return &Error{Kind: Internal, Message: fmt.Sprintf("%s: %v", context, err)}
}

// KindOf extracts the Kind from err, or Internal if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
