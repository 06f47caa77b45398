package rooms

import "errors"

// Sentinel errors for room operations.
var (
	// ErrRoomNotFound is returned when an operation targets an unknown room code.
	ErrRoomNotFound = errors.New("room does not exist")

	// ErrNotRoomMember is returned by SendMessage when membership enforcement
	// is enabled and the sender has not joined the target room.
	ErrNotRoomMember = errors.New("sender is not a member of the room")

	// ErrUsernameEmpty is returned when a join request carries no display name.
	ErrUsernameEmpty = errors.New("username cannot be empty")

	// ErrCodeSpaceExhausted is returned when no unused room code could be
	// generated within the retry bound.
	ErrCodeSpaceExhausted = errors.New("could not generate an unused room code")
)
