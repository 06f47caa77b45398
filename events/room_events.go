package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// RoomCreatedEvent is emitted when a new room is created.
type RoomCreatedEvent struct {
	RoomCode  string    `json:"room_code"`
	Timestamp time.Time `json:"timestamp"`
}

// UserJoinedEvent is emitted when a session joins a room.
type UserJoinedEvent struct {
	RoomCode  string    `json:"room_code"`
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// UserLeftEvent is emitted when a session leaves a room, including
// removal caused by a dropped connection.
type UserLeftEvent struct {
	RoomCode  string    `json:"room_code"`
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageSentEvent is emitted when a message is admitted for broadcast.
type MessageSentEvent struct {
	MessageID string    `json:"message_id"`
	RoomCode  string    `json:"room_code"`
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the rooms domain.
var (
	RoomCreatedV1 = helper.EventDefinition[RoomCreatedEvent](
		"rooms",
		"RoomCreated",
		"v1",
	)

	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"rooms",
		"UserJoined",
		"v1",
	)

	UserLeftV1 = helper.EventDefinition[UserLeftEvent](
		"rooms",
		"UserLeft",
		"v1",
	)

	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"rooms",
		"MessageSent",
		"v1",
	)
)
