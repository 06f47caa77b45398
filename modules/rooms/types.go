package rooms

import (
	"time"

	domain "github.com/example/room-chat-demo/domain/room"
)

// Request-reply service names registered by the rooms module.
const (
	ServiceCreateRoom        = "create-room"
	ServiceRoomExists        = "room-exists"
	ServiceJoinRoom          = "join-room"
	ServiceSendMessage       = "send-message"
	ServiceDisconnectSession = "disconnect-session"
)

// Error codes carried in service responses. Adapters map them back to the
// package's sentinel errors.
const (
	CodeRoomNotFound    = "room_not_found"
	CodeNotAMember      = "not_a_member"
	CodeInvalidUsername = "invalid_username"
)

// CreateRoomRequest is the request for creating a new room.
type CreateRoomRequest struct{}

// CreateRoomResponse carries the freshly created room.
type CreateRoomResponse struct {
	Room *domain.Room `json:"room"`
}

// RoomExistsRequest is the request for a room existence check.
type RoomExistsRequest struct {
	RoomCode string `json:"room_code"`
}

// RoomExistsResponse is the response for a room existence check.
type RoomExistsResponse struct {
	Exists bool `json:"exists"`
}

// JoinRoomRequest is the request for joining a room.
type JoinRoomRequest struct {
	RoomCode  string `json:"room_code"`
	SessionID string `json:"session_id"`
	Username  string `json:"username"`
}

// JoinRoomResponse is the response for a join attempt.
type JoinRoomResponse struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code,omitempty"`
}

// SendMessageRequest is the request for admitting a message.
type SendMessageRequest struct {
	RoomCode  string `json:"room_code"`
	SessionID string `json:"session_id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
}

// SendMessageResponse is the response for a message admission.
type SendMessageResponse struct {
	Success   bool      `json:"success"`
	ErrorCode string    `json:"error_code,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// DisconnectRequest is the request for tearing down a session.
type DisconnectRequest struct {
	SessionID string `json:"session_id"`
}

// Departure records one room a disconnecting session was removed from.
type Departure struct {
	RoomCode  string `json:"room_code"`
	SessionID string `json:"session_id"`
	Username  string `json:"username"`
}

// DisconnectResponse lists the rooms the session was removed from.
type DisconnectResponse struct {
	Departures []Departure `json:"departures"`
}
