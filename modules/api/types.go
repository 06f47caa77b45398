package api

import "time"

// Inbound WebSocket request types.
const (
	WSTypeJoinRoom    = "join_room"
	WSTypeSendMessage = "send_message"
)

// WSRequest is the envelope for every request read from a WebSocket client.
type WSRequest struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

// RoomResponse describes one room over the REST API.
type RoomResponse struct {
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	Members   int       `json:"members"`
}

// ErrorResponse is the REST error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
