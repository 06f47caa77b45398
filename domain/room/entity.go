package room

import "time"

// Room is an ephemeral broadcast group identified by a short code.
type Room struct {
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// Member is a session currently joined to a room.
type Member struct {
	SessionID string `json:"session_id"`
	Username  string `json:"username"`
}

// Message is a chat message addressed to a room.
type Message struct {
	ID        string    `json:"id"`
	RoomCode  string    `json:"room_code"`
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
