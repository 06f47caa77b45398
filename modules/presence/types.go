package presence

// Request-reply service names registered by the presence module.
const (
	ServiceGetSummary   = "get-presence-summary"
	ServiceGetRoomStats = "get-room-stats"
)

// GetSummaryRequest is the request for the activity rollup.
type GetSummaryRequest struct{}

// GetSummaryResponse carries the rollup across all rooms.
type GetSummaryResponse struct {
	Summary Summary `json:"summary"`
}

// GetRoomStatsRequest is the request for one room's counters.
type GetRoomStatsRequest struct {
	RoomCode string `json:"room_code"`
}

// GetRoomStatsResponse carries one room's counters. Found is false when
// no activity has been recorded for the room.
type GetRoomStatsResponse struct {
	Found bool      `json:"found"`
	Stats RoomStats `json:"stats,omitempty"`
}
