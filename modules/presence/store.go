package presence

import (
	"sort"
	"sync"
	"time"
)

// RoomStats aggregates activity counters for one room.
type RoomStats struct {
	RoomCode     string    `json:"room_code"`
	Joins        int64     `json:"joins"`
	Leaves       int64     `json:"leaves"`
	Messages     int64     `json:"messages"`
	LastActivity time.Time `json:"last_activity"`
}

// Summary is a point-in-time rollup across all rooms.
type Summary struct {
	Rooms         int         `json:"rooms"`
	TotalJoins    int64       `json:"total_joins"`
	TotalLeaves   int64       `json:"total_leaves"`
	TotalMessages int64       `json:"total_messages"`
	PerRoom       []RoomStats `json:"per_room"`
}

// Store keeps in-memory activity counters keyed by room code. Counters
// survive the room emptying out; nothing is ever evicted.
type Store struct {
	mu    sync.RWMutex
	stats map[string]*RoomStats
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{stats: make(map[string]*RoomStats)}
}

func (s *Store) get(roomCode string) *RoomStats {
	st, ok := s.stats[roomCode]
	if !ok {
		st = &RoomStats{RoomCode: roomCode}
		s.stats[roomCode] = st
	}
	return st
}

// RecordJoin counts a join in the given room.
func (s *Store) RecordJoin(roomCode string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(roomCode)
	st.Joins++
	st.LastActivity = at
}

// RecordLeave counts a departure from the given room.
func (s *Store) RecordLeave(roomCode string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(roomCode)
	st.Leaves++
	st.LastActivity = at
}

// RecordMessage counts a message in the given room.
func (s *Store) RecordMessage(roomCode string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(roomCode)
	st.Messages++
	st.LastActivity = at
}

// Stats returns a copy of the counters for one room, and whether any
// activity has been recorded for it.
func (s *Store) Stats(roomCode string) (RoomStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stats[roomCode]
	if !ok {
		return RoomStats{}, false
	}
	return *st, true
}

// Summarize rolls all counters up, with per-room stats sorted by code.
func (s *Store) Summarize() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := Summary{
		Rooms:   len(s.stats),
		PerRoom: make([]RoomStats, 0, len(s.stats)),
	}
	for _, st := range s.stats {
		summary.TotalJoins += st.Joins
		summary.TotalLeaves += st.Leaves
		summary.TotalMessages += st.Messages
		summary.PerRoom = append(summary.PerRoom, *st)
	}
	sort.Slice(summary.PerRoom, func(i, j int) bool {
		return summary.PerRoom[i].RoomCode < summary.PerRoom[j].RoomCode
	})
	return summary
}
