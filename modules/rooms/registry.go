package rooms

import (
	"sort"
	"sync"
	"time"

	domain "github.com/example/room-chat-demo/domain/room"
)

// Registry owns the room code -> membership mapping and is the single
// source of truth for room existence. All mutation runs under one lock so
// the room-side member sets and the session-side membership sets never
// disagree under concurrent joins, leaves, and disconnects.
//
// Rooms are never removed, even once their member set is empty. The code
// space is large relative to the number of live rooms, so reclaiming codes
// is not worth the extra lifecycle states.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*domain.Room
	members map[string]map[string]string   // room code -> session id -> display name
	joined  map[string]map[string]struct{} // session id -> room codes
	newCode func() string
}

// NewRegistry creates an empty registry using newCode to mint room codes.
func NewRegistry(newCode func() string) *Registry {
	return &Registry{
		rooms:   make(map[string]*domain.Room),
		members: make(map[string]map[string]string),
		joined:  make(map[string]map[string]struct{}),
		newCode: newCode,
	}
}

// CreateRoom mints a fresh code and inserts an empty room. The
// generate-check-insert sequence runs under the registry lock, so no two
// concurrent callers can be handed the same code.
func (r *Registry) CreateRoom() (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < maxCodeAttempts; i++ {
		code := r.newCode()
		if _, taken := r.rooms[code]; taken {
			continue
		}
		rm := &domain.Room{Code: code, CreatedAt: time.Now()}
		r.rooms[code] = rm
		r.members[code] = make(map[string]string)
		return rm, nil
	}
	return nil, ErrCodeSpaceExhausted
}

// Exists reports whether a room with the given code is tracked.
func (r *Registry) Exists(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[code]
	return ok
}

// AddMember inserts the session into the room's member set and records the
// display name it goes by in that room. Names are room-scoped: the same
// session may join different rooms under different names. Re-adding an
// existing member updates the name. Returns ErrRoomNotFound when the room
// does not exist at the time of the call.
func (r *Registry) AddMember(code, sessionID, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[code]; !ok {
		return ErrRoomNotFound
	}

	r.members[code][sessionID] = username
	if r.joined[sessionID] == nil {
		r.joined[sessionID] = make(map[string]struct{})
	}
	r.joined[sessionID][code] = struct{}{}
	return nil
}

// RemoveMember removes the session from the room's member set. Removing a
// membership that does not exist, or targeting an unknown room, is a no-op:
// disconnect cleanup may race against other removals.
func (r *Registry) RemoveMember(code, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.members[code]; ok {
		delete(set, sessionID)
	}
	if set, ok := r.joined[sessionID]; ok {
		delete(set, code)
		if len(set) == 0 {
			delete(r.joined, sessionID)
		}
	}
}

// Members returns a point-in-time snapshot of the room's member set,
// sorted by session id. Unknown rooms yield an empty slice.
func (r *Registry) Members(code string) []domain.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.members[code]
	if !ok {
		return nil
	}
	result := make([]domain.Member, 0, len(set))
	for sessionID, username := range set {
		result = append(result, domain.Member{
			SessionID: sessionID,
			Username:  username,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SessionID < result[j].SessionID
	})
	return result
}

// IsMember reports whether the session currently belongs to the room.
func (r *Registry) IsMember(code, sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.members[code]
	if !ok {
		return false
	}
	_, ok = set[sessionID]
	return ok
}

// SessionRooms returns a snapshot of the room codes the session has
// joined, sorted.
func (r *Registry) SessionRooms(sessionID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessionRoomsLocked(sessionID)
}

func (r *Registry) sessionRoomsLocked(sessionID string) []string {
	set, ok := r.joined[sessionID]
	if !ok {
		return nil
	}
	codes := make([]string, 0, len(set))
	for code := range set {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// RemoveSession removes the session from every room it has joined. It
// returns one Departure per affected room, sorted by room code, each
// carrying the name the session went by in that room. Calling it for an
// unknown or already-removed session returns an empty slice.
func (r *Registry) RemoveSession(sessionID string) []Departure {
	r.mu.Lock()
	defer r.mu.Unlock()

	codes := r.sessionRoomsLocked(sessionID)
	departures := make([]Departure, 0, len(codes))
	for _, code := range codes {
		set, ok := r.members[code]
		if !ok {
			continue
		}
		departures = append(departures, Departure{
			RoomCode:  code,
			SessionID: sessionID,
			Username:  set[sessionID],
		})
		delete(set, sessionID)
	}
	delete(r.joined, sessionID)
	return departures
}

// RoomCount returns the number of tracked rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// MemberCount returns the size of a room's member set.
func (r *Registry) MemberCount(code string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members[code])
}
