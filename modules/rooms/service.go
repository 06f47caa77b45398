package rooms

import (
	"context"
	"strings"
	"time"

	domain "github.com/example/room-chat-demo/domain/room"
	"github.com/google/uuid"
)

// Service coordinates the session lifecycle against the registry: room
// creation, join validation, message admission, and disconnect
// reconciliation.
type Service struct {
	registry          *Registry
	enforceMembership bool
}

// NewService creates a service over the given registry. When
// enforceMembership is set, SendMessage rejects senders that have not
// joined the target room; by default the caller-supplied room code is
// trusted, matching the original protocol.
func NewService(registry *Registry, enforceMembership bool) *Service {
	return &Service{
		registry:          registry,
		enforceMembership: enforceMembership,
	}
}

// Registry exposes the underlying registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// CreateRoom allocates a fresh room with a collision-free code.
func (s *Service) CreateRoom(_ context.Context) (*domain.Room, error) {
	return s.registry.CreateRoom()
}

// RoomExists reports whether the (case-insensitive) code names a live room.
func (s *Service) RoomExists(_ context.Context, code string) bool {
	return s.registry.Exists(NormalizeRoomCode(code))
}

// JoinRoom adds the session to the room under the given display name. The
// name is required but otherwise not validated; it does not have to be
// unique within the room.
func (s *Service) JoinRoom(_ context.Context, code, sessionID, username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrUsernameEmpty
	}
	return s.registry.AddMember(NormalizeRoomCode(code), sessionID, username)
}

// SendMessage admits a message for broadcast and stamps it with an id and
// timestamp. The room code and username come from the caller as-is; only
// with membership enforcement on is the sender checked against the room's
// member set.
func (s *Service) SendMessage(_ context.Context, code, sessionID, username, content string) (*domain.Message, error) {
	code = NormalizeRoomCode(code)
	if s.enforceMembership && !s.registry.IsMember(code, sessionID) {
		return nil, ErrNotRoomMember
	}
	return &domain.Message{
		ID:        uuid.New().String(),
		RoomCode:  code,
		SessionID: sessionID,
		Username:  username,
		Content:   content,
		Timestamp: time.Now(),
	}, nil
}

// Disconnect removes the session from every room it has joined and reports
// one Departure per affected room, each under the room-scoped display name.
// The membership snapshot is taken under the registry lock, so repeated or
// racing disconnect signals yield the rooms at most once.
func (s *Service) Disconnect(_ context.Context, sessionID string) []Departure {
	return s.registry.RemoveSession(sessionID)
}
