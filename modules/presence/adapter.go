package presence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// PresencePort defines the interface for reading room activity stats.
type PresencePort interface {
	Summary(ctx context.Context) (Summary, error)
	RoomStats(ctx context.Context, roomCode string) (RoomStats, bool, error)
}

// PresenceAdapter implements PresencePort using the service container.
type PresenceAdapter struct {
	container mono.ServiceContainer
}

// NewPresenceAdapter creates a new PresenceAdapter.
func NewPresenceAdapter(container mono.ServiceContainer) PresencePort {
	if container == nil {
		panic("presence: ServiceContainer is nil")
	}
	return &PresenceAdapter{container: container}
}

// Summary returns the activity rollup across all rooms.
func (a *PresenceAdapter) Summary(ctx context.Context) (Summary, error) {
	req := GetSummaryRequest{}
	var resp GetSummaryResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetSummary,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return Summary{}, fmt.Errorf("failed to get presence summary: %w", err)
	}
	return resp.Summary, nil
}

// RoomStats returns one room's counters and whether any were recorded.
func (a *PresenceAdapter) RoomStats(ctx context.Context, roomCode string) (RoomStats, bool, error) {
	req := GetRoomStatsRequest{RoomCode: roomCode}
	var resp GetRoomStatsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetRoomStats,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return RoomStats{}, false, fmt.Errorf("failed to get room stats: %w", err)
	}
	return resp.Stats, resp.Found, nil
}
