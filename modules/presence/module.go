package presence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/room-chat-demo/events"
)

// Module aggregates room activity from bus events into in-memory counters
// and serves them over request-reply.
type Module struct {
	store  *Store
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the presence module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		store:  NewStore(),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "presence"
}

// Store returns the underlying stats store.
func (m *Module) Store() *Store {
	return m.store
}

// RegisterEventConsumers subscribes to the room activity events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserJoinedV1, m.handleUserJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register UserJoined consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserLeftV1, m.handleUserLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register UserLeft consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageSentV1, m.handleMessageSent, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"UserJoined", "UserLeft", "MessageSent"})
	return nil
}

func (m *Module) handleUserJoined(_ context.Context, event events.UserJoinedEvent, _ *mono.Msg) error {
	m.store.RecordJoin(event.RoomCode, event.Timestamp)
	return nil
}

func (m *Module) handleUserLeft(_ context.Context, event events.UserLeftEvent, _ *mono.Msg) error {
	m.store.RecordLeave(event.RoomCode, event.Timestamp)
	return nil
}

func (m *Module) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	m.store.RecordMessage(event.RoomCode, event.Timestamp)
	return nil
}

// RegisterServices registers the stats services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetSummary, json.Unmarshal, json.Marshal, m.getSummary,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetSummary, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetRoomStats, json.Unmarshal, json.Marshal, m.getRoomStats,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetRoomStats, err)
	}

	m.logger.Info("Registered services",
		"services", []string{ServiceGetSummary, ServiceGetRoomStats})
	return nil
}

func (m *Module) getSummary(_ context.Context, _ GetSummaryRequest, _ *mono.Msg) (GetSummaryResponse, error) {
	return GetSummaryResponse{Summary: m.store.Summarize()}, nil
}

func (m *Module) getRoomStats(_ context.Context, req GetRoomStatsRequest, _ *mono.Msg) (GetRoomStatsResponse, error) {
	stats, ok := m.store.Stats(req.RoomCode)
	return GetRoomStatsResponse{Found: ok, Stats: stats}, nil
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Presence module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Presence module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"trackedRooms": m.store.Summarize().Rooms,
		},
	}
}
