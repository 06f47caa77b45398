package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/room-chat-demo/events"
)

// WebSocket event type names sent to clients.
const (
	EventConnected      = "connected"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventReceiveMessage = "receive_message"
	EventRoomCreated    = "room_created"
	EventError          = "error"
)

// WSEvent is the envelope for every event written to a WebSocket client.
type WSEvent struct {
	Type      string    `json:"type"`
	RoomCode  string    `json:"roomCode,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	Username  string    `json:"username,omitempty"`
	Message   string    `json:"message,omitempty"`
	MessageID string    `json:"messageId,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Module owns the Hub and relays bus events that target all connected
// clients. Room-scoped chat traffic is fanned out by the API module
// straight through the Hub; only announcements that cross room boundaries
// arrive here via the event bus.
type Module struct {
	hub       *Hub
	logger    types.Logger
	cancelHub context.CancelFunc
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the broadcast module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		hub:    NewHub(),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "broadcast"
}

// GetHub returns the hub for connection handlers.
func (m *Module) GetHub() *Hub {
	return m.hub
}

// RegisterEventConsumers subscribes to events relayed to every client.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomCreatedV1, m.handleRoomCreated, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomCreated consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", []string{"RoomCreated"})
	return nil
}

// handleRoomCreated announces a new room to all connected clients.
func (m *Module) handleRoomCreated(_ context.Context, event events.RoomCreatedEvent, _ *mono.Msg) error {
	m.hub.Broadcast("", WSEvent{
		Type:      EventRoomCreated,
		RoomCode:  event.RoomCode,
		Timestamp: event.Timestamp,
	})
	return nil
}

// Start launches the hub loop.
func (m *Module) Start(_ context.Context) error {
	hubCtx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(hubCtx)
	m.logger.Info("Broadcast module started")
	return nil
}

// Stop shuts down the hub and waits for it to drain.
func (m *Module) Stop(_ context.Context) error {
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	m.logger.Info("Broadcast module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connectedClients": m.hub.ClientCount(),
		},
	}
}
