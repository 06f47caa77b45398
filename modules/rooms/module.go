package rooms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/example/room-chat-demo/domain/room"
	"github.com/example/room-chat-demo/events"
)

// Module exposes the room registry and session lifecycle as request-reply
// services and emits room events on the bus.
type Module struct {
	service  *Service
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the rooms module. Membership enforcement on send is an
// opt-in hardening switch; the default mirrors the original protocol, which
// trusts the caller-supplied room code.
func NewModule(logger types.Logger) *Module {
	newCode, err := NewCodeGenerator(DefaultCodeLength)
	if err != nil {
		panic(fmt.Sprintf("rooms: invalid code generator config: %v", err))
	}
	enforce := os.Getenv("ENFORCE_ROOM_MEMBERSHIP") == "true"
	return &Module{
		service: NewService(NewRegistry(newCode), enforce),
		logger:  logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "rooms"
}

// Service returns the lifecycle service instance.
func (m *Module) Service() *Service {
	return m.service
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.RoomCreatedV1.ToBase(),
		events.UserJoinedV1.ToBase(),
		events.UserLeftV1.ToBase(),
		events.MessageSentV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	register := func(name string, err error) error {
		if err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
		return nil
	}

	if err := register(ServiceCreateRoom, helper.RegisterTypedRequestReplyService(
		container, ServiceCreateRoom, json.Unmarshal, json.Marshal, m.createRoom,
	)); err != nil {
		return err
	}
	if err := register(ServiceRoomExists, helper.RegisterTypedRequestReplyService(
		container, ServiceRoomExists, json.Unmarshal, json.Marshal, m.roomExists,
	)); err != nil {
		return err
	}
	if err := register(ServiceJoinRoom, helper.RegisterTypedRequestReplyService(
		container, ServiceJoinRoom, json.Unmarshal, json.Marshal, m.joinRoom,
	)); err != nil {
		return err
	}
	if err := register(ServiceSendMessage, helper.RegisterTypedRequestReplyService(
		container, ServiceSendMessage, json.Unmarshal, json.Marshal, m.sendMessage,
	)); err != nil {
		return err
	}
	if err := register(ServiceDisconnectSession, helper.RegisterTypedRequestReplyService(
		container, ServiceDisconnectSession, json.Unmarshal, json.Marshal, m.disconnectSession,
	)); err != nil {
		return err
	}

	m.logger.Info("Registered services",
		"services", []string{
			ServiceCreateRoom, ServiceRoomExists, ServiceJoinRoom,
			ServiceSendMessage, ServiceDisconnectSession,
		})
	return nil
}

// createRoom handles the create-room service request.
func (m *Module) createRoom(ctx context.Context, _ CreateRoomRequest, _ *mono.Msg) (CreateRoomResponse, error) {
	rm, err := m.service.CreateRoom(ctx)
	if err != nil {
		return CreateRoomResponse{}, err
	}

	event := events.RoomCreatedEvent{RoomCode: rm.Code, Timestamp: rm.CreatedAt}
	if err := events.RoomCreatedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish RoomCreated event", "error", err)
	}

	m.logger.Info("Room created", "roomCode", rm.Code)
	return CreateRoomResponse{Room: rm}, nil
}

// roomExists handles the room-exists service request.
func (m *Module) roomExists(ctx context.Context, req RoomExistsRequest, _ *mono.Msg) (RoomExistsResponse, error) {
	return RoomExistsResponse{Exists: m.service.RoomExists(ctx, req.RoomCode)}, nil
}

// joinRoom handles the join-room service request.
func (m *Module) joinRoom(ctx context.Context, req JoinRoomRequest, _ *mono.Msg) (JoinRoomResponse, error) {
	err := m.service.JoinRoom(ctx, req.RoomCode, req.SessionID, req.Username)
	switch err {
	case nil:
	case ErrRoomNotFound:
		return JoinRoomResponse{ErrorCode: CodeRoomNotFound}, nil
	case ErrUsernameEmpty:
		return JoinRoomResponse{ErrorCode: CodeInvalidUsername}, nil
	default:
		return JoinRoomResponse{}, err
	}

	event := events.UserJoinedEvent{
		RoomCode:  NormalizeRoomCode(req.RoomCode),
		SessionID: req.SessionID,
		Username:  req.Username,
		Timestamp: time.Now(),
	}
	if err := events.UserJoinedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish UserJoined event", "error", err)
	}

	m.logger.Info("User joined room", "sessionID", req.SessionID, "roomCode", event.RoomCode)
	return JoinRoomResponse{Success: true}, nil
}

// sendMessage handles the send-message service request.
func (m *Module) sendMessage(ctx context.Context, req SendMessageRequest, _ *mono.Msg) (SendMessageResponse, error) {
	msg, err := m.service.SendMessage(ctx, req.RoomCode, req.SessionID, req.Username, req.Content)
	switch err {
	case nil:
	case ErrNotRoomMember:
		return SendMessageResponse{ErrorCode: CodeNotAMember}, nil
	default:
		return SendMessageResponse{}, err
	}

	m.publishMessageSent(msg)
	m.logger.Debug("Message admitted", "sessionID", req.SessionID, "roomCode", msg.RoomCode)
	return SendMessageResponse{
		Success:   true,
		MessageID: msg.ID,
		Timestamp: msg.Timestamp,
	}, nil
}

func (m *Module) publishMessageSent(msg *domain.Message) {
	event := events.MessageSentEvent{
		MessageID: msg.ID,
		RoomCode:  msg.RoomCode,
		SessionID: msg.SessionID,
		Username:  msg.Username,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}
	if err := events.MessageSentV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish MessageSent event", "error", err)
	}
}

// disconnectSession handles the disconnect-session service request.
func (m *Module) disconnectSession(ctx context.Context, req DisconnectRequest, _ *mono.Msg) (DisconnectResponse, error) {
	departures := m.service.Disconnect(ctx, req.SessionID)

	for _, dep := range departures {
		event := events.UserLeftEvent{
			RoomCode:  dep.RoomCode,
			SessionID: dep.SessionID,
			Username:  dep.Username,
			Timestamp: time.Now(),
		}
		if err := events.UserLeftV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish UserLeft event", "error", err)
		}
	}

	if len(departures) > 0 {
		m.logger.Info("Session disconnected", "sessionID", req.SessionID, "rooms", len(departures))
	}
	return DisconnectResponse{Departures: departures}, nil
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Rooms module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Rooms module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"rooms": m.service.Registry().RoomCount(),
		},
	}
}
