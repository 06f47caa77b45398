package rooms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/room-chat-demo/domain/room"
)

// RoomsPort defines the interface for room lifecycle operations.
type RoomsPort interface {
	CreateRoom(ctx context.Context) (*domain.Room, error)
	RoomExists(ctx context.Context, roomCode string) (bool, error)
	JoinRoom(ctx context.Context, roomCode, sessionID, username string) error
	SendMessage(ctx context.Context, roomCode, sessionID, username, content string) (*domain.Message, error)
	Disconnect(ctx context.Context, sessionID string) ([]Departure, error)
}

// RoomsAdapter implements RoomsPort using the service container.
type RoomsAdapter struct {
	container mono.ServiceContainer
}

// NewRoomsAdapter creates a new RoomsAdapter.
func NewRoomsAdapter(container mono.ServiceContainer) RoomsPort {
	if container == nil {
		panic("rooms: ServiceContainer is nil")
	}
	return &RoomsAdapter{container: container}
}

// CreateRoom allocates a new room and returns it.
func (a *RoomsAdapter) CreateRoom(ctx context.Context) (*domain.Room, error) {
	req := CreateRoomRequest{}
	var resp CreateRoomResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceCreateRoom,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return resp.Room, nil
}

// RoomExists checks whether a room code names a live room.
func (a *RoomsAdapter) RoomExists(ctx context.Context, roomCode string) (bool, error) {
	req := RoomExistsRequest{RoomCode: roomCode}
	var resp RoomExistsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceRoomExists,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return false, fmt.Errorf("failed to check room: %w", err)
	}
	return resp.Exists, nil
}

// JoinRoom adds a session to a room.
func (a *RoomsAdapter) JoinRoom(ctx context.Context, roomCode, sessionID, username string) error {
	req := JoinRoomRequest{RoomCode: roomCode, SessionID: sessionID, Username: username}
	var resp JoinRoomResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceJoinRoom,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}
	if !resp.Success {
		return errorForCode(resp.ErrorCode)
	}
	return nil
}

// SendMessage admits a message for broadcast and returns the stamped message.
func (a *RoomsAdapter) SendMessage(ctx context.Context, roomCode, sessionID, username, content string) (*domain.Message, error) {
	req := SendMessageRequest{
		RoomCode:  roomCode,
		SessionID: sessionID,
		Username:  username,
		Content:   content,
	}
	var resp SendMessageResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceSendMessage,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	if !resp.Success {
		return nil, errorForCode(resp.ErrorCode)
	}
	return &domain.Message{
		ID:        resp.MessageID,
		RoomCode:  NormalizeRoomCode(roomCode),
		SessionID: sessionID,
		Username:  username,
		Content:   content,
		Timestamp: resp.Timestamp,
	}, nil
}

// Disconnect removes the session from every room it has joined.
func (a *RoomsAdapter) Disconnect(ctx context.Context, sessionID string) ([]Departure, error) {
	req := DisconnectRequest{SessionID: sessionID}
	var resp DisconnectResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceDisconnectSession,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to disconnect session: %w", err)
	}
	return resp.Departures, nil
}

// errorForCode maps a service response error code back to a sentinel error.
func errorForCode(code string) error {
	switch code {
	case CodeRoomNotFound:
		return ErrRoomNotFound
	case CodeNotAMember:
		return ErrNotRoomMember
	case CodeInvalidUsername:
		return ErrUsernameEmpty
	default:
		return fmt.Errorf("room operation failed: %s", code)
	}
}
