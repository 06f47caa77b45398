package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/room-chat-demo/modules/broadcast"
	"github.com/example/room-chat-demo/modules/rooms"
)

const maxMessageLength = 4096

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes() {
	// Health check
	m.app.Get("/health", m.healthHandler)

	// WebSocket endpoint
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handleWebSocket))

	// REST API v1
	api := m.app.Group("/api/v1")

	api.Post("/rooms", m.createRoom)
	api.Get("/rooms/:code", m.getRoom)
	api.Get("/stats", m.getStats)
	api.Get("/stats/:code", m.getRoomStats)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.hub.ClientCount(),
		},
	})
}

// createRoom handles POST /api/v1/rooms. Rooms carry no name or payload;
// the generated code is the whole identity.
func (m *APIModule) createRoom(c *fiber.Ctx) error {
	room, err := m.roomsAdapter.CreateRoom(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to create room",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(RoomResponse{
		Code:      room.Code,
		CreatedAt: room.CreatedAt,
	})
}

// getRoom handles GET /api/v1/rooms/:code.
func (m *APIModule) getRoom(c *fiber.Ctx) error {
	code := rooms.NormalizeRoomCode(c.Params("code"))
	if !rooms.IsValidRoomCode(code) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_code",
			Message: "Room code must be 6 alphanumeric characters",
		})
	}

	exists, err := m.roomsAdapter.RoomExists(c.UserContext(), code)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "lookup_failed",
			Message: "Failed to check room",
		})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Room not found",
		})
	}

	return c.JSON(RoomResponse{
		Code:    code,
		Members: m.hub.RoomClientCount(code),
	})
}

// getStats handles GET /api/v1/stats.
func (m *APIModule) getStats(c *fiber.Ctx) error {
	summary, err := m.presenceAdapter.Summary(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "stats_failed",
			Message: "Failed to get stats",
		})
	}
	return c.JSON(summary)
}

// getRoomStats handles GET /api/v1/stats/:code.
func (m *APIModule) getRoomStats(c *fiber.Ctx) error {
	code := rooms.NormalizeRoomCode(c.Params("code"))

	stats, found, err := m.presenceAdapter.RoomStats(c.UserContext(), code)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "stats_failed",
			Message: "Failed to get stats",
		})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "No activity recorded for room",
		})
	}
	return c.JSON(stats)
}

// handleWebSocket handles WebSocket connections at /ws. Each connection is
// a session identified by a fresh id; the hub's WritePump owns all writes
// to the socket, so every outbound frame goes through client.Send.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	sessionID := uuid.New().String()

	client := broadcast.NewClient(sessionID, "", c)
	m.hub.Register(client)
	go client.WritePump()

	defer m.teardownSession(sessionID)

	m.logger.Info("WebSocket client connected", "sessionID", sessionID)

	m.sendEvent(client, broadcast.WSEvent{
		Type:      broadcast.EventConnected,
		SessionID: sessionID,
	})

	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Debug("Client closed connection", "sessionID", sessionID)
			} else {
				m.logger.Debug("Read error", "sessionID", sessionID, "error", err)
			}
			break
		}

		var req WSRequest
		if err := json.Unmarshal(msgBytes, &req); err != nil {
			m.sendError(client, "Invalid message format")
			continue
		}

		switch req.Type {
		case WSTypeJoinRoom:
			m.handleJoin(client, req)
		case WSTypeSendMessage:
			m.handleMessage(client, req)
		default:
			m.sendError(client, "Unknown message type: "+req.Type)
		}
	}
}

// teardownSession reconciles a dropped connection. Hub membership goes
// first so the departing session cannot receive its own user_left events;
// the registry then reports the rooms to announce in, and only remaining
// members hear the departure.
func (m *APIModule) teardownSession(sessionID string) {
	m.hub.Unregister(sessionID)
	departures, err := m.roomsAdapter.Disconnect(context.Background(), sessionID)
	if err != nil {
		m.logger.Warn("Failed to reconcile disconnect", "sessionID", sessionID, "error", err)
	}
	for _, dep := range departures {
		m.hub.Broadcast(dep.RoomCode, broadcast.WSEvent{
			Type:      broadcast.EventUserLeft,
			RoomCode:  dep.RoomCode,
			SessionID: dep.SessionID,
			Username:  dep.Username,
		})
	}
	m.logger.Info("WebSocket client disconnected", "sessionID", sessionID)
}

// handleJoin processes a join_room request. A failed join is reported to
// the caller only; a successful one is announced to every member of the
// room, the joiner included.
func (m *APIModule) handleJoin(client *broadcast.Client, req WSRequest) {
	code := rooms.NormalizeRoomCode(req.RoomCode)

	err := m.roomsAdapter.JoinRoom(context.Background(), code, client.ID, req.Username)
	switch {
	case err == nil:
	case errors.Is(err, rooms.ErrRoomNotFound):
		m.sendError(client, "Room does not exist")
		return
	case errors.Is(err, rooms.ErrUsernameEmpty):
		m.sendError(client, "Username is required")
		return
	default:
		m.sendError(client, "Failed to join room")
		return
	}

	client.Username = req.Username
	m.hub.JoinRoom(client.ID, code)

	m.hub.Broadcast(code, broadcast.WSEvent{
		Type:      broadcast.EventUserJoined,
		RoomCode:  code,
		SessionID: client.ID,
		Username:  req.Username,
	})
}

// handleMessage processes a send_message request. The room code and
// username are taken from the request as-is and the message is fanned out
// to every current member of the room, the sender included.
func (m *APIModule) handleMessage(client *broadcast.Client, req WSRequest) {
	if req.Message == "" {
		m.sendError(client, "Message content is required")
		return
	}
	if len(req.Message) > maxMessageLength {
		m.sendError(client, "Message too long")
		return
	}

	msg, err := m.roomsAdapter.SendMessage(
		context.Background(),
		req.RoomCode,
		client.ID,
		req.Username,
		req.Message,
	)
	if err != nil {
		if errors.Is(err, rooms.ErrNotRoomMember) {
			m.sendError(client, "Not a member of this room")
			return
		}
		m.sendError(client, "Failed to send message")
		return
	}

	m.hub.Broadcast(msg.RoomCode, broadcast.WSEvent{
		Type:      broadcast.EventReceiveMessage,
		RoomCode:  msg.RoomCode,
		SessionID: msg.SessionID,
		Username:  msg.Username,
		Message:   msg.Content,
		MessageID: msg.ID,
		Timestamp: msg.Timestamp,
	})
}

// sendEvent queues an event for one client.
func (m *APIModule) sendEvent(client *broadcast.Client, event broadcast.WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		m.logger.Warn("Failed to encode event", "sessionID", client.ID, "error", err)
		return
	}
	if !client.Send(data) {
		m.logger.Warn("Client outbound buffer full, dropping event", "sessionID", client.ID)
	}
}

// sendError reports an error to one client only.
func (m *APIModule) sendError(client *broadcast.Client, message string) {
	m.sendEvent(client, broadcast.WSEvent{
		Type:    broadcast.EventError,
		Message: message,
	})
}
