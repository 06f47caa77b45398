package broadcast

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// sendBufferSize is the per-client outbound queue depth. A client that
// falls this far behind starts losing events rather than stalling fan-out.
const sendBufferSize = 64

// Client is one live WebSocket connection tracked by the Hub. All outbound
// traffic goes through a buffered channel drained by WritePump, giving each
// connection a single ordered write path.
type Client struct {
	ID       string
	Username string
	conn     *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// NewClient wraps a WebSocket connection for hub tracking.
func NewClient(id, username string, conn *websocket.Conn) *Client {
	return &Client{
		ID:       id,
		Username: username,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
	}
}

// Send queues data for delivery to this client. It never blocks: when the
// client's buffer is full the event is dropped and false is returned. Send
// and Close are mutually exclusive, so delivery racing a disconnect is a
// dropped event, never a send on a closed channel.
func (c *Client) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close closes the outbound channel, stopping WritePump. Safe to call more
// than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Outbound exposes the client's delivery queue. WritePump drains it onto
// the socket; it is closed when the client is closed.
func (c *Client) Outbound() <-chan []byte {
	return c.send
}

// WritePump drains the outbound channel onto the WebSocket connection. Run
// it in its own goroutine; it exits when Close is called or a write fails.
func (c *Client) WritePump() {
	defer func() { _ = c.conn.Close() }()
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[hub] write to client %s failed: %v", c.ID, err)
			return
		}
	}
}

// BroadcastMessage is one fan-out request. An empty RoomCode targets every
// connected client. Exclude lists client ids skipped during delivery.
type BroadcastMessage struct {
	RoomCode string
	Exclude  []string
	Payload  any
}

// Hub routes events to WebSocket clients by room. Membership mutation is
// mutex-guarded and synchronous; fan-out is serialized through a single
// queue so events reach every member of a room in submission order.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]struct{} // room code -> client ids
	joined  map[string]map[string]struct{} // client id -> room codes

	queue chan *BroadcastMessage
	done  chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]struct{}),
		joined:  make(map[string]map[string]struct{}),
		queue:   make(chan *BroadcastMessage, 256),
		done:    make(chan struct{}),
	}
}

// Run drains the broadcast queue until the context is cancelled, then
// closes all client connections.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("[hub] Shutting down...")
			h.closeAllClients()
			close(h.done)
			return
		case msg := <-h.queue:
			h.deliver(msg)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		client.Close()
	}
	h.clients = make(map[string]*Client)
	h.rooms = make(map[string]map[string]struct{})
	h.joined = make(map[string]map[string]struct{})
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[hub] Client %s registered", client.ID)
}

// Unregister removes a client from the hub and from every room it joined,
// closes its outbound channel, and returns the room codes it was removed
// from, sorted. Unknown clients yield an empty slice.
func (h *Hub) Unregister(clientID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[clientID]
	if !ok {
		return nil
	}
	delete(h.clients, clientID)

	var codes []string
	for code := range h.joined[clientID] {
		codes = append(codes, code)
		if set, ok := h.rooms[code]; ok {
			delete(set, clientID)
			if len(set) == 0 {
				delete(h.rooms, code)
			}
		}
	}
	delete(h.joined, clientID)
	sort.Strings(codes)

	client.Close()
	log.Printf("[hub] Client %s unregistered", clientID)
	return codes
}

// JoinRoom adds a client to a room. Clients may be in several rooms at
// once; joining a room the client is already in is a no-op. Returns false
// for unknown clients.
func (h *Hub) JoinRoom(clientID, roomCode string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[clientID]; !ok {
		return false
	}
	if h.rooms[roomCode] == nil {
		h.rooms[roomCode] = make(map[string]struct{})
	}
	h.rooms[roomCode][clientID] = struct{}{}
	if h.joined[clientID] == nil {
		h.joined[clientID] = make(map[string]struct{})
	}
	h.joined[clientID][roomCode] = struct{}{}
	log.Printf("[hub] Client %s joined room %s", clientID, roomCode)
	return true
}

// LeaveRoom removes a client from one room; tolerant of unknown clients
// and rooms.
func (h *Hub) LeaveRoom(clientID, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.rooms[roomCode]; ok {
		delete(set, clientID)
		if len(set) == 0 {
			delete(h.rooms, roomCode)
		}
	}
	if set, ok := h.joined[clientID]; ok {
		delete(set, roomCode)
	}
}

// Broadcast queues an event for every client in a room. An empty roomCode
// targets all connected clients.
func (h *Hub) Broadcast(roomCode string, payload any) {
	h.queue <- &BroadcastMessage{RoomCode: roomCode, Payload: payload}
}

// BroadcastExcept queues an event for every client in a room except those
// listed in exclude.
func (h *Hub) BroadcastExcept(roomCode string, exclude []string, payload any) {
	h.queue <- &BroadcastMessage{RoomCode: roomCode, Exclude: exclude, Payload: payload}
}

// deliver fans one event out to its targets. The membership snapshot is
// taken under the read lock and the payload marshaled once. A full client
// buffer drops the event for that client only.
func (h *Hub) deliver(msg *BroadcastMessage) {
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		log.Printf("[hub] Failed to marshal broadcast message: %v", err)
		return
	}

	excluded := make(map[string]struct{}, len(msg.Exclude))
	for _, id := range msg.Exclude {
		excluded[id] = struct{}{}
	}

	h.mu.RLock()
	var targets []*Client
	if msg.RoomCode == "" {
		for _, client := range h.clients {
			if _, skip := excluded[client.ID]; !skip {
				targets = append(targets, client)
			}
		}
	} else if ids, ok := h.rooms[msg.RoomCode]; ok {
		for id := range ids {
			if _, skip := excluded[id]; skip {
				continue
			}
			if client, ok := h.clients[id]; ok {
				targets = append(targets, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if !client.Send(data) {
			log.Printf("[hub] Client %s outbound buffer full, dropping event", client.ID)
		}
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomClientCount returns the number of clients in a room.
func (h *Hub) RoomClientCount(roomCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomCode])
}
