package api

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/room-chat-demo/domain/room"
	"github.com/example/room-chat-demo/modules/broadcast"
	"github.com/example/room-chat-demo/modules/rooms"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

// fakeRoomsPort returns canned departures and records the hub's client
// count at the moment Disconnect runs.
type fakeRoomsPort struct {
	hub                 *broadcast.Hub
	departures          []rooms.Departure
	clientsAtDisconnect int
}

func (f *fakeRoomsPort) CreateRoom(context.Context) (*room.Room, error) { return nil, nil }
func (f *fakeRoomsPort) RoomExists(context.Context, string) (bool, error) {
	return false, nil
}
func (f *fakeRoomsPort) JoinRoom(context.Context, string, string, string) error { return nil }
func (f *fakeRoomsPort) SendMessage(context.Context, string, string, string, string) (*room.Message, error) {
	return nil, nil
}
func (f *fakeRoomsPort) Disconnect(_ context.Context, _ string) ([]rooms.Departure, error) {
	f.clientsAtDisconnect = f.hub.ClientCount()
	return f.departures, nil
}

func recvUserLeft(t *testing.T, c *broadcast.Client) broadcast.WSEvent {
	t.Helper()
	select {
	case data := <-c.Outbound():
		var event broadcast.WSEvent
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("failed to decode delivered event: %v", err)
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for user_left delivery")
		return broadcast.WSEvent{}
	}
}

func assertNothingQueued(t *testing.T, c *broadcast.Client) {
	t.Helper()
	select {
	case data, ok := <-c.Outbound():
		if ok {
			t.Fatalf("unexpected event delivered: %s", data)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTeardownSessionFanOut(t *testing.T) {
	hub := broadcast.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		hub.Wait()
	})

	// Departing session is in two rooms; each room has one watcher, plus a
	// bystander room that must hear nothing.
	departing := broadcast.NewClient("dep", "alice", nil)
	watcherA := broadcast.NewClient("wa", "wa", nil)
	watcherB := broadcast.NewClient("wb", "wb", nil)
	bystander := broadcast.NewClient("wc", "wc", nil)
	for _, c := range []*broadcast.Client{departing, watcherA, watcherB, bystander} {
		hub.Register(c)
	}
	hub.JoinRoom("dep", "AAA111")
	hub.JoinRoom("dep", "BBB222")
	hub.JoinRoom("wa", "AAA111")
	hub.JoinRoom("wb", "BBB222")
	hub.JoinRoom("wc", "CCC333")

	fake := &fakeRoomsPort{
		hub: hub,
		departures: []rooms.Departure{
			{RoomCode: "AAA111", SessionID: "dep", Username: "alice"},
			{RoomCode: "BBB222", SessionID: "dep", Username: "alice"},
		},
	}
	m := &APIModule{
		hub:          hub,
		roomsAdapter: fake,
		logger:       &mockLogger{},
	}

	m.teardownSession("dep")

	// The hub no longer knew the departing client when the registry was
	// reconciled, so its own user_left could not reach it.
	if fake.clientsAtDisconnect != 3 {
		t.Errorf("clients at disconnect = %d, want 3 (departing client unregistered first)",
			fake.clientsAtDisconnect)
	}

	for _, tc := range []struct {
		watcher  *broadcast.Client
		roomCode string
	}{
		{watcherA, "AAA111"},
		{watcherB, "BBB222"},
	} {
		event := recvUserLeft(t, tc.watcher)
		if event.Type != broadcast.EventUserLeft {
			t.Errorf("watcher %s got event type %q", tc.watcher.ID, event.Type)
		}
		if event.RoomCode != tc.roomCode || event.SessionID != "dep" || event.Username != "alice" {
			t.Errorf("watcher %s got event = %+v", tc.watcher.ID, event)
		}
		// Exactly one user_left per room.
		assertNothingQueued(t, tc.watcher)
	}

	// No other room is notified, and the departing client got nothing.
	assertNothingQueued(t, bystander)
	assertNothingQueued(t, departing)
}
