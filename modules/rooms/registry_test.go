package rooms

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// sequentialCodes returns a generator yielding the given codes in order,
// then panics. Lets tests force collisions deterministically.
func sequentialCodes(codes ...string) func() string {
	i := 0
	return func() string {
		if i >= len(codes) {
			panic("sequentialCodes exhausted")
		}
		code := codes[i]
		i++
		return code
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	newCode, err := NewCodeGenerator(DefaultCodeLength)
	if err != nil {
		t.Fatalf("NewCodeGenerator() error = %v", err)
	}
	return NewRegistry(newCode)
}

func TestCreateRoomRetriesOnCollision(t *testing.T) {
	r := NewRegistry(sequentialCodes("AAAAAA", "AAAAAA", "BBBBBB"))

	first, err := r.CreateRoom()
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	if first.Code != "AAAAAA" {
		t.Fatalf("first room code = %q, want AAAAAA", first.Code)
	}

	// Second create draws AAAAAA again, detects the collision, and
	// retries with the next code.
	second, err := r.CreateRoom()
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	if second.Code != "BBBBBB" {
		t.Errorf("second room code = %q, want BBBBBB", second.Code)
	}
}

func TestCreateRoomExhaustsRetries(t *testing.T) {
	r := NewRegistry(func() string { return "SAMECD" })

	if _, err := r.CreateRoom(); err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	_, err := r.CreateRoom()
	if !errors.Is(err, ErrCodeSpaceExhausted) {
		t.Errorf("CreateRoom() error = %v, want ErrCodeSpaceExhausted", err)
	}
}

func TestAddMemberUnknownRoom(t *testing.T) {
	r := newTestRegistry(t)

	err := r.AddMember("NOSUCH", "s1", "alice")
	if !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("AddMember() error = %v, want ErrRoomNotFound", err)
	}
}

func TestAddMemberIdempotent(t *testing.T) {
	r := newTestRegistry(t)
	rm, err := r.CreateRoom()
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}

	if err := r.AddMember(rm.Code, "s1", "alice"); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if err := r.AddMember(rm.Code, "s1", "alice"); err != nil {
		t.Fatalf("repeated AddMember() error = %v", err)
	}

	if got := r.MemberCount(rm.Code); got != 1 {
		t.Errorf("MemberCount() = %d, want 1", got)
	}
}

func TestRemoveMemberTolerant(t *testing.T) {
	r := newTestRegistry(t)
	rm, err := r.CreateRoom()
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}

	// None of these should panic or corrupt state.
	r.RemoveMember("NOSUCH", "s1")
	r.RemoveMember(rm.Code, "never-joined")

	if err := r.AddMember(rm.Code, "s1", "alice"); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	r.RemoveMember(rm.Code, "s1")
	r.RemoveMember(rm.Code, "s1")

	if got := r.MemberCount(rm.Code); got != 0 {
		t.Errorf("MemberCount() = %d, want 0", got)
	}
	// The emptied room still exists.
	if !r.Exists(rm.Code) {
		t.Error("room no longer exists after last member left")
	}
}

func TestMembersSnapshot(t *testing.T) {
	r := newTestRegistry(t)
	rm, err := r.CreateRoom()
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}

	for i, name := range []string{"carol", "alice", "bob"} {
		sessionID := fmt.Sprintf("s%d", i)
		if err := r.AddMember(rm.Code, sessionID, name); err != nil {
			t.Fatalf("AddMember() error = %v", err)
		}
	}

	members := r.Members(rm.Code)
	if len(members) != 3 {
		t.Fatalf("Members() returned %d entries, want 3", len(members))
	}
	for i := 1; i < len(members); i++ {
		if members[i-1].SessionID >= members[i].SessionID {
			t.Errorf("Members() not sorted: %q before %q", members[i-1].SessionID, members[i].SessionID)
		}
	}

	if got := r.Members("NOSUCH"); len(got) != 0 {
		t.Errorf("Members() for unknown room = %v, want empty", got)
	}
}

func TestRemoveSessionMultiRoom(t *testing.T) {
	r := newTestRegistry(t)

	room1, err := r.CreateRoom()
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	room2, err := r.CreateRoom()
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}

	if err := r.AddMember(room1.Code, "s1", "alice"); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if err := r.AddMember(room2.Code, "s1", "alice"); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if err := r.AddMember(room1.Code, "s2", "bob"); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	departures := r.RemoveSession("s1")
	if len(departures) != 2 {
		t.Fatalf("RemoveSession() returned %d departures, want 2", len(departures))
	}
	for _, dep := range departures {
		if dep.SessionID != "s1" || dep.Username != "alice" {
			t.Errorf("departure = %+v", dep)
		}
	}
	if departures[0].RoomCode >= departures[1].RoomCode {
		t.Errorf("RemoveSession() departures not sorted: %v", departures)
	}

	// The other member is untouched.
	if !r.IsMember(room1.Code, "s2") {
		t.Error("unrelated member removed by RemoveSession")
	}

	// A second removal of the same session reports nothing.
	if departures = r.RemoveSession("s1"); len(departures) != 0 {
		t.Errorf("repeated RemoveSession() returned %v, want empty", departures)
	}
}

func TestDisplayNamesAreRoomScoped(t *testing.T) {
	r := newTestRegistry(t)

	room1, err := r.CreateRoom()
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	room2, err := r.CreateRoom()
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}

	// One session, two rooms, two names.
	if err := r.AddMember(room1.Code, "s1", "alice"); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if err := r.AddMember(room2.Code, "s1", "bob"); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	if got := r.Members(room1.Code); len(got) != 1 || got[0].Username != "alice" {
		t.Errorf("Members(%s) = %+v, want alice", room1.Code, got)
	}
	if got := r.Members(room2.Code); len(got) != 1 || got[0].Username != "bob" {
		t.Errorf("Members(%s) = %+v, want bob", room2.Code, got)
	}

	byRoom := make(map[string]string)
	for _, dep := range r.RemoveSession("s1") {
		byRoom[dep.RoomCode] = dep.Username
	}
	if byRoom[room1.Code] != "alice" || byRoom[room2.Code] != "bob" {
		t.Errorf("departure names = %v, want per-room names", byRoom)
	}
}

func TestCreateRoomConcurrentUnique(t *testing.T) {
	r := newTestRegistry(t)

	const n = 100
	var wg sync.WaitGroup
	codes := make(chan string, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rm, err := r.CreateRoom()
			if err != nil {
				t.Errorf("CreateRoom() error = %v", err)
				return
			}
			codes <- rm.Code
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]struct{})
	for code := range codes {
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate room code handed out: %q", code)
		}
		seen[code] = struct{}{}
	}
	if r.RoomCount() != len(seen) {
		t.Errorf("RoomCount() = %d, want %d", r.RoomCount(), len(seen))
	}
}
