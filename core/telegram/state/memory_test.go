package state

import (
	"testing"
	"time"
)

type flowData struct {
	Query string
	Count int
}

func TestBeginReplacesExistingSession(t *testing.T) {
	m := NewManager[flowData](Options{})
	defer m.Close()

	s := m.Begin(1, State("collect"))
	s.Data.Count = 3

	s2 := m.Begin(1, State("confirm"))
	if s2.Data.Count != 0 {
		t.Fatalf("expected fresh session data, got count=%d", s2.Data.Count)
	}
	if s2.State != State("confirm") {
		t.Fatalf("expected state confirm, got %q", s2.State)
	}
}

func TestTransitionRequiresActiveSession(t *testing.T) {
	m := NewManager[flowData](Options{})
	defer m.Close()

	if m.Transition(7, State("label")) {
		t.Fatal("transition should fail without a session")
	}

	m.Begin(7, State("collect"))
	if !m.Transition(7, State("label")) {
		t.Fatal("transition should succeed with an active session")
	}
	s, ok := m.Get(7)
	if !ok || s.State != State("label") {
		t.Fatalf("expected state label, got %v ok=%v", s, ok)
	}
}

func TestInProgress(t *testing.T) {
	m := NewManager[flowData](Options{})
	defer m.Close()

	if m.InProgress(42) {
		t.Fatal("no session should mean not in progress")
	}
	m.Begin(42, State("collect"))
	if !m.InProgress(42) {
		t.Fatal("active session should be in progress")
	}
	m.End(42)
	if m.InProgress(42) {
		t.Fatal("ended session should not be in progress")
	}
}

func TestSweepEvictsOnlyStaleSessions(t *testing.T) {
	m := NewManager[flowData](Options{IdleTTL: time.Minute})
	defer m.Close()

	m.Begin(1, State("collect"))
	m.Begin(2, State("collect"))

	stale, _ := m.Get(1)
	stale.LastSeen = time.Now().Add(-2 * time.Minute)

	m.sweep(time.Now())

	if _, ok := m.Get(1); ok {
		t.Fatal("stale session should be evicted")
	}
	if _, ok := m.Get(2); !ok {
		t.Fatal("fresh session should survive sweep")
	}
}
