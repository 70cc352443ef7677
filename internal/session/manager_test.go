package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestManagerRegistry(t *testing.T) {
	m := NewManager(newFakeSeasonStore(), &fakeGameStore{}, DefaultConfig())
	defer m.Stop()

	s1 := m.Create(Params{TeamID: "team-1", HomeName: "Tigers", AwayName: "Sharks"})
	s2 := m.Create(Params{TeamID: "team-2", HomeName: "Bears", AwayName: "Hawks"})

	if m.Count() != 2 {
		t.Fatalf("expected 2 sessions, got %d", m.Count())
	}
	if s1.ID == s2.ID {
		t.Fatal("sessions should get distinct ids")
	}

	got, err := m.Get(s1.ID)
	if err != nil || got != s1 {
		t.Fatalf("get: %v", err)
	}
	if _, err := m.Get("ghost"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	if snaps := m.Snapshots(); len(snaps) != 2 {
		t.Errorf("expected 2 snapshots, got %d", len(snaps))
	}

	m.Remove(s2.ID)
	if m.Count() != 1 {
		t.Errorf("expected 1 session after remove, got %d", m.Count())
	}
}

func TestManagerSessionsAreIndependent(t *testing.T) {
	m := NewManager(newFakeSeasonStore(), &fakeGameStore{}, DefaultConfig())
	defer m.Stop()

	s1 := m.Create(Params{TeamID: "team-1", HomeName: "Tigers", AwayName: "Sharks"})
	s2 := m.Create(Params{TeamID: "team-2", HomeName: "Bears", AwayName: "Hawks"})

	if err := s1.StartGame(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := s1.EndGame(context.Background()); err != nil {
		t.Fatalf("end: %v", err)
	}

	if s2.Ended() {
		t.Error("ending one session must not touch another")
	}
}

func TestManagerPruneKeepsLiveSessions(t *testing.T) {
	m := NewManager(newFakeSeasonStore(), &fakeGameStore{}, DefaultConfig())
	defer m.Stop()

	live := m.Create(Params{TeamID: "team-1", HomeName: "Tigers", AwayName: "Sharks"})
	spent := m.Create(Params{TeamID: "team-1", HomeName: "Tigers", AwayName: "Hawks"})

	if err := spent.StartGame(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := spent.EndGame(context.Background()); err != nil {
		t.Fatalf("end: %v", err)
	}

	// Backdate the end past the retention window.
	spent.mu.Lock()
	spent.endedAt = time.Now().Add(-2 * endedRetention)
	spent.mu.Unlock()

	m.prune()

	if _, err := m.Get(spent.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("stale ended session should be pruned, got %v", err)
	}
	if _, err := m.Get(live.ID); err != nil {
		t.Errorf("live session should survive pruning: %v", err)
	}
}
