package session

import (
	"log"
	"sync"
	"time"
)

const (
	// endedRetention is how long a spent session stays readable (for
	// summary/snapshot reads) before the prune loop drops it.
	endedRetention = time.Hour

	pruneInterval = 5 * time.Minute
)

// Manager owns every live session in the process, keyed by session id.
// Sessions are independent; two simultaneous live games never share
// state beyond the stores behind the reconciler.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg     Config
	seasons SeasonStore
	games   GameRecordStore

	onChange func(Snapshot)

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewManager creates a session manager backed by the given stores.
func NewManager(seasons SeasonStore, games GameRecordStore, cfg Config) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		seasons:  seasons,
		games:    games,
		stopChan: make(chan struct{}),
	}
	go m.pruneLoop()
	return m
}

// SetOnChange registers a snapshot fan-out callback inherited by every
// session created afterwards.
func (m *Manager) SetOnChange(fn func(Snapshot)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Create builds a new session in NotStarted and registers it.
func (m *Manager) Create(params Params) *Session {
	rec := NewReconciler(m.seasons, m.games, m.cfg.UpsertTimeout)
	s := New(params, m.cfg, rec)

	m.mu.Lock()
	if m.onChange != nil {
		s.SetOnChange(m.onChange)
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Printf("[Session] created %s for team %s (%s vs %s)",
		s.ID, params.TeamID, params.HomeName, params.AwayName)
	return s
}

// Get returns a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove drops a session from the registry.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Snapshots returns snapshots of every registered session.
func (m *Manager) Snapshots() []Snapshot {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	out := make([]Snapshot, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Snapshot())
	}
	return out
}

// Stop stops the prune loop.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

// pruneLoop drops ended sessions once their retention window passes.
func (m *Manager) pruneLoop() {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.prune()
		}
	}
}

func (m *Manager) prune() {
	cutoff := time.Now().Add(-endedRetention)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if endedAt := s.EndedAt(); !endedAt.IsZero() && endedAt.Before(cutoff) {
			delete(m.sessions, id)
			log.Printf("[Session] pruned ended session %s", id)
		}
	}
}
