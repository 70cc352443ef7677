package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"flagstat/internal/catalog"
)

// Config holds the game-rule knobs for a session.
type Config struct {
	PeriodSeconds   int
	TimeoutsPerSide int
	UpsertTimeout   time.Duration
}

// DefaultConfig returns standard flag-football session rules:
// 20 minute halves counted down per period, 3 timeouts a side.
func DefaultConfig() Config {
	return Config{
		PeriodSeconds:   20 * 60,
		TimeoutsPerSide: 3,
		UpsertTimeout:   3 * time.Second,
	}
}

// Params describes the game a session is tracking.
type Params struct {
	TeamID    string `json:"teamId"`
	Season    int    `json:"season"`
	HomeName  string `json:"homeName"`
	AwayName  string `json:"awayName"`
	Opponent  string `json:"opponent"`
	GameType  string `json:"gameType"`
	Notes     string `json:"notes"`
	CreatedBy string `json:"createdBy"`
}

// Session is one live game: the clock, the active roster, the per-player
// stat accumulator and the scoreboard, owned together behind one mutex.
// It is an explicit object handed around by reference; a process can run
// any number of concurrent sessions without cross-talk. After EndGame the
// session is spent: only the snapshot and the reconciliation summary
// remain readable.
type Session struct {
	ID      string
	Created time.Time

	mu     sync.Mutex
	params Params
	clock  *Clock
	roster *Roster
	acc    *Accumulator
	ledger *Ledger
	rec    *Reconciler

	tickerOn   bool
	stopChan   chan struct{}
	reconciled chan struct{}
	summary    *Summary
	endedAt    time.Time

	// onChange fires after every successful mutation, outside the lock,
	// with a fresh snapshot. Used for scoreboard fan-out.
	onChange func(Snapshot)
}

// New creates a session in NotStarted.
func New(params Params, cfg Config, rec *Reconciler) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Created:    time.Now().UTC(),
		params:     params,
		clock:      NewClock(cfg.PeriodSeconds, cfg.TimeoutsPerSide),
		roster:     NewRoster(),
		acc:        NewAccumulator(),
		ledger:     NewLedger(params.HomeName, params.AwayName),
		rec:        rec,
		stopChan:   make(chan struct{}),
		reconciled: make(chan struct{}),
	}
}

// SetOnChange registers the snapshot fan-out callback. Call before the
// session starts mutating.
func (s *Session) SetOnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Session) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(s.Snapshot())
	}
}

// StartGame begins the game and the 1 Hz clock countdown.
func (s *Session) StartGame() error {
	s.mu.Lock()
	if err := s.clock.start(); err != nil {
		s.mu.Unlock()
		return err
	}
	if !s.tickerOn {
		s.tickerOn = true
		go s.run()
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// run is the clock loop. Ticks contend on the session mutex with user
// mutations, so a tick never races a counter update.
func (s *Session) run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			s.clock.tick()
			s.mu.Unlock()
		case <-s.stopChan:
			return
		}
	}
}

// PauseGame stops the countdown.
func (s *Session) PauseGame() error {
	s.mu.Lock()
	err := s.clock.pause()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// ResumeGame restarts the countdown from Paused.
func (s *Session) ResumeGame() error {
	s.mu.Lock()
	err := s.clock.resume()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// SetActiveRoster replaces one side's active players.
func (s *Session) SetActiveRoster(side Side, players []Player) error {
	s.mu.Lock()
	if s.clock.State() == StateEnded {
		s.mu.Unlock()
		return nil
	}
	s.roster.setSide(side, players)
	s.mu.Unlock()
	s.notify()
	return nil
}

// SelectPlayer sets (or toggles off) the implicit action target.
func (s *Session) SelectPlayer(playerID string) error {
	s.mu.Lock()
	if s.clock.State() == StateEnded {
		s.mu.Unlock()
		return nil
	}
	err := s.roster.selectPlayer(playerID)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// RecordAction applies one stat action. playerID may be empty, in which
// case the currently selected player is the target. explicitPoints is
// required for variable-point kinds (interception returns) and ignored
// otherwise. Scoring kinds also post to the scoreboard for the side the
// player's roster was loaded under.
func (s *Session) RecordAction(playerID string, kind catalog.Kind, explicitPoints *int) error {
	s.mu.Lock()
	if s.clock.State() != StateRunning {
		s.mu.Unlock()
		return ErrInvalidState
	}

	target, err := s.roster.resolve(playerID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	action, ok := catalog.Lookup(kind)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	points := action.Points
	if action.VariablePoints {
		if explicitPoints == nil {
			s.mu.Unlock()
			return ErrMissingPoints
		}
		points = *explicitPoints
	}

	side, _ := s.roster.sideOf(target)
	ledgerPoints := 0
	if action.Scoring {
		s.ledger.add(side, points)
		ledgerPoints = points
	}
	s.acc.apply(target, action.Field, side, ledgerPoints)
	s.mu.Unlock()
	s.notify()
	return nil
}

// Undo reverses the single most recent action: the counter comes back
// down (floored at zero) and any scoreboard points are taken off again.
// Returns false when there is nothing to undo, including a second
// consecutive call.
func (s *Session) Undo() bool {
	s.mu.Lock()
	if s.clock.State() == StateEnded {
		s.mu.Unlock()
		return false
	}
	act, ok := s.acc.undo()
	if ok && act.ledgerPoints > 0 {
		s.ledger.add(act.ledgerSide, -act.ledgerPoints)
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
	return ok
}

// UpdateScore posts points straight to the scoreboard without player
// attribution.
func (s *Session) UpdateScore(side Side, points int) error {
	s.mu.Lock()
	if s.clock.State() == StateEnded {
		s.mu.Unlock()
		return nil
	}
	if s.clock.State() != StateRunning {
		s.mu.Unlock()
		return ErrInvalidState
	}
	s.ledger.add(side, points)
	s.mu.Unlock()
	s.notify()
	return nil
}

// AdjustQuarter moves the quarter by delta, clamped to [1,6].
func (s *Session) AdjustQuarter(delta int) {
	s.mu.Lock()
	s.clock.adjustQuarter(delta)
	s.mu.Unlock()
	s.notify()
}

// UseTimeout burns a timeout for a side, never below zero.
func (s *Session) UseTimeout(side Side) {
	s.mu.Lock()
	s.clock.useTimeout(side)
	s.mu.Unlock()
	s.notify()
}

// EndGame ends the session and reconciles it: every non-empty stat line
// merges into its player's season aggregate and one game record is
// written. Ending an already-ended session is an idempotent no-op that
// returns the original summary (waiting for reconciliation to finish if
// it is still in flight). There is no cancelling a game end; a coach can
// only start a new game afterward.
func (s *Session) EndGame(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	if s.clock.State() == StateEnded {
		done := s.reconciled
		s.mu.Unlock()
		<-done
		s.mu.Lock()
		summary := *s.summary
		s.mu.Unlock()
		return summary, nil
	}

	s.clock.end()
	s.endedAt = time.Now()
	if s.tickerOn {
		close(s.stopChan)
		s.tickerOn = false
	}

	lines := s.acc.drain()
	record := &GameRecord{
		ID:        uuid.NewString(),
		TeamID:    s.params.TeamID,
		Date:      s.Created,
		Opponent:  s.opponentName(),
		HomeScore: s.ledger.score(SideHome),
		AwayScore: s.ledger.score(SideAway),
		GameType:  s.params.GameType,
		Notes:     s.params.Notes,
		CreatedBy: s.params.CreatedBy,
	}
	teamID, season := s.params.TeamID, s.params.Season
	s.mu.Unlock()

	// The drained lines are exclusively ours now; the accumulator is
	// empty and the session rejects further actions, so this commit can
	// only ever happen once.
	summary := s.rec.Reconcile(ctx, teamID, season, lines, record)

	s.mu.Lock()
	s.summary = &summary
	close(s.reconciled)
	s.mu.Unlock()
	s.notify()
	return summary, nil
}

func (s *Session) opponentName() string {
	if s.params.Opponent != "" {
		return s.params.Opponent
	}
	return s.params.AwayName
}

// Ended reports whether the session has reached its terminal state.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.State() == StateEnded
}

// EndedAt returns when the session ended (zero while live).
func (s *Session) EndedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endedAt
}

// Snapshot is the read-only view of a session for the API, the
// scoreboard fan-out and the cache.
type Snapshot struct {
	ID           string                 `json:"id"`
	TeamID       string                 `json:"teamId"`
	Season       int                    `json:"season"`
	State        State                  `json:"state"`
	Quarter      int                    `json:"quarter"`
	QuarterLabel string                 `json:"quarterLabel"`
	ClockSeconds int                    `json:"clockSeconds"`
	HomeName     string                 `json:"homeName"`
	AwayName     string                 `json:"awayName"`
	HomeScore    int                    `json:"homeScore"`
	AwayScore    int                    `json:"awayScore"`
	HomeTimeouts int                    `json:"homeTimeouts"`
	AwayTimeouts int                    `json:"awayTimeouts"`
	Selected     string                 `json:"selectedPlayerId,omitempty"`
	Roster       []Player               `json:"roster"`
	Stats        map[string]PlayerStats `json:"stats"`
	Summary      *Summary               `json:"summary,omitempty"`
}

// Snapshot copies the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:           s.ID,
		TeamID:       s.params.TeamID,
		Season:       s.params.Season,
		State:        s.clock.State(),
		Quarter:      s.clock.Quarter(),
		QuarterLabel: quarterLabel(s.clock.Quarter()),
		ClockSeconds: s.clock.Seconds(),
		HomeName:     s.ledger.name(SideHome),
		AwayName:     s.ledger.name(SideAway),
		HomeScore:    s.ledger.score(SideHome),
		AwayScore:    s.ledger.score(SideAway),
		HomeTimeouts: s.clock.Timeouts(SideHome),
		AwayTimeouts: s.clock.Timeouts(SideAway),
		Selected:     s.roster.selected,
		Roster:       s.roster.list(),
		Stats:        s.acc.snapshotLines(),
	}
	if s.summary != nil {
		summary := *s.summary
		snap.Summary = &summary
	}
	return snap
}

// quarterLabel renders quarters 5 and 6 as overtime.
func quarterLabel(q int) string {
	if q > 4 {
		return fmt.Sprintf("OT %d", q-4)
	}
	return fmt.Sprintf("Q%d", q)
}
