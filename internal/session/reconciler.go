package session

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"flagstat/internal/catalog"
)

// SeasonStore is the persistence contract for season-to-date aggregates.
// Implemented by the Postgres store; kept minimal so tests can fake it.
type SeasonStore interface {
	// GetSeasonAggregate returns the aggregate for (player, team, season),
	// or nil when the player has no aggregate yet.
	GetSeasonAggregate(ctx context.Context, playerID, teamID string, season int) (*SeasonAggregate, error)
	// UpsertSeasonAggregate inserts or replaces the aggregate keyed by
	// (player, team, season).
	UpsertSeasonAggregate(ctx context.Context, agg *SeasonAggregate) error
}

// GameRecordStore is the persistence contract for the historical
// per-game record.
type GameRecordStore interface {
	InsertGameRecord(ctx context.Context, rec *GameRecord) error
}

// SeasonAggregate is a player's running season totals. Counters are
// monotonically non-decreasing across the season; GamesPlayed goes up by
// exactly one per completed game the player tallied stats in.
type SeasonAggregate struct {
	PlayerID    string                `json:"playerId"`
	TeamID      string                `json:"teamId"`
	Season      int                   `json:"season"`
	GamesPlayed int                   `json:"gamesPlayed"`
	Counters    map[catalog.Field]int `json:"counters"`
	TotalPoints int                   `json:"totalPoints"`
}

// GameRecord is the write-once historical summary of one completed game.
type GameRecord struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"teamId"`
	Date      time.Time `json:"date"`
	Opponent  string    `json:"opponent"`
	HomeScore int       `json:"homeScore"`
	AwayScore int       `json:"awayScore"`
	GameType  string    `json:"gameType"`
	Notes     string    `json:"notes"`
	CreatedBy string    `json:"createdBy"`
}

// Summary reports the outcome of reconciling one ended game. Persistence
// failures ride here as data; they are never raised as errors, because
// losing the game record over one player's failed delta would throw away
// more than it protects.
type Summary struct {
	Succeeded       int      `json:"succeededCount"`
	FailedPlayerIDs []string `json:"failedPlayerIds"`
	GameRecordSaved bool     `json:"gameRecordSaved"`
	GameRecordError string   `json:"gameRecordError,omitempty"`
}

// Reconciler merges drained session stat lines into durable season
// aggregates and writes the historical game record. Per-player upserts
// touch disjoint rows, so they run concurrently; each gets its own
// timeout and a timeout counts as that player's failure, not a fatal
// engine error.
type Reconciler struct {
	seasons       SeasonStore
	games         GameRecordStore
	upsertTimeout time.Duration
}

// NewReconciler creates a reconciler. upsertTimeout bounds each
// per-player round-trip; zero falls back to 3s.
func NewReconciler(seasons SeasonStore, games GameRecordStore, upsertTimeout time.Duration) *Reconciler {
	if upsertTimeout <= 0 {
		upsertTimeout = 3 * time.Second
	}
	return &Reconciler{
		seasons:       seasons,
		games:         games,
		upsertTimeout: upsertTimeout,
	}
}

type playerResult struct {
	playerID string
	err      error
}

// Reconcile commits the session's stat lines and the game record. The
// lines passed in have already been drained from the accumulator, so the
// same session data cannot be committed twice. Players reconcile
// independently: one failed upsert never blocks the rest, nor the game
// record write.
func (r *Reconciler) Reconcile(ctx context.Context, teamID string, season int, lines map[string]*StatLine, record *GameRecord) Summary {
	var summary Summary

	players := make([]string, 0, len(lines))
	for playerID, line := range lines {
		if line != nil && !line.empty() {
			players = append(players, playerID)
		}
	}

	results := make(chan playerResult, len(players))
	for _, playerID := range players {
		go func(playerID string, line *StatLine) {
			results <- playerResult{playerID, r.reconcilePlayer(ctx, teamID, season, playerID, line)}
		}(playerID, lines[playerID])
	}

	recordErr := make(chan error, 1)
	go func() {
		if record == nil {
			recordErr <- fmt.Errorf("no game record to save")
			return
		}
		wctx, cancel := context.WithTimeout(ctx, r.upsertTimeout)
		defer cancel()
		recordErr <- r.games.InsertGameRecord(wctx, record)
	}()

	for range players {
		res := <-results
		if res.err != nil {
			log.Printf("[Reconcile] player %s failed: %v", res.playerID, res.err)
			summary.FailedPlayerIDs = append(summary.FailedPlayerIDs, res.playerID)
			continue
		}
		// Committed: the line is discarded so a retry can never
		// double-count this player.
		delete(lines, res.playerID)
		summary.Succeeded++
	}
	sort.Strings(summary.FailedPlayerIDs)

	if err := <-recordErr; err != nil {
		log.Printf("[Reconcile] game record for team %s failed: %v", teamID, err)
		summary.GameRecordError = err.Error()
	} else {
		summary.GameRecordSaved = true
	}

	return summary
}

// reconcilePlayer does the read-modify-write for one player: load the
// current aggregate (missing means all zeros), sum counters elementwise,
// bump games played, recompute total points from the summed counters and
// upsert.
func (r *Reconciler) reconcilePlayer(ctx context.Context, teamID string, season int, playerID string, line *StatLine) error {
	uctx, cancel := context.WithTimeout(ctx, r.upsertTimeout)
	defer cancel()

	existing, err := r.seasons.GetSeasonAggregate(uctx, playerID, teamID, season)
	if err != nil {
		return fmt.Errorf("get season aggregate: %w", err)
	}
	if existing == nil {
		existing = &SeasonAggregate{
			PlayerID: playerID,
			TeamID:   teamID,
			Season:   season,
			Counters: make(map[catalog.Field]int),
		}
	}

	merged := &SeasonAggregate{
		PlayerID:    playerID,
		TeamID:      teamID,
		Season:      season,
		GamesPlayed: existing.GamesPlayed + 1,
		Counters:    make(map[catalog.Field]int, len(catalog.Fields)),
	}
	for f, n := range existing.Counters {
		merged.Counters[f] = n
	}
	for f, n := range line.Counters() {
		merged.Counters[f] += n
	}
	// Recomputed from the summed counters, never summed directly, so a
	// future weight change cannot drift the stored total.
	merged.TotalPoints = catalog.TotalPoints(merged.Counters)

	if err := r.seasons.UpsertSeasonAggregate(uctx, merged); err != nil {
		return fmt.Errorf("upsert season aggregate: %w", err)
	}
	return nil
}
