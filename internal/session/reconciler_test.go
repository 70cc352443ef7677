package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"flagstat/internal/catalog"
)

// fakeSeasonStore is an in-memory SeasonStore keyed by player id. Player
// ids listed in failOn error on upsert.
type fakeSeasonStore struct {
	mu     sync.Mutex
	aggs   map[string]*SeasonAggregate
	failOn map[string]bool
}

func newFakeSeasonStore() *fakeSeasonStore {
	return &fakeSeasonStore{
		aggs:   make(map[string]*SeasonAggregate),
		failOn: make(map[string]bool),
	}
}

func (f *fakeSeasonStore) GetSeasonAggregate(ctx context.Context, playerID, teamID string, season int) (*SeasonAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	agg, ok := f.aggs[playerID]
	if !ok {
		return nil, nil
	}
	cp := *agg
	cp.Counters = make(map[catalog.Field]int, len(agg.Counters))
	for k, v := range agg.Counters {
		cp.Counters[k] = v
	}
	return &cp, nil
}

func (f *fakeSeasonStore) UpsertSeasonAggregate(ctx context.Context, agg *SeasonAggregate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[agg.PlayerID] {
		return fmt.Errorf("simulated upsert failure for %s", agg.PlayerID)
	}
	f.aggs[agg.PlayerID] = agg
	return nil
}

type fakeGameStore struct {
	mu      sync.Mutex
	records []*GameRecord
	fail    bool
}

func (f *fakeGameStore) InsertGameRecord(ctx context.Context, rec *GameRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("simulated insert failure")
	}
	f.records = append(f.records, rec)
	return nil
}

func lineWith(fields ...catalog.Field) *StatLine {
	l := newStatLine()
	for _, f := range fields {
		l.add(f, 1)
	}
	return l
}

func TestReconcileMergesIntoSeason(t *testing.T) {
	seasons := newFakeSeasonStore()
	seasons.aggs["p1"] = &SeasonAggregate{
		PlayerID:    "p1",
		TeamID:      "team-1",
		Season:      2026,
		GamesPlayed: 4,
		Counters:    map[catalog.Field]int{catalog.FieldTouchdowns: 3},
		TotalPoints: 18,
	}
	games := &fakeGameStore{}
	rec := NewReconciler(seasons, games, 0)

	lines := map[string]*StatLine{
		"p1": lineWith(catalog.FieldTouchdowns, catalog.FieldReceptions),
		"p2": lineWith(catalog.FieldFlagPulls),
	}
	summary := rec.Reconcile(context.Background(), "team-1", 2026, lines, &GameRecord{ID: "g1", TeamID: "team-1"})

	if summary.Succeeded != 2 {
		t.Errorf("expected 2 succeeded, got %d", summary.Succeeded)
	}
	if len(summary.FailedPlayerIDs) != 0 {
		t.Errorf("expected no failures, got %v", summary.FailedPlayerIDs)
	}
	if !summary.GameRecordSaved {
		t.Error("game record should be saved")
	}

	p1 := seasons.aggs["p1"]
	if p1.GamesPlayed != 5 {
		t.Errorf("games played should bump to 5, got %d", p1.GamesPlayed)
	}
	if p1.Counters[catalog.FieldTouchdowns] != 4 {
		t.Errorf("expected 4 touchdowns, got %d", p1.Counters[catalog.FieldTouchdowns])
	}
	if p1.TotalPoints != 24 {
		t.Errorf("total points should recompute to 24, got %d", p1.TotalPoints)
	}

	p2 := seasons.aggs["p2"]
	if p2 == nil || p2.GamesPlayed != 1 {
		t.Fatalf("first-game player should get an aggregate with 1 game, got %+v", p2)
	}
	if p2.TotalPoints != 0 {
		t.Errorf("flag pulls are weightless, got %d points", p2.TotalPoints)
	}

	if len(games.records) != 1 || games.records[0].ID != "g1" {
		t.Errorf("expected one game record g1, got %v", games.records)
	}
}

func TestReconcilePartialFailure(t *testing.T) {
	seasons := newFakeSeasonStore()
	seasons.failOn["p2"] = true
	games := &fakeGameStore{}
	rec := NewReconciler(seasons, games, 0)

	lines := map[string]*StatLine{
		"p1": lineWith(catalog.FieldRuns),
		"p2": lineWith(catalog.FieldSacks),
		"p3": lineWith(catalog.FieldCompletions),
	}
	summary := rec.Reconcile(context.Background(), "team-1", 2026, lines, &GameRecord{ID: "g1"})

	if summary.Succeeded != 2 {
		t.Errorf("expected 2 succeeded, got %d", summary.Succeeded)
	}
	if len(summary.FailedPlayerIDs) != 1 || summary.FailedPlayerIDs[0] != "p2" {
		t.Errorf("expected [p2] failed, got %v", summary.FailedPlayerIDs)
	}
	if !summary.GameRecordSaved {
		t.Error("a player failure must not block the game record")
	}

	// Committed lines are discarded; the failed player's line is retained.
	if _, ok := lines["p1"]; ok {
		t.Error("committed line p1 should be discarded")
	}
	if _, ok := lines["p2"]; !ok {
		t.Error("failed line p2 should be retained")
	}
}

func TestReconcileRecordFailureIsData(t *testing.T) {
	seasons := newFakeSeasonStore()
	games := &fakeGameStore{fail: true}
	rec := NewReconciler(seasons, games, 0)

	lines := map[string]*StatLine{"p1": lineWith(catalog.FieldRuns)}
	summary := rec.Reconcile(context.Background(), "team-1", 2026, lines, &GameRecord{ID: "g1"})

	if summary.Succeeded != 1 {
		t.Errorf("record failure must not block player commits, got %d", summary.Succeeded)
	}
	if summary.GameRecordSaved {
		t.Error("game record should not be marked saved")
	}
	if summary.GameRecordError == "" {
		t.Error("record failure should be reported in the summary")
	}
}

func TestReconcileSkipsEmptyLines(t *testing.T) {
	seasons := newFakeSeasonStore()
	games := &fakeGameStore{}
	rec := NewReconciler(seasons, games, 0)

	empty := newStatLine()
	empty.add(catalog.FieldRuns, 1)
	empty.add(catalog.FieldRuns, -1)

	lines := map[string]*StatLine{"p1": empty}
	summary := rec.Reconcile(context.Background(), "team-1", 2026, lines, &GameRecord{ID: "g1"})

	if summary.Succeeded != 0 {
		t.Errorf("fully undone lines should not count a game played, got %d", summary.Succeeded)
	}
	if agg := seasons.aggs["p1"]; agg != nil {
		t.Errorf("no aggregate should be written for an empty line, got %+v", agg)
	}
}
