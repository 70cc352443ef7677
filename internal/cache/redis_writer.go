// Package cache publishes live scoreboard snapshots to Redis so
// external pollers (team pages, parent apps) can read a game without
// touching the engine.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"flagstat/internal/session"
)

// TTL constants
const (
	LiveScoreboardTTL  = 2 * time.Hour
	FinalScoreboardTTL = 6 * time.Hour
)

// ScoreboardWriter handles writing session snapshots to Redis.
type ScoreboardWriter struct {
	client *redis.Client
}

// NewScoreboardWriter creates a new scoreboard writer.
func NewScoreboardWriter(client *redis.Client) *ScoreboardWriter {
	return &ScoreboardWriter{client: client}
}

// WriteScoreboard stores a session's scoreboard snapshot. Ended games
// keep a longer TTL so final scores stay readable after the session is
// pruned from memory.
func (w *ScoreboardWriter) WriteScoreboard(ctx context.Context, snap session.Snapshot) error {
	key := fmt.Sprintf("session:%s:scoreboard", snap.ID)

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling scoreboard: %w", err)
	}

	return w.client.Set(ctx, key, data, w.ttlFor(snap)).Err()
}

// WriteTeamLiveSession points a team key at its currently live session
// so readers can find the scoreboard without knowing the session id.
func (w *ScoreboardWriter) WriteTeamLiveSession(ctx context.Context, teamID, sessionID string) error {
	key := fmt.Sprintf("team:%s:live-session", teamID)
	return w.client.Set(ctx, key, sessionID, LiveScoreboardTTL).Err()
}

// ReadScoreboard retrieves a session's scoreboard snapshot.
func (w *ScoreboardWriter) ReadScoreboard(ctx context.Context, sessionID string) (*session.Snapshot, error) {
	key := fmt.Sprintf("session:%s:scoreboard", sessionID)

	data, err := w.client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var snap session.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("unmarshaling scoreboard: %w", err)
	}
	return &snap, nil
}

func (w *ScoreboardWriter) ttlFor(snap session.Snapshot) time.Duration {
	if snap.State == session.StateEnded {
		return FinalScoreboardTTL
	}
	return LiveScoreboardTTL
}
