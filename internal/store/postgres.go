// Package store is the Postgres persistence layer behind the session
// engine: season-to-date aggregates, historical game records and the
// team roster reads. The engine only sees the narrow interfaces declared
// in the session package; this is their lib/pq implementation.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"flagstat/internal/catalog"
	"flagstat/internal/session"
)

// counterColumns maps stat fields to their season_aggregates columns, in
// the stable catalog field order.
var counterColumns = []struct {
	field  catalog.Field
	column string
}{
	{catalog.FieldCompletions, "completions"},
	{catalog.FieldInterceptionsThrown, "interceptions_thrown"},
	{catalog.FieldTDPasses, "td_passes"},
	{catalog.FieldTouchdowns, "touchdowns"},
	{catalog.FieldReceptions, "receptions"},
	{catalog.FieldRuns, "runs"},
	{catalog.FieldFumbles, "fumbles"},
	{catalog.FieldDefInterceptions, "def_interceptions"},
	{catalog.FieldSacks, "sacks"},
	{catalog.FieldPick6s, "pick_6s"},
	{catalog.FieldFlagPulls, "flag_pulls"},
	{catalog.FieldSafeties, "safeties"},
	{catalog.FieldExtraPoints1, "extra_points_1"},
	{catalog.FieldExtraPoints2, "extra_points_2"},
}

// Client implements session.SeasonStore and session.GameRecordStore on
// Postgres.
type Client struct {
	db *sql.DB
}

// NewClient opens a Postgres connection pool and verifies it.
func NewClient(dsn string) (*Client, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Client{db: db}, nil
}

// Close closes the pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// GetSeasonAggregate loads one player's season totals. A player with no
// reconciled games yet yields (nil, nil).
func (c *Client) GetSeasonAggregate(ctx context.Context, playerID, teamID string, season int) (*session.SeasonAggregate, error) {
	query := `
		SELECT games_played, total_points,
		       completions, interceptions_thrown, td_passes, touchdowns,
		       receptions, runs, fumbles, def_interceptions, sacks,
		       pick_6s, flag_pulls, safeties, extra_points_1, extra_points_2
		FROM season_aggregates
		WHERE player_id = $1 AND team_id = $2 AND season = $3
	`

	agg := &session.SeasonAggregate{
		PlayerID: playerID,
		TeamID:   teamID,
		Season:   season,
		Counters: make(map[catalog.Field]int, len(counterColumns)),
	}
	counts := make([]int, len(counterColumns))
	dest := []interface{}{&agg.GamesPlayed, &agg.TotalPoints}
	for i := range counts {
		dest = append(dest, &counts[i])
	}

	err := c.db.QueryRowContext(ctx, query, playerID, teamID, season).Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query season aggregate: %w", err)
	}

	for i, cc := range counterColumns {
		if counts[i] != 0 {
			agg.Counters[cc.field] = counts[i]
		}
	}
	return agg, nil
}

// UpsertSeasonAggregate writes a player's merged season totals, keyed by
// (player, team, season). The write carries the full merged row, so
// replaying it yields the same state rather than double-counting.
func (c *Client) UpsertSeasonAggregate(ctx context.Context, agg *session.SeasonAggregate) error {
	query := `
		INSERT INTO season_aggregates (
			player_id, team_id, season, games_played, total_points,
			completions, interceptions_thrown, td_passes, touchdowns,
			receptions, runs, fumbles, def_interceptions, sacks,
			pick_6s, flag_pulls, safeties, extra_points_1, extra_points_2,
			updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			NOW()
		)
		ON CONFLICT (player_id, team_id, season) DO UPDATE SET
			games_played = EXCLUDED.games_played,
			total_points = EXCLUDED.total_points,
			completions = EXCLUDED.completions,
			interceptions_thrown = EXCLUDED.interceptions_thrown,
			td_passes = EXCLUDED.td_passes,
			touchdowns = EXCLUDED.touchdowns,
			receptions = EXCLUDED.receptions,
			runs = EXCLUDED.runs,
			fumbles = EXCLUDED.fumbles,
			def_interceptions = EXCLUDED.def_interceptions,
			sacks = EXCLUDED.sacks,
			pick_6s = EXCLUDED.pick_6s,
			flag_pulls = EXCLUDED.flag_pulls,
			safeties = EXCLUDED.safeties,
			extra_points_1 = EXCLUDED.extra_points_1,
			extra_points_2 = EXCLUDED.extra_points_2,
			updated_at = NOW()
	`

	args := []interface{}{
		agg.PlayerID, agg.TeamID, agg.Season, agg.GamesPlayed, agg.TotalPoints,
	}
	for _, cc := range counterColumns {
		args = append(args, agg.Counters[cc.field])
	}

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert season aggregate: %w", err)
	}
	return nil
}

// InsertGameRecord writes the historical summary of one completed game.
// Write-once: the engine attempts it a single time per game end.
func (c *Client) InsertGameRecord(ctx context.Context, rec *session.GameRecord) error {
	query := `
		INSERT INTO game_records (
			id, team_id, game_date, opponent, home_score, away_score,
			game_type, notes, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`

	_, err := c.db.ExecContext(ctx, query,
		rec.ID, rec.TeamID, rec.Date, rec.Opponent,
		rec.HomeScore, rec.AwayScore, rec.GameType, rec.Notes, rec.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert game record: %w", err)
	}
	return nil
}

// GetTeamRoster loads a team's players in jersey order. The engine is a
// read-only consumer of the roster; membership is managed elsewhere.
func (c *Client) GetTeamRoster(ctx context.Context, teamID string) ([]session.Player, error) {
	query := `
		SELECT player_id, jersey_number, name, position
		FROM players
		WHERE team_id = $1
		ORDER BY jersey_number ASC
	`

	rows, err := c.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	var players []session.Player
	for rows.Next() {
		var p session.Player
		if err := rows.Scan(&p.ID, &p.Jersey, &p.Name, &p.Position); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		p.Active = true
		players = append(players, p)
	}
	return players, rows.Err()
}
