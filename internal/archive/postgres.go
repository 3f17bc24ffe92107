package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"macrosim/internal/game"
)

const schema = `
CREATE SCHEMA IF NOT EXISTS macrosim;

CREATE TABLE IF NOT EXISTS macrosim.game_results (
    game_id    text        NOT NULL,
    ended_at   timestamptz NOT NULL,
    started_at timestamptz NOT NULL,
    quarters   integer     NOT NULL,
    PRIMARY KEY (game_id, ended_at)
);

CREATE TABLE IF NOT EXISTS macrosim.player_results (
    game_id      text        NOT NULL,
    ended_at     timestamptz NOT NULL,
    player_id    text        NOT NULL,
    player_name  text        NOT NULL,
    country_code text        NOT NULL,
    rank         integer     NOT NULL,
    total        double precision NOT NULL,
    grade        text        NOT NULL,
    details      jsonb       NOT NULL,
    PRIMARY KEY (game_id, ended_at, player_id),
    FOREIGN KEY (game_id, ended_at) REFERENCES macrosim.game_results (game_id, ended_at) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS player_results_total_idx ON macrosim.player_results (total DESC);
`

type Postgres struct {
	db *pgxpool.Pool
}

// Connect opens a small pool, checks it and makes sure the archive tables
// exist.
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Postgres{db: pool}, nil
}

func (p *Postgres) Close() { p.db.Close() }

func (p *Postgres) SaveResult(ctx context.Context, r game.GameResult) error {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO macrosim.game_results (game_id, ended_at, started_at, quarters)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, r.GameID, r.Ended, r.Started, r.Quarters)
	if err != nil {
		return fmt.Errorf("insert game result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range r.Scores {
		details, err := json.Marshal(s.Details)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO macrosim.player_results
			    (game_id, ended_at, player_id, player_name, country_code, rank, total, grade, details)
			VALUES
			    ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, r.GameID, r.Ended, s.PlayerID, s.PlayerName, s.CountryCode, s.Rank, s.Total, s.Grade, details)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert player results: %w", err)
	}
	return tx.Commit(ctx)
}

func (p *Postgres) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := p.db.Query(ctx, `
		SELECT MIN(player_name), country_code, MAX(total), COUNT(*), MAX(ended_at)
		FROM macrosim.player_results
		GROUP BY lower(player_name), country_code
		ORDER BY MAX(total) DESC, MAX(ended_at) ASC, MIN(player_name) ASC
		LIMIT $1
	`, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LeaderboardEntry, 0)
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerName, &e.CountryCode, &e.BestTotal, &e.Games, &e.LastPlayed); err != nil {
			return nil, err
		}
		e.Grade = game.Grade(e.BestTotal)
		e.Rank = len(out) + 1
		out = append(out, e)
	}
	return out, rows.Err()
}
