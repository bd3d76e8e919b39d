// internal/database/results.go
//
// database persists finished-game results. It is optional: a nil *Store is
// safe to call and does nothing.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/tankard-game/tankard/internal/game"
)

// Store wraps the pgx pool.
type Store struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

// Connect opens the pool, verifies the connection, and creates the results
// tables if they do not exist yet.
func Connect(ctx context.Context, url string, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.New()
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	s := &Store{pool: pool, log: logger}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS games (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			winner_id UUID,
			finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS game_results (
			game_id UUID NOT NULL REFERENCES games(id),
			player_id UUID NOT NULL,
			character_name TEXT NOT NULL,
			gold INT NOT NULL,
			fortitude INT NOT NULL,
			alcohol_content INT NOT NULL,
			alive BOOLEAN NOT NULL,
			PRIMARY KEY (game_id, player_id)
		);
	`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveGameSummary upserts the game row and one result row per player.
func (s *Store) SaveGameSummary(ctx context.Context, summary game.GameSummary) error {
	if s == nil {
		return nil
	}
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, name, winner_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name=$2, winner_id=$3, finished_at=now()
		`
		if _, e := tx.Exec(ctx, upsertGame, summary.GameID, summary.GameName, summary.Winner); e != nil {
			return e
		}
		upsertResult := `
			INSERT INTO game_results
				(game_id, player_id, character_name, gold, fortitude, alcohol_content, alive)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (game_id, player_id)
			DO UPDATE SET character_name=$3, gold=$4, fortitude=$5, alcohol_content=$6, alive=$7
		`
		for _, p := range summary.Players {
			if _, e := tx.Exec(ctx, upsertResult,
				summary.GameID, p.PlayerID, string(p.Character),
				p.Gold, p.Fortitude, p.AlcoholContent, p.Alive,
			); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game results: %w", err)
	}
	return nil
}

// OnGameEnd is the session callback shape: it logs instead of returning the
// error, since the game loop has nowhere to put one.
func (s *Store) OnGameEnd(summary game.GameSummary) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.SaveGameSummary(ctx, summary); err != nil {
		s.log.WithField("game_id", summary.GameID).WithError(err).Error("save game summary")
	}
}

// Close releases the pool.
func (s *Store) Close() {
	if s != nil {
		s.pool.Close()
	}
}
