// cmd/historian/main.go
//
// historian is the asynchronous audit consumer: it pops action records off
// the Redis queue the game server pushes to and persists them to Postgres in
// batches. It runs independently of the game server and can lag behind it
// safely, since the queue buffers.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tankard-game/tankard/internal/config"
	"github.com/tankard-game/tankard/internal/game"
)

const (
	defaultBatchSize = 20
	defaultFlushMs   = 500
)

// Historian drains the action queue into the game_actions table.
type Historian struct {
	rdb        *redis.Client
	pool       *pgxpool.Pool
	queue      string
	batchSize  int
	flushEvery time.Duration
	log        *logrus.Logger

	batchMu sync.Mutex
	batch   []game.ActionRecord
}

// NewHistorian connects Redis and Postgres and prepares the actions table.
func NewHistorian(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*Historian, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required")
	}
	url := cfg.PostgresURL()
	if url == "" {
		return nil, fmt.Errorf("PG_HOST is required")
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	schema := `
		CREATE TABLE IF NOT EXISTS game_actions (
			game_id UUID NOT NULL,
			action_index INT NOT NULL,
			actor UUID NOT NULL,
			action TEXT NOT NULL,
			payload JSONB,
			at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (game_id, action_index)
		);
	`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Historian{
		rdb:        rdb,
		pool:       pool,
		queue:      cfg.HistoryQueue,
		batchSize:  defaultBatchSize,
		flushEvery: defaultFlushMs * time.Millisecond,
		log:        logger,
	}, nil
}

// Run blocks until ctx is cancelled, popping records and flushing batches.
func (h *Historian) Run(ctx context.Context) {
	ticker := time.NewTicker(h.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.flush(context.Background())
			return
		case <-ticker.C:
			h.flush(ctx)
		default:
			// A short BLPop timeout keeps shutdown responsive.
			res, err := h.rdb.BLPop(ctx, 3*time.Second, h.queue).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue
				}
				h.log.WithError(err).Error("blpop")
				continue
			}
			if len(res) < 2 {
				continue
			}
			var rec game.ActionRecord
			if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
				h.log.WithError(err).Warn("invalid action record")
				continue
			}
			h.append(ctx, rec)
		}
	}
}

func (h *Historian) append(ctx context.Context, rec game.ActionRecord) {
	h.batchMu.Lock()
	h.batch = append(h.batch, rec)
	full := len(h.batch) >= h.batchSize
	h.batchMu.Unlock()
	if full {
		h.flush(ctx)
	}
}

// flush writes the pending batch in one transaction.
func (h *Historian) flush(ctx context.Context) {
	h.batchMu.Lock()
	if len(h.batch) == 0 {
		h.batchMu.Unlock()
		return
	}
	batch := h.batch
	h.batch = nil
	h.batchMu.Unlock()

	err := pgx.BeginTxFunc(ctx, h.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO game_actions (game_id, action_index, actor, action, payload, at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (game_id, action_index) DO NOTHING
		`
		for _, rec := range batch {
			payload, err := json.Marshal(rec.Payload)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, q,
				rec.GameID, rec.Index, rec.Actor, rec.Action, payload, rec.At,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.log.WithError(err).WithField("count", len(batch)).Error("flush batch")
		return
	}
	h.log.WithField("count", len(batch)).Debug("flushed actions")
}

// Close releases both connections.
func (h *Historian) Close() {
	h.pool.Close()
	_ = h.rdb.Close()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, err := NewHistorian(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("init historian: %v", err)
	}
	defer h.Close()

	logger.WithField("queue", h.queue).Info("historian started")
	h.Run(ctx)
	logger.Info("historian shutdown complete")
}
