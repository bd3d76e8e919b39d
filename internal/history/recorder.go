// internal/history/recorder.go
//
// history pushes every applied game mutation onto a Redis list as JSON, for
// external replay and audit consumers. The recorder never blocks game logic
// beyond the network send, and failures are logged, not surfaced.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tankard-game/tankard/internal/game"
)

// DefaultQueueName is the Redis list the action feed is pushed to.
const DefaultQueueName = "tankard_actions"

// Recorder implements game.ActionRecorder on a Redis list.
type Recorder struct {
	rdb   *redis.Client
	queue string
	log   *logrus.Logger
}

// Connect dials Redis and verifies the connection. queue defaults to
// DefaultQueueName when empty.
func Connect(addr string, db int, queue string, logger *logrus.Logger) (*Recorder, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	if logger == nil {
		logger = logrus.New()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &Recorder{rdb: rdb, queue: queue, log: logger}, nil
}

// RecordAction serializes the record and RPushes it onto the queue.
func (r *Recorder) RecordAction(ctx context.Context, rec game.ActionRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		r.log.WithError(err).Error("marshal action record")
		return
	}
	if err := r.rdb.RPush(ctx, r.queue, data).Err(); err != nil {
		r.log.WithFields(logrus.Fields{
			"queue":   r.queue,
			"game_id": rec.GameID,
		}).WithError(err).Error("push action record")
	}
}

// Close releases the Redis client.
func (r *Recorder) Close() error {
	return r.rdb.Close()
}
