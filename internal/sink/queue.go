package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/ssc-prep/mocktest-backend/internal/config"
)

// Queue pushes result payloads onto the Redis persist queue consumed by the
// attempt worker, which archives them in PostgreSQL.
type Queue struct {
	rdb *redis.Client
}

// NewQueue creates a Queue sink.
func NewQueue(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb}
}

// Deliver enqueues the payload for asynchronous archival.
func (q *Queue) Deliver(ctx context.Context, p *Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal result payload: %w", err)
	}
	if err := q.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, data).Err(); err != nil {
		return fmt.Errorf("enqueue result: %w", err)
	}
	return nil
}
