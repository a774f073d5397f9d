package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Queue names a Redis job list. Every queue has a shadow dead-letter list
// holding the notifications that exhausted their delivery attempts; nothing
// drains it automatically — entries are replayed or purged by an operator.
type Queue string

// DeadKey returns the dead-letter list shadowing this queue.
func (q Queue) DeadKey() string { return "dead:" + string(q) }

// DeadJob is what lands in the dead-letter list: the undeliverable job plus
// enough context to replay it by hand once the SMTP server or webhook is
// back. Payload stays in its wire form so a replay re-enters the normal
// handler path unchanged.
type DeadJob struct {
	Queue     Queue           `json:"queue"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	LastError string          `json:"last_error"`
	Attempts  int             `json:"attempts"`
	DeadAt    time.Time       `json:"dead_at"`
}

// bury moves a job that exhausted its attempts to the queue's dead-letter
// list. Best effort: if Redis itself is unreachable the job is only logged.
func bury(ctx context.Context, rdb *redis.Client, q Queue, job Job, lastErr error) {
	dead := DeadJob{
		Queue:     q,
		Type:      job.Type,
		Payload:   job.Payload,
		LastError: lastErr.Error(),
		Attempts:  job.Attempts,
		DeadAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(dead)
	if err != nil {
		log.Error().Err(err).Str("queue", string(q)).Msg("dead-letter: marshal failed, job lost")
		return
	}
	if err := rdb.LPush(ctx, q.DeadKey(), data).Err(); err != nil {
		log.Error().Err(err).Str("queue", string(q)).Msg("dead-letter: push failed, job lost")
		return
	}

	log.Warn().
		Str("queue", string(q)).
		Str("type", job.Type).
		Str("last_error", dead.LastError).
		Int("attempts", dead.Attempts).
		Msg("notification gave up, moved to dead-letter list")
}

// DeadCount reports how many jobs sit in the queue's dead-letter list.
// Surfaced by the health endpoint so a growing backlog is visible.
func DeadCount(ctx context.Context, rdb *redis.Client, q Queue) (int64, error) {
	return rdb.LLen(ctx, q.DeadKey()).Result()
}
