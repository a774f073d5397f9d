package worker

import (
	"context"
	"encoding/json"
	"time"

	"fixflow/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// QueueNotify carries customer notifications for ticket lifecycle events.
const QueueNotify Queue = "jobs:notify"

// Job is the generic envelope for all async tasks. Attempts counts prior
// failed deliveries so handlers can give up and move the job to the DLQ.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one decoded job. Returning an error re-enqueues the job
// (until MaxAttempts) instead of dropping it.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// MaxAttempts is how many deliveries a job gets before it lands in the DLQ.
const MaxAttempts = 3

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// TicketCreated enqueues a notification for a newly received ticket.
// Best-effort: an enqueue failure is logged, never surfaced to the request.
func (d *Dispatcher) TicketCreated(ctx context.Context, t *model.Ticket) {
	d.enqueueNotify(ctx, notifyPayloadFor(t, "", t.State))
}

// TicketTransitioned enqueues a notification for a completed state change.
func (d *Dispatcher) TicketTransitioned(ctx context.Context, t *model.Ticket, from model.TicketState) {
	d.enqueueNotify(ctx, notifyPayloadFor(t, from, t.State))
}

func (d *Dispatcher) enqueueNotify(ctx context.Context, payload NotifyJobPayload) {
	if d == nil || d.rdb == nil {
		return
	}
	if err := d.enqueue(ctx, QueueNotify, "notify", payload); err != nil {
		log.Error().Err(err).Str("folio", payload.Folio).Msg("dispatcher: failed to enqueue notification")
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, queue Queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, string(queue), encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]Handler) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers map[string]Handler) {
	queues := []string{string(QueueNotify)}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, Queue(result[0]), result[1], handlers)
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, queue Queue, raw string, handlers map[string]Handler) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", string(queue)).Err(err).Msg("failed to unmarshal job")
		return
	}

	handler, ok := handlers[job.Type]
	if !ok {
		log.Error().Str("type", job.Type).Str("queue", string(queue)).Msg("no handler for job type")
		return
	}

	if err := handler.Process(ctx, job.Payload); err != nil {
		job.Attempts++
		if job.Attempts >= MaxAttempts {
			bury(ctx, rdb, queue, job, err)
			return
		}
		encoded, mErr := json.Marshal(job)
		if mErr != nil {
			log.Error().Err(mErr).Msg("failed to re-enqueue job")
			return
		}
		if pushErr := rdb.LPush(ctx, string(queue), encoded).Err(); pushErr != nil {
			log.Error().Err(pushErr).Str("queue", string(queue)).Msg("failed to re-enqueue job")
		}
		return
	}
	log.Debug().Str("type", job.Type).Str("queue", string(queue)).Msg("job processed")
}
