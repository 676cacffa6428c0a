package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueTributos = "jobs:tributos"

	// DLQPrefix: jobs that exceed MaxTributoRetries land in dlq:{queue} for
	// manual inspection. The retry cron still repairs the underlying rows.
	DLQPrefix = "dlq:"

	MaxTributoRetries = 5
)

// TributoBootstrapper is the narrow slice of the tax service the pool needs.
type TributoBootstrapper interface {
	CriarZerados(ctx context.Context, produtoIDs []int64) error
}

// Job is the generic envelope for async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

type tributoPayload struct {
	ProdutoIDs []int64 `json:"produto_ids"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueTributos pushes a tax-bootstrap retry job for the given products.
func (d *Dispatcher) EnqueueTributos(ctx context.Context, produtoIDs []int64) error {
	payload, err := json.Marshal(tributoPayload{ProdutoIDs: produtoIDs})
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: "tributos", Payload: payload})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, QueueTributos, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the tributo queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, tributos TributoBootstrapper, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, tributos, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, tributos TributoBootstrapper, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueTributos).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, tributos, result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, tributos TributoBootstrapper, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal job")
		return
	}
	var payload tributoPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Err(err).Str("type", job.Type).Msg("failed to unmarshal payload")
		return
	}

	err := tributos.CriarZerados(ctx, payload.ProdutoIDs)
	if err == nil {
		log.Info().Int("produtos", len(payload.ProdutoIDs)).Msg("tributos bootstrapped via retry job")
		return
	}

	job.Attempts++
	if job.Attempts >= MaxTributoRetries {
		sendToDLQ(ctx, rdb, QueueTributos, job, err.Error())
		return
	}
	log.Warn().Err(err).
		Int("attempts", job.Attempts).
		Int("produtos", len(payload.ProdutoIDs)).
		Msg("tributo bootstrap retry failed, re-enqueueing")
	if encoded, merr := json.Marshal(job); merr == nil {
		_ = rdb.LPush(ctx, QueueTributos, encoded).Err()
	}
}
