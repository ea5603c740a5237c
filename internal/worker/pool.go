package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dev-shahrooz/Smart-Pricing/internal/dto"
	"github.com/dev-shahrooz/Smart-Pricing/internal/engine"
)

const (
	QueueTrain = "jobs:train"

	JobRetrainElasticity = "retrain_elasticity"
	JobRetrainFx         = "retrain_fx"

	// MaxTrainRetries applies to infrastructure failures only; a fit that
	// fails on insufficient data is final and never retried.
	MaxTrainRetries = 3
)

// Job is the generic envelope for all async training tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// RetrainPayload names the product whose model went stale.
type RetrainPayload struct {
	ProductCode string `json:"product_code"`
}

// Trainer is the slice of the training service the pool needs. Defined here
// so the service layer can depend on the dispatcher without a cycle.
type Trainer interface {
	TrainElasticity(ctx context.Context, productCode string) (*dto.ModelSummary, error)
	TrainFx(ctx context.Context) (*dto.ModelSummary, error)
}

// Dispatcher enqueues retrain jobs onto a Redis list.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRetrainElasticity schedules an async elasticity refit for one product.
func (d *Dispatcher) EnqueueRetrainElasticity(ctx context.Context, productCode string) error {
	return d.enqueue(ctx, JobRetrainElasticity, RetrainPayload{ProductCode: productCode}, 0)
}

// EnqueueRetrainFx schedules an async refit of the rate forecaster.
func (d *Dispatcher) EnqueueRetrainFx(ctx context.Context) error {
	return d.enqueue(ctx, JobRetrainFx, RetrainPayload{}, 0)
}

func (d *Dispatcher) enqueue(ctx context.Context, jobType string, payload interface{}, attempts int) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data, Attempts: attempts})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, QueueTrain, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the train queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, trainer Trainer) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, trainer)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, trainer Trainer) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueTrain).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, result[1], trainer)
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, raw string, trainer Trainer) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal train job")
		return
	}
	var payload RetrainPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Str("type", job.Type).Err(err).Msg("failed to unmarshal train payload")
		return
	}

	var err error
	switch job.Type {
	case JobRetrainElasticity:
		_, err = trainer.TrainElasticity(ctx, payload.ProductCode)
	case JobRetrainFx:
		_, err = trainer.TrainFx(ctx)
	default:
		log.Error().Str("type", job.Type).Msg("unknown train job type")
		return
	}

	if err == nil {
		log.Info().Str("type", job.Type).Str("product_code", payload.ProductCode).Msg("retrain completed")
		return
	}

	// Insufficient data is a final outcome, not a transient failure: the
	// prior model (if any) stays in place and there is nothing to retry.
	var insufficient *engine.InsufficientDataError
	if errors.As(err, &insufficient) {
		log.Warn().Str("type", job.Type).Str("product_code", payload.ProductCode).
			Err(err).Msg("retrain skipped: insufficient data")
		return
	}

	job.Attempts++
	if job.Attempts >= MaxTrainRetries {
		SendToDLQ(ctx, rdb, QueueTrain, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}

	log.Warn().Str("type", job.Type).Str("product_code", payload.ProductCode).
		Int("attempts", job.Attempts).Err(err).Msg("retrain failed, requeued")
	if encoded, mErr := json.Marshal(job); mErr == nil {
		_ = rdb.LPush(ctx, QueueTrain, encoded).Err()
	}
}
