package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/echobench/echobench/internal/domain"
	apperrors "github.com/echobench/echobench/internal/pkg/errors"
	"github.com/echobench/echobench/internal/worker"
)

// DefaultGatherTimeout bounds how long a distributed run waits for
// results before declaring the remainder lost.
const DefaultGatherTimeout = 2 * time.Hour

// resultSource is the slice of the Redis client the gather loop needs.
type resultSource interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Distributed ships tasks to remote worker processes through an asynq
// queue and gathers their results from a per-run Redis list. Only specs
// cross the wire; the workers rebuild models and datasets from their own
// registries and catalog. A lost task or crashed worker degrades to a
// Failed result for that task, never a missing row.
type Distributed struct {
	logger        *zap.Logger
	client        *asynq.Client
	rdb           resultSource
	queue         string
	gatherTimeout time.Duration
}

// DistributedOption configures a Distributed backend.
type DistributedOption func(*Distributed)

// WithGatherTimeout overrides the result-gather deadline.
func WithGatherTimeout(d time.Duration) DistributedOption {
	return func(b *Distributed) { b.gatherTimeout = d }
}

// NewDistributed creates a distributed backend on the given Redis
// connection.
func NewDistributed(logger *zap.Logger, client *asynq.Client, rdb *redis.Client, queue string, opts ...DistributedOption) *Distributed {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Distributed{
		logger:        logger,
		client:        client,
		rdb:           rdb,
		queue:         queue,
		gatherTimeout: DefaultGatherTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run implements Backend. The fn argument is unused: execution happens on
// the workers, which run their own pipeline. Instance-bearing specs are a
// configuration error because they cannot cross the process boundary.
func (b *Distributed) Run(ctx context.Context, tasks []domain.Task, fn RunFunc) ([]domain.TaskResult, error) {
	for i, task := range tasks {
		if !task.Transportable() {
			return nil, apperrors.Validation(fmt.Sprintf(
				"task %d (%s on %s) carries a live instance and cannot be distributed; register it by name instead",
				i, task.Model.Name, task.Dataset.Name))
		}
	}

	runID := uuid.NewString()
	log := b.logger.With(zap.String("run_id", runID))
	results := make([]domain.TaskResult, len(tasks))
	filled := make([]bool, len(tasks))
	pending := 0

	for i, task := range tasks {
		payload := &worker.TaskPayload{RunID: runID, Index: i, Task: task}
		t, err := worker.NewBenchmarkTask(payload)
		if err == nil {
			_, err = b.client.EnqueueContext(ctx, t, asynq.Queue(b.queue))
		}
		if err != nil {
			// An unenqueueable task is an infrastructure failure for
			// that task alone; the rest of the run proceeds.
			results[i] = infraFailed(task, fmt.Sprintf("enqueue failed: %v", err))
			filled[i] = true
			log.Warn("failed to enqueue task", zap.Int("index", i), zap.Error(err))
			continue
		}
		pending++
	}

	log.Info("submitted benchmark tasks",
		zap.Int("tasks", len(tasks)),
		zap.Int("enqueued", pending),
	)

	if err := b.gather(ctx, runID, tasks, results, filled, pending); err != nil {
		return nil, err
	}

	b.rdb.Del(context.WithoutCancel(ctx), worker.ResultKey(runID))
	return results, nil
}

// gather blocks on the run's result list until every pending result has
// arrived or the deadline passes. Results arrive in completion order and
// are re-associated by index; any index still unfilled when gathering
// ends gets an infra-stage Failed row, so the returned results are
// always complete and index-aligned.
func (b *Distributed) gather(ctx context.Context, runID string, tasks []domain.Task, results []domain.TaskResult, filled []bool, pending int) error {
	key := worker.ResultKey(runID)
	log := b.logger.With(zap.String("run_id", runID))
	deadline := time.Now().Add(b.gatherTimeout)

	for pending > 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		wait := remaining
		if wait > 5*time.Second {
			wait = 5 * time.Second
		}

		entry, err := b.rdb.BLPop(ctx, wait, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("gathering results: %w", err)
		}

		// BLPop returns [key, value].
		var payload worker.ResultPayload
		if err := json.Unmarshal([]byte(entry[1]), &payload); err != nil {
			log.Warn("discarding malformed result", zap.Error(err))
			continue
		}
		if payload.Index < 0 || payload.Index >= len(results) || filled[payload.Index] {
			log.Warn("discarding unexpected result", zap.Int("index", payload.Index))
			continue
		}
		results[payload.Index] = payload.Result
		filled[payload.Index] = true
		pending--
	}

	for i := range tasks {
		if !filled[i] {
			results[i] = infraFailed(tasks[i], "no result received before gather deadline")
			log.Warn("task result lost", zap.Int("index", i))
		}
	}
	return nil
}
