package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/echobench/echobench/internal/domain"
	"github.com/echobench/echobench/internal/runner"
)

const (
	// TypeBenchmarkTask is the task type for running one benchmark task
	TypeBenchmarkTask = "bench:task"
)

// resultTTL bounds how long undelivered results linger in Redis.
const resultTTL = 24 * time.Hour

// TaskPayload is the payload for benchmark tasks. It carries only specs
// (names and options), never live model or dataset objects: those are not
// shareable across the worker boundary.
type TaskPayload struct {
	RunID string      `json:"run_id"`
	Index int         `json:"index"`
	Task  domain.Task `json:"task"`
}

// ResultPayload is pushed to the per-run result list once a task
// completes. Index re-associates the result with its originating task.
type ResultPayload struct {
	Index  int               `json:"index"`
	Result domain.TaskResult `json:"result"`
}

// NewBenchmarkTask creates an asynq task for one benchmark task.
func NewBenchmarkTask(payload *TaskPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal benchmark task payload: %w", err)
	}
	return asynq.NewTask(TypeBenchmarkTask, data, asynq.MaxRetry(1)), nil
}

// ResultKey returns the Redis list the results of a run are pushed to.
func ResultKey(runID string) string {
	return "bench:results:" + runID
}

// BenchmarkWorker processes benchmark tasks on a worker process.
type BenchmarkWorker struct {
	logger *zap.Logger
	runner *runner.Runner
	rdb    *redis.Client
}

// NewBenchmarkWorker creates a benchmark worker.
func NewBenchmarkWorker(logger *zap.Logger, r *runner.Runner, rdb *redis.Client) *BenchmarkWorker {
	return &BenchmarkWorker{
		logger: logger,
		runner: r,
		rdb:    rdb,
	}
}

// ProcessTask runs one benchmark task and delivers its result to the
// run's result list. The pipeline never fails the asynq task itself:
// pipeline failures are data, recorded inside the result.
func (w *BenchmarkWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal benchmark task payload: %w", err)
	}

	w.logger.Info("processing benchmark task",
		zap.String("run_id", payload.RunID),
		zap.Int("index", payload.Index),
		zap.String("model", payload.Task.Model.Name),
		zap.String("dataset", payload.Task.Dataset.Name),
	)

	result := w.runner.Run(ctx, payload.Task)

	data, err := json.Marshal(&ResultPayload{Index: payload.Index, Result: result})
	if err != nil {
		return fmt.Errorf("failed to marshal benchmark result: %w", err)
	}

	key := ResultKey(payload.RunID)
	if err := w.rdb.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to deliver benchmark result: %w", err)
	}
	w.rdb.Expire(ctx, key, resultTTL)

	return nil
}
