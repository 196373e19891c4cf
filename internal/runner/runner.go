// Package runner executes a single benchmark task through the fixed
// fit -> sample -> evaluate pipeline. The runner is the fault-isolation
// boundary of the engine: any failure inside a task, including panics in
// model or metric code, is captured into the task's result and never
// escapes. One bad (model, dataset) combination cannot poison the rest of
// a matrix run.
package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/echobench/echobench/internal/domain"
	"github.com/echobench/echobench/internal/metric"
	"github.com/echobench/echobench/internal/model"
	"github.com/echobench/echobench/internal/pkg/metrics"
	"github.com/echobench/echobench/internal/registry"
	"github.com/echobench/echobench/internal/storage"
)

// Observer is notified on every pipeline stage transition. It replaces
// global progress state; a nil observer is a no-op.
type Observer func(task domain.Task, stage domain.Stage)

// Runner executes tasks. It is stateless across tasks and safe for
// concurrent use: each task resolves its own model and dataset instances.
type Runner struct {
	logger   *zap.Logger
	models   *registry.Registry[model.Model]
	metrics  *registry.Registry[metric.Metric]
	catalog  storage.Catalog
	observer Observer
}

// Option configures a Runner.
type Option func(*Runner)

// WithObserver sets the stage-transition observer.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// New creates a task runner. The catalog may be nil when every dataset
// spec carries an instance.
func New(logger *zap.Logger, models *registry.Registry[model.Model], ms *registry.Registry[metric.Metric], catalog storage.Catalog, opts ...Option) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		logger:  logger,
		models:  models,
		metrics: ms,
		catalog: catalog,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one task to completion and returns exactly one result,
// success or failure. It never returns an error and never panics.
func (r *Runner) Run(ctx context.Context, task domain.Task) domain.TaskResult {
	result := domain.TaskResult{
		ModelName:   task.Model.Name,
		DatasetName: task.Dataset.Name,
		Status:      domain.StatusFailed,
	}
	log := r.logger.With(
		zap.String("model", task.Model.Name),
		zap.String("dataset", task.Dataset.Name),
	)

	r.notify(task, domain.StageLoad)
	dataset, err := r.resolveDataset(ctx, task)
	if err != nil {
		return r.fail(log, result, domain.StageLoad, err)
	}
	instance, err := r.models.Resolve(task.Model)
	if err != nil {
		return r.fail(log, result, domain.StageLoad, err)
	}

	r.notify(task, domain.StageFit)
	log.Info("fitting model", zap.Int("entities", dataset.NumEntities()))
	start := time.Now()
	err = capture(func() error {
		return instance.Fit(ctx, dataset.Table, dataset.Roles())
	})
	result.FitDuration = time.Since(start)
	metrics.RecordStage(string(domain.StageFit), result.FitDuration)
	if err != nil {
		return r.fail(log, result, domain.StageFit, err)
	}

	r.notify(task, domain.StageSample)
	count := task.SampleSize
	if count <= 0 {
		count = dataset.NumEntities()
	}
	log.Info("sampling synthetic data", zap.Int("entities", count))
	var synthetic *domain.Table
	start = time.Now()
	err = capture(func() error {
		var sampleErr error
		synthetic, sampleErr = instance.Sample(ctx, count)
		return sampleErr
	})
	result.SampleDuration = time.Since(start)
	metrics.RecordStage(string(domain.StageSample), result.SampleDuration)
	if err != nil {
		return r.fail(log, result, domain.StageSample, err)
	}

	r.notify(task, domain.StageEvaluate)
	result.Metrics = r.evaluate(ctx, log, task, dataset, synthetic)

	// Fit and sample succeeded, so the task is a success regardless of
	// individual metric outcomes.
	result.Status = domain.StatusSuccess
	metrics.RecordTask(string(domain.StatusSuccess))
	r.notify(task, domain.StageDone)
	return result
}

// evaluate runs every metric in the task's set, isolating failures at
// metric granularity: a failing metric records its own error and leaves
// sibling metrics and the task status untouched.
func (r *Runner) evaluate(ctx context.Context, log *zap.Logger, task domain.Task, dataset *domain.Dataset, synthetic *domain.Table) map[string]domain.MetricResult {
	results := make(map[string]domain.MetricResult, len(task.Metrics))
	for _, spec := range task.Metrics {
		var score float64
		start := time.Now()
		err := capture(func() error {
			m, resolveErr := r.metrics.Resolve(spec)
			if resolveErr != nil {
				return resolveErr
			}
			var scoreErr error
			score, scoreErr = m.Score(ctx, dataset.Table, synthetic, dataset.Roles())
			return scoreErr
		})
		elapsed := time.Since(start)

		mr := domain.MetricResult{Duration: elapsed}
		if err != nil {
			mr.Error = err.Error()
			metrics.RecordMetricError(spec.Name)
			log.Warn("metric failed",
				zap.String("metric", spec.Name),
				zap.Error(err),
			)
		} else {
			s := score
			mr.Score = &s
			log.Debug("metric computed",
				zap.String("metric", spec.Name),
				zap.Float64("score", score),
				zap.Duration("duration", elapsed),
			)
		}
		results[spec.Name] = mr
	}
	return results
}

func (r *Runner) resolveDataset(ctx context.Context, task domain.Task) (*domain.Dataset, error) {
	if task.Dataset.Instance != nil {
		ds, ok := task.Dataset.Instance.(*domain.Dataset)
		if !ok {
			return nil, fmt.Errorf("dataset %q: instance has wrong type %T", task.Dataset.Name, task.Dataset.Instance)
		}
		return ds.Truncate(task.MaxEntities), nil
	}
	if r.catalog == nil {
		return nil, fmt.Errorf("dataset %q: no catalog configured", task.Dataset.Name)
	}
	return r.catalog.Load(ctx, task.Dataset.Name, task.MaxEntities)
}

func (r *Runner) fail(log *zap.Logger, result domain.TaskResult, stage domain.Stage, err error) domain.TaskResult {
	result.Status = domain.StatusFailed
	result.Err = &domain.StageError{Stage: stage, Message: err.Error()}
	metrics.RecordTask(string(domain.StatusFailed))
	log.Warn("task failed",
		zap.String("stage", string(stage)),
		zap.Error(err),
	)
	return result
}

func (r *Runner) notify(task domain.Task, stage domain.Stage) {
	if r.observer != nil {
		r.observer(task, stage)
	}
}

// capture runs fn, converting panics into errors so no failure in model
// or metric code can cross the runner boundary.
func capture(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn()
}
