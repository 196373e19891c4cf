// Package benchmark is the engine's entry point: it expands a sparse
// benchmark configuration into the concrete task matrix, executes it on
// the selected backend, and aggregates the results into one report.
package benchmark

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/echobench/echobench/internal/backend"
	"github.com/echobench/echobench/internal/domain"
	"github.com/echobench/echobench/internal/matrix"
	"github.com/echobench/echobench/internal/metric"
	"github.com/echobench/echobench/internal/model"
	apperrors "github.com/echobench/echobench/internal/pkg/errors"
	"github.com/echobench/echobench/internal/registry"
	"github.com/echobench/echobench/internal/report"
	"github.com/echobench/echobench/internal/runner"
	"github.com/echobench/echobench/internal/storage"
)

// Options configures one benchmark run. Spec lists distinguish omission
// from explicit emptiness: a nil list means "use the full default
// catalog", an empty non-nil list is a configuration error.
type Options struct {
	Models   []domain.Spec
	Datasets []domain.Spec
	Metrics  []domain.Spec

	// MaxEntities caps the entities loaded per dataset; zero means
	// unlimited.
	MaxEntities int
	// SampleSize overrides the synthetic entity count per task; zero
	// matches each dataset's real entity count.
	SampleSize int

	// Backend selects the execution strategy. Nil picks an in-process
	// backend: sequential when Workers <= 1, a worker pool otherwise.
	Backend backend.Backend
	Workers int

	// Catalog resolves dataset names. Required unless every dataset
	// spec carries an instance.
	Catalog storage.Catalog

	// OutputPath, when set, additionally writes the report as CSV.
	OutputPath string

	Observer runner.Observer
	Logger   *zap.Logger

	// ModelRegistry and MetricRegistry override the built-in catalogs,
	// mainly for tests.
	ModelRegistry  *registry.Registry[model.Model]
	MetricRegistry *registry.Registry[metric.Metric]
}

// Run executes the benchmark described by opts and returns the report.
// Configuration problems (unknown names, an empty matrix) fail here,
// before any task executes; once execution starts every task completes
// with a row in the report, success or failure.
func Run(ctx context.Context, opts Options) (*domain.Report, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	models := opts.ModelRegistry
	if models == nil {
		models = model.Default
	}
	metrics := opts.MetricRegistry
	if metrics == nil {
		metrics = metric.Default
	}

	modelSpecs, datasetSpecs, metricSpecs, err := expandDefaults(ctx, opts, models, metrics)
	if err != nil {
		return nil, err
	}
	if err := checkNames(models, metrics, modelSpecs, metricSpecs); err != nil {
		return nil, err
	}

	tasks, err := matrix.Build(modelSpecs, datasetSpecs, metricSpecs, opts.MaxEntities)
	if err != nil {
		return nil, err
	}
	if opts.SampleSize > 0 {
		for i := range tasks {
			tasks[i].SampleSize = opts.SampleSize
		}
	}

	be := opts.Backend
	if be == nil {
		if opts.Workers > 1 {
			be = backend.NewPool(log, opts.Workers)
		} else {
			be = backend.NewLocal(log)
		}
	}

	run := runner.New(log, models, metrics, opts.Catalog, runner.WithObserver(opts.Observer))
	runID := uuid.NewString()
	log.Info("starting benchmark run",
		zap.String("run_id", runID),
		zap.Int("tasks", len(tasks)),
	)

	results, err := be.Run(ctx, tasks, run.Run)
	if err != nil {
		return nil, err
	}

	rep := report.Aggregate(runID, tasks, results)
	if opts.OutputPath != "" {
		if err := report.SaveCSV(opts.OutputPath, rep); err != nil {
			return nil, err
		}
		log.Info("report written", zap.String("path", opts.OutputPath))
	}
	return rep, nil
}

// expandDefaults fills omitted spec lists from the discoverable default
// catalogs.
func expandDefaults(ctx context.Context, opts Options, models *registry.Registry[model.Model], metrics *registry.Registry[metric.Metric]) (modelSpecs, datasetSpecs, metricSpecs []domain.Spec, err error) {
	modelSpecs = opts.Models
	if modelSpecs == nil {
		modelSpecs = domain.SpecsFromNames(models.Names())
	}

	metricSpecs = opts.Metrics
	if metricSpecs == nil {
		metricSpecs = domain.SpecsFromNames(metrics.Names())
	}

	datasetSpecs = opts.Datasets
	if datasetSpecs == nil {
		if opts.Catalog == nil {
			return nil, nil, nil, apperrors.Validation("datasets omitted but no catalog configured")
		}
		names, namesErr := opts.Catalog.Names(ctx)
		if namesErr != nil {
			return nil, nil, nil, namesErr
		}
		datasetSpecs = domain.SpecsFromNames(names)
	}
	return modelSpecs, datasetSpecs, metricSpecs, nil
}

// checkNames fails fast on model or metric names with no registered
// factory. Dataset names are deliberately not checked here: a dataset
// that fails to materialize degrades to Failed rows at task granularity
// instead of aborting the whole run.
func checkNames(models *registry.Registry[model.Model], metrics *registry.Registry[metric.Metric], modelSpecs, metricSpecs []domain.Spec) error {
	for _, s := range modelSpecs {
		if s.Instance == nil && !models.Has(s.Name) {
			return apperrors.UnknownSpec("model", s.Name)
		}
	}
	for _, s := range metricSpecs {
		if s.Instance == nil && !metrics.Has(s.Name) {
			return apperrors.UnknownSpec("metric", s.Name)
		}
	}
	return nil
}
