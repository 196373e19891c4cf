// Package matrix expands a benchmark configuration into the concrete task
// list to execute: the Cartesian product of model specs and dataset specs,
// each task carrying the full metric set.
package matrix

import (
	"github.com/echobench/echobench/internal/domain"
	apperrors "github.com/echobench/echobench/internal/pkg/errors"
)

// Build expands the spec lists into a deduplicated, ordered task list.
// Metrics are not cross-producted: every task runs the whole metric set
// against its (model, dataset) pair. Duplicate specs collapse by
// structural equality, preserving first-seen order. Build is pure: no
// I/O, no registry mutation, and every configuration problem is reported
// here, before anything executes.
func Build(models, datasets, metrics []domain.Spec, maxEntities int) ([]domain.Task, error) {
	if maxEntities < 0 {
		return nil, apperrors.Validation("max entities must not be negative")
	}
	if len(models) == 0 {
		return nil, apperrors.EmptyMatrix("no models to benchmark")
	}
	if len(datasets) == 0 {
		return nil, apperrors.EmptyMatrix("no datasets to benchmark")
	}
	if len(metrics) == 0 {
		return nil, apperrors.EmptyMatrix("no metrics to evaluate")
	}

	models = dedupe(models)
	datasets = dedupe(datasets)
	metrics = dedupe(metrics)

	tasks := make([]domain.Task, 0, len(models)*len(datasets))
	for _, m := range models {
		for _, d := range datasets {
			tasks = append(tasks, domain.Task{
				Model:       m,
				Dataset:     d,
				Metrics:     metrics,
				MaxEntities: maxEntities,
			})
		}
	}
	return tasks, nil
}

func dedupe(specs []domain.Spec) []domain.Spec {
	seen := make(map[string]bool, len(specs))
	out := specs[:0:0]
	for _, s := range specs {
		key := s.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
