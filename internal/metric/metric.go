// Package metric defines the scoring capability consumed by the benchmark
// engine, plus the built-in metrics. A metric compares a real table with a
// synthetic one under the same role metadata and returns a score in [0,1],
// higher meaning more similar.
package metric

import (
	"context"

	"github.com/echobench/echobench/internal/domain"
	"github.com/echobench/echobench/internal/registry"
)

// Metric scores synthetic data against the real data it imitates.
type Metric interface {
	Score(ctx context.Context, real, synthetic *domain.Table, roles domain.Roles) (float64, error)
}

// Func adapts a plain function to the Metric interface.
type Func func(ctx context.Context, real, synthetic *domain.Table, roles domain.Roles) (float64, error)

// Score implements Metric.
func (f Func) Score(ctx context.Context, real, synthetic *domain.Table, roles domain.Roles) (float64, error) {
	return f(ctx, real, synthetic, roles)
}

// Default is the discoverable catalog of built-in metrics.
var Default = registry.New[Metric]("metric")

func init() {
	Default.MustRegister("stat-similarity", func(options map[string]any) (Metric, error) {
		return Func(StatSimilarity), nil
	})
	Default.MustRegister("length-similarity", func(options map[string]any) (Metric, error) {
		return Func(LengthSimilarity), nil
	})
	Default.MustRegister("category-coverage", func(options map[string]any) (Metric, error) {
		return Func(CategoryCoverage), nil
	})
}
