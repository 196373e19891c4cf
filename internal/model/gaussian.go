package model

import (
	"context"
	"math/rand"

	"github.com/echobench/echobench/internal/domain"
	apperrors "github.com/echobench/echobench/internal/pkg/errors"
)

// Gaussian is a statistical baseline that samples numeric model columns
// from a per-column normal distribution fitted to the training data.
// Categorical columns are resampled empirically.
type Gaussian struct {
	rng    *rand.Rand
	fitted *fitted
}

// NewGaussian creates an unfitted gaussian baseline. Seed zero selects a
// fixed default so runs are reproducible unless a seed is configured.
func NewGaussian(seed int64) *Gaussian {
	if seed == 0 {
		seed = 1
	}
	return &Gaussian{rng: rand.New(rand.NewSource(seed))}
}

// Fit learns per-column mean/std and the empirical length and context
// distributions.
func (m *Gaussian) Fit(ctx context.Context, table *domain.Table, roles domain.Roles) error {
	f, err := fitStats(table, roles)
	if err != nil {
		return err
	}
	m.fitted = f
	return nil
}

// Sample draws the requested number of synthetic entities.
func (m *Gaussian) Sample(ctx context.Context, entities int) (*domain.Table, error) {
	if m.fitted == nil {
		return nil, apperrors.Validation("gaussian model is not fitted")
	}
	return m.fitted.sampleTable(m.rng, entities, func(col string, s *columnStats) any {
		if s == nil {
			return nil
		}
		if s.numeric {
			return s.mean + m.rng.NormFloat64()*s.std
		}
		return s.values[m.rng.Intn(len(s.values))]
	})
}
