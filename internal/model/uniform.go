package model

import (
	"context"
	"math/rand"

	"github.com/echobench/echobench/internal/domain"
	apperrors "github.com/echobench/echobench/internal/pkg/errors"
)

// Uniform is a statistical baseline that samples numeric model columns
// uniformly over their observed range and categorical columns from the
// empirical distribution. It ignores all temporal structure, which makes
// it the floor any real sequence model should beat.
type Uniform struct {
	rng    *rand.Rand
	fitted *fitted
}

// NewUniform creates an unfitted uniform baseline. Seed zero selects a
// fixed default so runs are reproducible unless a seed is configured.
func NewUniform(seed int64) *Uniform {
	if seed == 0 {
		seed = 1
	}
	return &Uniform{rng: rand.New(rand.NewSource(seed))}
}

// Fit learns per-column ranges and the empirical length and context
// distributions.
func (m *Uniform) Fit(ctx context.Context, table *domain.Table, roles domain.Roles) error {
	f, err := fitStats(table, roles)
	if err != nil {
		return err
	}
	m.fitted = f
	return nil
}

// Sample draws the requested number of synthetic entities.
func (m *Uniform) Sample(ctx context.Context, entities int) (*domain.Table, error) {
	if m.fitted == nil {
		return nil, apperrors.Validation("uniform model is not fitted")
	}
	return m.fitted.sampleTable(m.rng, entities, func(col string, s *columnStats) any {
		if s == nil {
			return nil
		}
		if s.numeric {
			return s.min + m.rng.Float64()*(s.max-s.min)
		}
		return s.values[m.rng.Intn(len(s.values))]
	})
}
