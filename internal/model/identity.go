package model

import (
	"context"
	"fmt"

	"github.com/echobench/echobench/internal/domain"
	apperrors "github.com/echobench/echobench/internal/pkg/errors"
)

// Identity replays the fitted sequences verbatim. It is the deterministic
// upper-bound baseline: any similarity metric should give it a perfect
// score against its own training data.
type Identity struct {
	table *domain.Table
	roles domain.Roles
}

// NewIdentity creates an unfitted identity model.
func NewIdentity() *Identity {
	return &Identity{}
}

// Fit stores a copy of the training table.
func (m *Identity) Fit(ctx context.Context, table *domain.Table, roles domain.Roles) error {
	if table == nil || table.NumRows() == 0 {
		return apperrors.Validation("identity model requires a non-empty table")
	}
	m.table = table.Clone()
	m.roles = roles
	return nil
}

// Sample returns the rows of the first `entities` fitted entities,
// cycling through the fitted entities when more are requested than were
// seen during fitting.
func (m *Identity) Sample(ctx context.Context, entities int) (*domain.Table, error) {
	if m.table == nil {
		return nil, apperrors.Validation("identity model is not fitted")
	}
	if entities <= 0 {
		return nil, apperrors.Validation("entity count must be positive")
	}

	keys, groups := domain.GroupByEntity(m.table, m.roles.EntityColumns)
	entityIdx := make(map[string]bool, len(m.roles.EntityColumns))
	for _, c := range m.roles.EntityColumns {
		entityIdx[c] = true
	}

	out := domain.NewTable(m.table.Columns...)
	for i := 0; i < entities; i++ {
		key := keys[i%len(keys)]
		rep := i / len(keys)
		for _, row := range groups[key] {
			cells := append([]any(nil), row...)
			if rep > 0 {
				// Relabel cycled copies so entity identities stay distinct.
				for j, col := range out.Columns {
					if entityIdx[col] {
						cells[j] = fmt.Sprintf("%v#%d", row[j], rep)
					}
				}
			}
			out.Rows = append(out.Rows, cells)
		}
	}
	return out, nil
}
