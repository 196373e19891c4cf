package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/echobench/echobench/internal/domain"
	apperrors "github.com/echobench/echobench/internal/pkg/errors"
)

// columnStats holds the per-column summary both statistical baselines
// learn during fitting.
type columnStats struct {
	numeric bool
	min     float64
	max     float64
	mean    float64
	std     float64
	// values keeps the observed values of categorical columns for
	// empirical resampling.
	values []any
}

// fitted is the shared learned state of the statistical baseline models:
// per-column summaries, the empirical sequence-length distribution, and
// the observed per-entity context rows.
type fitted struct {
	columns  []string
	roles    domain.Roles
	lengths  []int
	contexts [][]any
	stats    map[string]*columnStats
}

func fitStats(table *domain.Table, roles domain.Roles) (*fitted, error) {
	if table == nil || table.NumRows() == 0 {
		return nil, apperrors.Validation("model requires a non-empty table")
	}

	f := &fitted{
		columns: append([]string(nil), table.Columns...),
		roles:   roles,
		stats:   make(map[string]*columnStats),
	}

	for _, col := range roles.ModelColumns {
		f.stats[col] = summarize(table.Column(col))
	}
	for _, col := range roles.ContextColumns {
		f.stats[col] = summarize(table.Column(col))
	}

	keys, groups := domain.GroupByEntity(table, roles.EntityColumns)
	ctxIdx := make([]int, len(roles.ContextColumns))
	for i, c := range roles.ContextColumns {
		ctxIdx[i] = table.ColumnIndex(c)
	}
	for _, key := range keys {
		rows := groups[key]
		f.lengths = append(f.lengths, len(rows))
		ctx := make([]any, len(ctxIdx))
		for i, idx := range ctxIdx {
			ctx[i] = rows[0][idx]
		}
		f.contexts = append(f.contexts, ctx)
	}

	return f, nil
}

func summarize(values []any) *columnStats {
	s := &columnStats{numeric: true}
	var sum, count float64
	for _, v := range values {
		n, ok := asFloat(v)
		if !ok {
			s.numeric = false
			break
		}
		if count == 0 || n < s.min {
			s.min = n
		}
		if count == 0 || n > s.max {
			s.max = n
		}
		sum += n
		count++
	}
	if !s.numeric {
		s.values = append([]any(nil), values...)
		return s
	}
	s.mean = sum / count
	var sq float64
	for _, v := range values {
		n, _ := asFloat(v)
		sq += (n - s.mean) * (n - s.mean)
	}
	s.std = 0
	if count > 1 {
		s.std = math.Sqrt(sq / (count - 1))
	}
	return s
}

// sampleTable builds a synthetic table with the requested number of
// entities. Sequence lengths and context rows are resampled empirically;
// model-column values come from genValue.
func (f *fitted) sampleTable(rng *rand.Rand, entities int, genValue func(col string, s *columnStats) any) (*domain.Table, error) {
	if entities <= 0 {
		return nil, apperrors.Validation("entity count must be positive")
	}

	entityIdx := make(map[string]bool, len(f.roles.EntityColumns))
	for _, c := range f.roles.EntityColumns {
		entityIdx[c] = true
	}
	ctxPos := make(map[string]int, len(f.roles.ContextColumns))
	for i, c := range f.roles.ContextColumns {
		ctxPos[c] = i
	}

	out := domain.NewTable(f.columns...)
	for e := 0; e < entities; e++ {
		length := f.lengths[rng.Intn(len(f.lengths))]
		ctx := f.contexts[rng.Intn(len(f.contexts))]
		for r := 0; r < length; r++ {
			row := make([]any, len(f.columns))
			for j, col := range f.columns {
				if entityIdx[col] {
					row[j] = fmt.Sprintf("entity-%d", e)
				} else if pos, ok := ctxPos[col]; ok {
					row[j] = ctx[pos]
				} else {
					row[j] = genValue(col, f.stats[col])
				}
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
