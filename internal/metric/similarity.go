package metric

import (
	"context"
	"math"

	"github.com/echobench/echobench/internal/domain"
	apperrors "github.com/echobench/echobench/internal/pkg/errors"
)

// StatSimilarity compares the mean and standard deviation of every
// numeric model column between the real and synthetic tables. Each
// statistic contributes 1 - |real - synthetic| normalized by the real
// column's observed range, clipped to [0,1]; the score is the average
// over all statistics. Identical tables score 1.
func StatSimilarity(ctx context.Context, real, synthetic *domain.Table, roles domain.Roles) (float64, error) {
	if err := checkTables(real, synthetic); err != nil {
		return 0, err
	}

	var total, count float64
	for _, col := range roles.ModelColumns {
		rv, rok := numericColumn(real, col)
		sv, sok := numericColumn(synthetic, col)
		if !rok {
			continue
		}
		if !sok {
			total += 0
			count++
			continue
		}
		rMean, rStd, rMin, rMax := describe(rv)
		sMean, sStd, _, _ := describe(sv)

		span := rMax - rMin
		if span == 0 {
			span = math.Max(math.Abs(rMax), 1)
		}
		total += clip01(1 - math.Abs(rMean-sMean)/span)
		total += clip01(1 - math.Abs(rStd-sStd)/span)
		count += 2
	}
	if count == 0 {
		return 0, apperrors.Validation("no numeric model columns to compare")
	}
	return total / count, nil
}

// LengthSimilarity compares the mean sequence length of the real and
// synthetic tables.
func LengthSimilarity(ctx context.Context, real, synthetic *domain.Table, roles domain.Roles) (float64, error) {
	if err := checkTables(real, synthetic); err != nil {
		return 0, err
	}
	rMean := meanLength(real, roles.EntityColumns)
	sMean := meanLength(synthetic, roles.EntityColumns)
	if rMean == 0 && sMean == 0 {
		return 1, nil
	}
	return clip01(1 - math.Abs(rMean-sMean)/math.Max(rMean, sMean)), nil
}

// CategoryCoverage measures, for every categorical model column, which
// fraction of the real values the synthetic data reproduces, averaged
// over columns. Tables with no categorical model columns score 1.
func CategoryCoverage(ctx context.Context, real, synthetic *domain.Table, roles domain.Roles) (float64, error) {
	if err := checkTables(real, synthetic); err != nil {
		return 0, err
	}

	var total, count float64
	for _, col := range roles.ModelColumns {
		if _, numeric := numericColumn(real, col); numeric {
			continue
		}
		realSet := valueSet(real.Column(col))
		if len(realSet) == 0 {
			continue
		}
		synthSet := valueSet(synthetic.Column(col))
		var covered int
		for v := range realSet {
			if synthSet[v] {
				covered++
			}
		}
		total += float64(covered) / float64(len(realSet))
		count++
	}
	if count == 0 {
		return 1, nil
	}
	return total / count, nil
}

func checkTables(real, synthetic *domain.Table) error {
	if real == nil || real.NumRows() == 0 {
		return apperrors.Validation("real table is empty")
	}
	if synthetic == nil || synthetic.NumRows() == 0 {
		return apperrors.Validation("synthetic table is empty")
	}
	return nil
}

func numericColumn(t *domain.Table, name string) ([]float64, bool) {
	raw := t.Column(name)
	if raw == nil {
		return nil, false
	}
	values := make([]float64, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case float64:
			values = append(values, n)
		case float32:
			values = append(values, float64(n))
		case int:
			values = append(values, float64(n))
		case int64:
			values = append(values, float64(n))
		default:
			return nil, false
		}
	}
	return values, true
}

func describe(values []float64) (mean, std, min, max float64) {
	min, max = values[0], values[0]
	var sum float64
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean = sum / float64(len(values))
	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			sq += (v - mean) * (v - mean)
		}
		std = math.Sqrt(sq / float64(len(values)-1))
	}
	return mean, std, min, max
}

func meanLength(t *domain.Table, entityColumns []string) float64 {
	keys, groups := domain.GroupByEntity(t, entityColumns)
	if len(keys) == 0 {
		return 0
	}
	var sum float64
	for _, key := range keys {
		sum += float64(len(groups[key]))
	}
	return sum / float64(len(keys))
}

func valueSet(values []any) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			set[s] = true
		}
	}
	return set
}

func clip01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
