package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echobench/echobench/internal/domain"
	apperrors "github.com/echobench/echobench/internal/pkg/errors"
)

func buildTable(t *testing.T, columns []string, rows [][]any) *domain.Table {
	t.Helper()
	table := domain.NewTable(columns...)
	for _, row := range rows {
		require.NoError(t, table.AppendRow(row))
	}
	return table
}

func testRoles() domain.Roles {
	return domain.Roles{
		EntityColumns: []string{"id"},
		ModelColumns:  []string{"value"},
	}
}

func TestIdentityReplaysFittedTable(t *testing.T) {
	table := buildTable(t, []string{"id", "value"}, [][]any{
		{"a", 1.0}, {"a", 2.0}, {"b", 3.0},
	})

	m := NewIdentity()
	require.NoError(t, m.Fit(context.Background(), table, testRoles()))

	out, err := m.Sample(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, out.Columns)
	assert.Equal(t, table.Rows, out.Rows)
}

func TestIdentityCyclesAndRelabels(t *testing.T) {
	table := buildTable(t, []string{"id", "value"}, [][]any{
		{"a", 1.0}, {"b", 2.0},
	})

	m := NewIdentity()
	require.NoError(t, m.Fit(context.Background(), table, testRoles()))

	out, err := m.Sample(context.Background(), 3)
	require.NoError(t, err)
	keys := domain.EntityKeys(out, []string{"id"})
	assert.Equal(t, []string{"a", "b", "a#1"}, keys, "cycled copies get distinct identities")
	assert.Equal(t, 3, out.NumRows())
}

func TestIdentityErrors(t *testing.T) {
	m := NewIdentity()

	_, err := m.Sample(context.Background(), 1)
	assert.True(t, apperrors.IsValidation(err), "sampling before fitting")

	assert.Error(t, m.Fit(context.Background(), domain.NewTable("id"), testRoles()))

	table := buildTable(t, []string{"id", "value"}, [][]any{{"a", 1.0}})
	require.NoError(t, m.Fit(context.Background(), table, testRoles()))
	_, err = m.Sample(context.Background(), 0)
	assert.True(t, apperrors.IsValidation(err))
}

func TestIdentityFitCopiesTable(t *testing.T) {
	table := buildTable(t, []string{"id", "value"}, [][]any{{"a", 1.0}})
	m := NewIdentity()
	require.NoError(t, m.Fit(context.Background(), table, testRoles()))

	table.Rows[0][1] = 99.0

	out, err := m.Sample(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.Rows[0][1])
}

func TestUniformSamplesWithinRange(t *testing.T) {
	table := buildTable(t, []string{"id", "region", "value"}, [][]any{
		{"a", "east", 10.0}, {"a", "east", 20.0},
		{"b", "west", 15.0}, {"b", "west", 30.0},
	})
	roles := domain.Roles{
		EntityColumns:  []string{"id"},
		ContextColumns: []string{"region"},
		ModelColumns:   []string{"value"},
	}

	m := NewUniform(7)
	require.NoError(t, m.Fit(context.Background(), table, roles))

	out, err := m.Sample(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, out.Columns)
	assert.Equal(t, 5, len(domain.EntityKeys(out, []string{"id"})))

	valueIdx := out.ColumnIndex("value")
	regionIdx := out.ColumnIndex("region")
	for _, row := range out.Rows {
		v := row[valueIdx].(float64)
		assert.GreaterOrEqual(t, v, 10.0)
		assert.LessOrEqual(t, v, 30.0)
		assert.Contains(t, []any{"east", "west"}, row[regionIdx])
	}

	// Context columns stay constant within each synthetic entity.
	keys, groups := domain.GroupByEntity(out, []string{"id"})
	for _, key := range keys {
		rows := groups[key]
		for _, row := range rows[1:] {
			assert.Equal(t, rows[0][regionIdx], row[regionIdx])
		}
	}
}

func TestUniformDeterministicForSeed(t *testing.T) {
	table := buildTable(t, []string{"id", "value"}, [][]any{
		{"a", 1.0}, {"a", 2.0}, {"b", 3.0},
	})

	sample := func() *domain.Table {
		m := NewUniform(42)
		require.NoError(t, m.Fit(context.Background(), table, testRoles()))
		out, err := m.Sample(context.Background(), 4)
		require.NoError(t, err)
		return out
	}

	assert.Equal(t, sample().Rows, sample().Rows)
}

func TestGaussianSamples(t *testing.T) {
	table := buildTable(t, []string{"id", "value"}, [][]any{
		{"a", 10.0}, {"a", 12.0}, {"b", 9.0}, {"b", 11.0},
	})

	m := NewGaussian(3)
	require.NoError(t, m.Fit(context.Background(), table, testRoles()))

	out, err := m.Sample(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, len(domain.EntityKeys(out, []string{"id"})))

	valueIdx := out.ColumnIndex("value")
	for _, row := range out.Rows {
		_, ok := row[valueIdx].(float64)
		assert.True(t, ok, "numeric columns stay numeric")
	}
}

func TestSamplerErrors(t *testing.T) {
	for _, m := range []Model{NewUniform(1), NewGaussian(1)} {
		_, err := m.Sample(context.Background(), 1)
		assert.True(t, apperrors.IsValidation(err), "sampling before fitting")

		assert.Error(t, m.Fit(context.Background(), nil, testRoles()))
	}
}

func TestDefaultRegistry(t *testing.T) {
	assert.Equal(t, []string{"identity", "uniform", "gaussian"}, Default.Names())

	m, err := Default.Resolve(domain.WithOptions("uniform", map[string]any{"seed": 5.0}))
	require.NoError(t, err)
	assert.IsType(t, &Uniform{}, m)
}

func TestOptSeed(t *testing.T) {
	assert.Equal(t, int64(0), optSeed(nil))
	assert.Equal(t, int64(7), optSeed(map[string]any{"seed": 7}))
	assert.Equal(t, int64(7), optSeed(map[string]any{"seed": int64(7)}))
	assert.Equal(t, int64(7), optSeed(map[string]any{"seed": 7.0}), "JSON numbers decode as float64")
	assert.Equal(t, int64(0), optSeed(map[string]any{"seed": "x"}))
}
