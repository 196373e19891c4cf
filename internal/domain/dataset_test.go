package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/echobench/echobench/internal/pkg/errors"
)

func buildTable(t *testing.T, columns []string, rows [][]any) *Table {
	t.Helper()
	table := NewTable(columns...)
	for _, row := range rows {
		require.NoError(t, table.AppendRow(row))
	}
	return table
}

func TestNewDatasetOrdersBySequenceIndex(t *testing.T) {
	table := buildTable(t, []string{"id", "t", "value"}, [][]any{
		{"a", 2.0, 10.0},
		{"a", 1.0, 5.0},
		{"b", 1.0, 7.0},
	})

	ds, err := NewDataset("readings", table, []string{"id"}, nil, "t")
	require.NoError(t, err)

	// The index column is dropped after ordering.
	assert.Equal(t, []string{"id", "value"}, ds.Table.Columns)
	assert.Equal(t, [][]any{
		{"a", 5.0},
		{"a", 10.0},
		{"b", 7.0},
	}, ds.Table.Rows)
	assert.Equal(t, []string{"value"}, ds.ModelColumns)
	assert.Equal(t, 2, ds.NumEntities())
}

func TestNewDatasetWithoutSequenceIndexKeepsOrder(t *testing.T) {
	table := buildTable(t, []string{"id", "value"}, [][]any{
		{"a", 2.0},
		{"a", 1.0},
	})

	ds, err := NewDataset("readings", table, []string{"id"}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"a", 2.0}, {"a", 1.0}}, ds.Table.Rows)
}

func TestNewDatasetContextColumns(t *testing.T) {
	table := buildTable(t, []string{"id", "region", "value"}, [][]any{
		{"a", "east", 1.0},
		{"a", "east", 2.0},
		{"b", "west", 3.0},
	})

	ds, err := NewDataset("readings", table, []string{"id"}, []string{"region"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"region"}, ds.ContextColumns)
	assert.Equal(t, []string{"value"}, ds.ModelColumns)
}

func TestNewDatasetRejectsVaryingContext(t *testing.T) {
	table := buildTable(t, []string{"id", "region", "value"}, [][]any{
		{"a", "east", 1.0},
		{"a", "west", 2.0},
	})

	_, err := NewDataset("readings", table, []string{"id"}, []string{"region"}, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "region")
}

func TestNewDatasetValidation(t *testing.T) {
	table := buildTable(t, []string{"id", "value"}, [][]any{{"a", 1.0}})

	tests := []struct {
		name          string
		table         *Table
		entityColumns []string
		contextCols   []string
		sequenceIndex string
	}{
		{"nil table", nil, nil, nil, ""},
		{"unknown entity column", table, []string{"missing"}, nil, ""},
		{"unknown context column", table, []string{"id"}, []string{"missing"}, ""},
		{"unknown sequence index", table, []string{"id"}, nil, "missing"},
		{"entity and context overlap", table, []string{"id"}, []string{"id"}, ""},
		{"sequence index is an entity column", table, []string{"id"}, nil, "id"},
		{"sequence index is a context column", table, []string{"id"}, []string{"value"}, "value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDataset("bad", tt.table, tt.entityColumns, tt.contextCols, tt.sequenceIndex)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestDatasetNumEntitiesWithoutEntityColumns(t *testing.T) {
	table := buildTable(t, []string{"value"}, [][]any{{1.0}, {2.0}})
	ds, err := NewDataset("single", table, nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 1, ds.NumEntities())

	empty, err := NewDataset("empty", NewTable("value"), nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.NumEntities())
}

func TestDatasetTruncate(t *testing.T) {
	table := buildTable(t, []string{"id", "value"}, [][]any{
		{"a", 1.0},
		{"b", 2.0},
		{"a", 3.0},
		{"c", 4.0},
	})
	ds, err := NewDataset("readings", table, []string{"id"}, nil, "")
	require.NoError(t, err)

	truncated := ds.Truncate(2)
	assert.Equal(t, 2, truncated.NumEntities())
	assert.Equal(t, []string{"a", "b"}, EntityKeys(truncated.Table, truncated.EntityColumns))
	// Deterministic: same call, same entities.
	again := ds.Truncate(2)
	assert.Equal(t, truncated.Table.Rows, again.Table.Rows)

	// No-op cases return the dataset unchanged.
	assert.Same(t, ds, ds.Truncate(0))
	assert.Same(t, ds, ds.Truncate(-1))
	assert.Same(t, ds, ds.Truncate(10))
}

func TestDatasetRoles(t *testing.T) {
	table := buildTable(t, []string{"id", "region", "value"}, [][]any{
		{"a", "east", 1.0},
	})
	ds, err := NewDataset("readings", table, []string{"id"}, []string{"region"}, "")
	require.NoError(t, err)

	roles := ds.Roles()
	assert.Equal(t, []string{"id"}, roles.EntityColumns)
	assert.Equal(t, []string{"region"}, roles.ContextColumns)
	assert.Equal(t, []string{"value"}, roles.ModelColumns)
}
