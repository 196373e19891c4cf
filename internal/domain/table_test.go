package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableColumns(t *testing.T) {
	table := NewTable("id", "t", "value")

	assert.Equal(t, 0, table.ColumnIndex("id"))
	assert.Equal(t, 2, table.ColumnIndex("value"))
	assert.Equal(t, -1, table.ColumnIndex("missing"))
	assert.True(t, table.HasColumn("t"))
	assert.False(t, table.HasColumn("missing"))
}

func TestTableAppendRow(t *testing.T) {
	table := NewTable("a", "b")

	require.NoError(t, table.AppendRow([]any{1.0, "x"}))
	assert.Equal(t, 1, table.NumRows())

	err := table.AppendRow([]any{1.0})
	assert.Error(t, err)
	assert.Equal(t, 1, table.NumRows())
}

func TestTableColumn(t *testing.T) {
	table := NewTable("id", "value")
	require.NoError(t, table.AppendRow([]any{"a", 1.0}))
	require.NoError(t, table.AppendRow([]any{"b", 2.0}))

	assert.Equal(t, []any{1.0, 2.0}, table.Column("value"))
	assert.Nil(t, table.Column("missing"))
}

func TestTableCloneIsDeep(t *testing.T) {
	table := NewTable("id", "value")
	require.NoError(t, table.AppendRow([]any{"a", 1.0}))

	clone := table.Clone()
	clone.Rows[0][1] = 99.0

	assert.Equal(t, 1.0, table.Rows[0][1])
}

func TestTableDropColumn(t *testing.T) {
	table := NewTable("id", "t", "value")
	require.NoError(t, table.AppendRow([]any{"a", 1.0, 10.0}))
	require.NoError(t, table.AppendRow([]any{"a", 2.0, 20.0}))

	dropped := table.DropColumn("t")

	assert.Equal(t, []string{"id", "value"}, dropped.Columns)
	assert.Equal(t, [][]any{{"a", 10.0}, {"a", 20.0}}, dropped.Rows)
	// Original is untouched.
	assert.Equal(t, []string{"id", "t", "value"}, table.Columns)

	same := table.DropColumn("missing")
	assert.Equal(t, table.Columns, same.Columns)
	assert.Equal(t, table.Rows, same.Rows)
}

func TestEntityKeys(t *testing.T) {
	table := NewTable("id", "value")
	for _, row := range [][]any{{"b", 1.0}, {"a", 2.0}, {"b", 3.0}, {"c", 4.0}} {
		require.NoError(t, table.AppendRow(row))
	}

	keys := EntityKeys(table, []string{"id"})
	assert.Equal(t, []string{"b", "a", "c"}, keys, "first-seen order")
}

func TestGroupByEntity(t *testing.T) {
	table := NewTable("id", "value")
	for _, row := range [][]any{{"a", 1.0}, {"b", 2.0}, {"a", 3.0}} {
		require.NoError(t, table.AppendRow(row))
	}

	keys, groups := GroupByEntity(table, []string{"id"})
	require.Equal(t, []string{"a", "b"}, keys)
	assert.Len(t, groups["a"], 2)
	assert.Len(t, groups["b"], 1)
	assert.Equal(t, 3.0, groups["a"][1][1], "row order preserved within group")
}

func TestGroupByEntityNoEntityColumns(t *testing.T) {
	table := NewTable("value")
	require.NoError(t, table.AppendRow([]any{1.0}))
	require.NoError(t, table.AppendRow([]any{2.0}))

	keys, groups := GroupByEntity(table, nil)
	require.Equal(t, []string{""}, keys, "whole table is one sequence")
	assert.Len(t, groups[""], 2)
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"numeric less", 1.0, 2.0, -1},
		{"numeric greater", 10.0, 2.0, 1},
		{"numeric equal", 3.0, 3.0, 0},
		{"mixed int and float", 2, 10.0, -1},
		{"strings", "apple", "banana", -1},
		{"string vs number falls back to text", "x", 5.0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareValues(tt.a, tt.b))
		})
	}
}
