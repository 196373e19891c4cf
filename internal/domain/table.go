package domain

import (
	"fmt"
	"strings"
)

// Table is an in-memory tabular collection. Cells hold float64 for numeric
// columns and string for everything else.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewTable creates an empty table with the given column order.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// ColumnIndex returns the position of a column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table declares the given column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// AppendRow appends one row. The row length must match the column count.
func (t *Table) AppendRow(row []any) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// Column returns all values of the named column in row order.
func (t *Table) Column(name string) []any {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	values := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	clone := NewTable(t.Columns...)
	clone.Rows = make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		clone.Rows[i] = append([]any(nil), row...)
	}
	return clone
}

// DropColumn returns a copy of the table without the named column.
// The original table is left untouched.
func (t *Table) DropColumn(name string) *Table {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return t.Clone()
	}
	columns := make([]string, 0, len(t.Columns)-1)
	columns = append(columns, t.Columns[:idx]...)
	columns = append(columns, t.Columns[idx+1:]...)
	out := NewTable(columns...)
	out.Rows = make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]any, 0, len(row)-1)
		cells = append(cells, row[:idx]...)
		cells = append(cells, row[idx+1:]...)
		out.Rows[i] = cells
	}
	return out
}

// EntityKey builds the composite key identifying the entity a row belongs
// to. An empty index list means the whole table is one sequence.
func EntityKey(row []any, indexes []int) string {
	if len(indexes) == 0 {
		return ""
	}
	parts := make([]string, len(indexes))
	for i, idx := range indexes {
		parts[i] = fmt.Sprint(row[idx])
	}
	return strings.Join(parts, "\x1f")
}

// EntityKeys returns the distinct entity keys of a table in first-seen
// order.
func EntityKeys(t *Table, entityColumns []string) []string {
	indexes := columnIndexes(t, entityColumns)
	seen := make(map[string]bool)
	var keys []string
	for _, row := range t.Rows {
		key := EntityKey(row, indexes)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// GroupByEntity splits a table's rows by entity, preserving row order
// within each group and first-seen entity order in the returned keys.
func GroupByEntity(t *Table, entityColumns []string) ([]string, map[string][][]any) {
	indexes := columnIndexes(t, entityColumns)
	groups := make(map[string][][]any)
	var keys []string
	for _, row := range t.Rows {
		key := EntityKey(row, indexes)
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], row)
	}
	return keys, groups
}

func columnIndexes(t *Table, columns []string) []int {
	indexes := make([]int, 0, len(columns))
	for _, c := range columns {
		if idx := t.ColumnIndex(c); idx >= 0 {
			indexes = append(indexes, idx)
		}
	}
	return indexes
}

// CompareValues orders two cell values. Numbers compare numerically,
// everything else compares as strings.
func CompareValues(a, b any) int {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
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
