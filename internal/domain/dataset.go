package domain

import (
	"fmt"
	"sort"

	apperrors "github.com/echobench/echobench/internal/pkg/errors"
)

// Roles describes the column roles a model or metric needs to interpret a
// table: which columns identify entities, which are per-entity constants,
// and which carry the sequence values to learn and generate.
type Roles struct {
	EntityColumns  []string `json:"entity_columns"`
	ContextColumns []string `json:"context_columns"`
	ModelColumns   []string `json:"model_columns"`
}

// Dataset is one labeled time-series collection plus its column-role
// metadata. It is immutable after construction and safe for concurrent
// read-only use.
type Dataset struct {
	Name           string
	Table          *Table
	EntityColumns  []string
	ContextColumns []string
	SequenceIndex  string
	ModelColumns   []string
}

// NewDataset builds a dataset from an in-memory table and explicit role
// assignments. Rows are ordered per entity by the sequence index (original
// order when absent) and the index column is dropped afterwards. Model
// columns are everything left over once entity, context and index columns
// are removed.
func NewDataset(name string, table *Table, entityColumns, contextColumns []string, sequenceIndex string) (*Dataset, error) {
	if table == nil {
		return nil, apperrors.Validation("dataset table is required")
	}
	for _, c := range entityColumns {
		if !table.HasColumn(c) {
			return nil, apperrors.Validation(fmt.Sprintf("entity column %q not in table", c))
		}
	}
	for _, c := range contextColumns {
		if !table.HasColumn(c) {
			return nil, apperrors.Validation(fmt.Sprintf("context column %q not in table", c))
		}
	}
	if sequenceIndex != "" && !table.HasColumn(sequenceIndex) {
		return nil, apperrors.Validation(fmt.Sprintf("sequence index column %q not in table", sequenceIndex))
	}
	if sequenceIndex != "" && (contains(entityColumns, sequenceIndex) || contains(contextColumns, sequenceIndex)) {
		return nil, apperrors.Validation(fmt.Sprintf("sequence index column %q cannot also be an entity or context column", sequenceIndex))
	}
	if c := overlap(entityColumns, contextColumns); c != "" {
		return nil, apperrors.Validation(fmt.Sprintf("column %q is both entity and context", c))
	}

	ordered := orderBySequenceIndex(table, entityColumns, sequenceIndex)
	if sequenceIndex != "" {
		ordered = ordered.DropColumn(sequenceIndex)
	}

	ds := &Dataset{
		Name:           name,
		Table:          ordered,
		EntityColumns:  append([]string(nil), entityColumns...),
		ContextColumns: append([]string(nil), contextColumns...),
		SequenceIndex:  sequenceIndex,
	}
	for _, c := range ordered.Columns {
		if !contains(entityColumns, c) && !contains(contextColumns, c) {
			ds.ModelColumns = append(ds.ModelColumns, c)
		}
	}

	if err := ds.checkContextConstancy(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Roles returns the dataset's role metadata.
func (d *Dataset) Roles() Roles {
	return Roles{
		EntityColumns:  d.EntityColumns,
		ContextColumns: d.ContextColumns,
		ModelColumns:   d.ModelColumns,
	}
}

// NumEntities returns the number of distinct entities.
func (d *Dataset) NumEntities() int {
	if len(d.EntityColumns) == 0 {
		if d.Table.NumRows() == 0 {
			return 0
		}
		return 1
	}
	return len(EntityKeys(d.Table, d.EntityColumns))
}

// Truncate returns a dataset limited to the first maxEntities distinct
// entities in catalog order. Zero or negative means no limit. Truncation
// is deterministic: never a random subset.
func (d *Dataset) Truncate(maxEntities int) *Dataset {
	if maxEntities <= 0 || len(d.EntityColumns) == 0 || d.NumEntities() <= maxEntities {
		return d
	}
	keep := make(map[string]bool, maxEntities)
	for _, key := range EntityKeys(d.Table, d.EntityColumns)[:maxEntities] {
		keep[key] = true
	}
	indexes := columnIndexes(d.Table, d.EntityColumns)
	table := NewTable(d.Table.Columns...)
	for _, row := range d.Table.Rows {
		if keep[EntityKey(row, indexes)] {
			table.Rows = append(table.Rows, append([]any(nil), row...))
		}
	}
	return &Dataset{
		Name:           d.Name,
		Table:          table,
		EntityColumns:  d.EntityColumns,
		ContextColumns: d.ContextColumns,
		SequenceIndex:  d.SequenceIndex,
		ModelColumns:   d.ModelColumns,
	}
}

func (d *Dataset) checkContextConstancy() error {
	if len(d.ContextColumns) == 0 || len(d.EntityColumns) == 0 {
		return nil
	}
	indexes := columnIndexes(d.Table, d.EntityColumns)
	seen := make(map[string][]any)
	for _, row := range d.Table.Rows {
		key := EntityKey(row, indexes)
		values := make([]any, len(d.ContextColumns))
		for i, c := range d.ContextColumns {
			values[i] = row[d.Table.ColumnIndex(c)]
		}
		if prev, ok := seen[key]; ok {
			for i := range values {
				if values[i] != prev[i] {
					return apperrors.Validation(fmt.Sprintf(
						"context column %q varies within entity %q", d.ContextColumns[i], key))
				}
			}
		} else {
			seen[key] = values
		}
	}
	return nil
}

// orderBySequenceIndex sorts each entity's rows by the sequence index,
// keeping entities in first-seen order. A stable sort preserves original
// order for ties and for tables without an index.
func orderBySequenceIndex(table *Table, entityColumns []string, sequenceIndex string) *Table {
	out := NewTable(table.Columns...)
	keys, groups := GroupByEntity(table, entityColumns)
	seqIdx := -1
	if sequenceIndex != "" {
		seqIdx = table.ColumnIndex(sequenceIndex)
	}
	for _, key := range keys {
		rows := append([][]any(nil), groups[key]...)
		if seqIdx >= 0 {
			sort.SliceStable(rows, func(i, j int) bool {
				return CompareValues(rows[i][seqIdx], rows[j][seqIdx]) < 0
			})
		}
		for _, row := range rows {
			out.Rows = append(out.Rows, append([]any(nil), row...))
		}
	}
	return out
}

func overlap(a, b []string) string {
	for _, x := range a {
		if contains(b, x) {
			return x
		}
	}
	return ""
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
