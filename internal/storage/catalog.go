// Package storage loads labeled time-series datasets for the benchmark
// engine. A dataset is a directory holding one descriptor file and one
// delimited data file; catalogs resolve dataset names to materialized,
// role-annotated datasets.
package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/echobench/echobench/internal/domain"
	apperrors "github.com/echobench/echobench/internal/pkg/errors"
)

// Catalog lists and loads datasets by name. Implementations must be safe
// for concurrent use: datasets are immutable once loaded, so many tasks
// may load from one catalog in parallel.
type Catalog interface {
	Names(ctx context.Context) ([]string, error)
	Load(ctx context.Context, name string, maxEntities int) (*domain.Dataset, error)
}

// DirCatalog serves datasets from subdirectories of a root directory.
type DirCatalog struct {
	root   string
	logger *zap.Logger
}

// NewDirCatalog creates a catalog over the given root directory.
func NewDirCatalog(root string, logger *zap.Logger) *DirCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirCatalog{root: root, logger: logger}
}

// Names lists the dataset directories under the root, sorted by name.
func (c *DirCatalog) Names(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("listing catalog %s: %w", c.root, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(c.root, e.Name(), DescriptorFile)); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load materializes one dataset, optionally truncated to the first
// maxEntities distinct entities.
func (c *DirCatalog) Load(ctx context.Context, name string, maxEntities int) (*domain.Dataset, error) {
	dir := filepath.Join(c.root, name)
	desc, err := ReadDescriptor(filepath.Join(dir, DescriptorFile))
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", name, err)
	}
	_, tableDesc := desc.Table()

	table, err := readDataFile(filepath.Join(dir, tableDesc.Path), tableDesc.Fields)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", name, err)
	}

	contextColumns := detectContextColumns(table, tableDesc)
	ds, err := domain.NewDataset(name, table, tableDesc.EntityColumns, contextColumns, tableDesc.SequenceIndex)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", name, err)
	}

	c.logger.Debug("loaded dataset",
		zap.String("dataset", name),
		zap.Int("rows", ds.Table.NumRows()),
		zap.Int("entities", ds.NumEntities()),
	)
	return ds.Truncate(maxEntities), nil
}

// readDataFile parses the delimited data file, converting cells of
// numerical fields to float64 and leaving everything else as strings.
func readDataFile(path string, fields map[string]FieldDescriptor) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening data file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}
	if len(records) == 0 {
		return nil, apperrors.Validation("data file has no header row")
	}

	header := records[0]
	for _, col := range header {
		if _, ok := fields[col]; !ok {
			return nil, apperrors.Validation(fmt.Sprintf("column %q not declared in descriptor", col))
		}
	}

	numeric := make([]bool, len(header))
	for i, col := range header {
		numeric[i] = fields[col].Type == "numerical"
	}

	table := domain.NewTable(header...)
	for lineno, record := range records[1:] {
		row := make([]any, len(record))
		for i, cell := range record {
			if numeric[i] {
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("row %d column %q: %w", lineno+2, header[i], err)
				}
				row[i] = v
			} else {
				row[i] = cell
			}
		}
		if err := table.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// detectContextColumns derives the context columns: declared fields that
// are neither entity nor sequence-index columns and whose value is
// constant within every entity.
func detectContextColumns(table *domain.Table, desc TableDescriptor) []string {
	if len(desc.EntityColumns) == 0 {
		return nil
	}
	entitySet := make(map[string]bool, len(desc.EntityColumns))
	for _, c := range desc.EntityColumns {
		entitySet[c] = true
	}

	keys, groups := domain.GroupByEntity(table, desc.EntityColumns)
	var contextColumns []string
	for idx, col := range table.Columns {
		if entitySet[col] || col == desc.SequenceIndex {
			continue
		}
		constant := true
		for _, key := range keys {
			rows := groups[key]
			for _, row := range rows[1:] {
				if row[idx] != rows[0][idx] {
					constant = false
					break
				}
			}
			if !constant {
				break
			}
		}
		if constant {
			contextColumns = append(contextColumns, col)
		}
	}
	return contextColumns
}
