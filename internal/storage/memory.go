package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/echobench/echobench/internal/domain"
	apperrors "github.com/echobench/echobench/internal/pkg/errors"
)

// MemCatalog is an in-memory catalog. It backs programmatic benchmark
// runs over datasets built in code and doubles as the failure-injection
// point in tests.
type MemCatalog struct {
	mu       sync.RWMutex
	datasets map[string]*domain.Dataset
	failures map[string]error
}

// NewMemCatalog creates an empty in-memory catalog.
func NewMemCatalog() *MemCatalog {
	return &MemCatalog{
		datasets: make(map[string]*domain.Dataset),
		failures: make(map[string]error),
	}
}

// Add registers a dataset under its name.
func (c *MemCatalog) Add(ds *domain.Dataset) *MemCatalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.datasets[ds.Name] = ds
	return c
}

// Fail makes subsequent loads of the named dataset return err, simulating
// a storage failure.
func (c *MemCatalog) Fail(name string, err error) *MemCatalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[name] = err
	return c
}

// Names lists the registered dataset names, sorted.
func (c *MemCatalog) Names(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.datasets))
	for name := range c.datasets {
		names = append(names, name)
	}
	for name := range c.failures {
		if _, ok := c.datasets[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the named dataset, truncated to maxEntities.
func (c *MemCatalog) Load(ctx context.Context, name string, maxEntities int) (*domain.Dataset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err, ok := c.failures[name]; ok {
		return nil, err
	}
	ds, ok := c.datasets[name]
	if !ok {
		return nil, apperrors.NotFound("dataset " + name)
	}
	return ds.Truncate(maxEntities), nil
}
