package backend

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/echobench/echobench/internal/domain"
)

// Pool runs tasks across a bounded pool of in-process workers. Tasks are
// independent and share no mutable state, so the only coordination needed
// is the index-addressed result slice.
type Pool struct {
	logger  *zap.Logger
	workers int
}

// NewPool creates a worker-pool backend. A non-positive worker count
// defaults to the number of CPUs.
func NewPool(logger *zap.Logger, workers int) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{logger: logger, workers: workers}
}

// Run implements Backend. It blocks until every task has completed; each
// worker writes only its own index, so no locking is needed on the result
// slice.
func (b *Pool) Run(ctx context.Context, tasks []domain.Task, fn RunFunc) ([]domain.TaskResult, error) {
	results := make([]domain.TaskResult, len(tasks))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = safeRun(ctx, tasks[i], fn)
			}
		}()
	}

	for i := range tasks {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	b.logger.Debug("pool run complete",
		zap.Int("tasks", len(tasks)),
		zap.Int("workers", b.workers),
	)
	return results, nil
}
