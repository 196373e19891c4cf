package backend

import (
	"context"

	"go.uber.org/zap"

	"github.com/echobench/echobench/internal/domain"
)

// Local runs tasks one at a time, in input order, on the calling
// goroutine. It is the correctness baseline the concurrent backends are
// measured against.
type Local struct {
	logger *zap.Logger
}

// NewLocal creates a sequential backend.
func NewLocal(logger *zap.Logger) *Local {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Local{logger: logger}
}

// Run implements Backend.
func (b *Local) Run(ctx context.Context, tasks []domain.Task, fn RunFunc) ([]domain.TaskResult, error) {
	results := make([]domain.TaskResult, len(tasks))
	for i, task := range tasks {
		b.logger.Debug("running task",
			zap.Int("index", i),
			zap.String("model", task.Model.Name),
			zap.String("dataset", task.Dataset.Name),
		)
		results[i] = safeRun(ctx, task, fn)
	}
	return results, nil
}
