// Package backend provides the execution strategies for a task list. Every
// backend honors the same contract: the returned slice has exactly one
// result per submitted task, index-aligned with the input, regardless of
// internal execution order or infrastructure failures.
package backend

import (
	"context"
	"fmt"

	"github.com/echobench/echobench/internal/domain"
)

// RunFunc executes one task and returns its result. It must not return an
// error: task failures are part of the result.
type RunFunc func(ctx context.Context, task domain.Task) domain.TaskResult

// Backend runs a task list to completion. Implementations may execute
// out of order but must return result[i] for tasks[i]. The returned error
// covers configuration problems only; per-task failures are captured in
// the results.
type Backend interface {
	Run(ctx context.Context, tasks []domain.Task, fn RunFunc) ([]domain.TaskResult, error)
}

// infraFailed builds the Failed result recorded when the execution
// infrastructure, not the pipeline, lost a task.
func infraFailed(task domain.Task, message string) domain.TaskResult {
	return domain.TaskResult{
		ModelName:   task.Model.Name,
		DatasetName: task.Dataset.Name,
		Status:      domain.StatusFailed,
		Err:         &domain.StageError{Stage: domain.StageInfra, Message: message},
	}
}

// safeRun invokes fn, converting a panic into an infra-failed result so a
// misbehaving runner cannot take down the whole gather.
func safeRun(ctx context.Context, task domain.Task, fn RunFunc) (result domain.TaskResult) {
	defer func() {
		if p := recover(); p != nil {
			result = infraFailed(task, fmt.Sprintf("worker panic: %v", p))
		}
	}()
	return fn(ctx, task)
}
