package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/echobench/echobench/internal/domain"
	apperrors "github.com/echobench/echobench/internal/pkg/errors"
	"github.com/echobench/echobench/internal/worker"
)

// fakeResultSource serves a scripted sequence of result-list entries and
// answers redis.Nil once drained, standing in for the per-run Redis list.
type fakeResultSource struct {
	mu      sync.Mutex
	entries []string
	deleted []string
}

func (f *fakeResultSource) BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(ctx)
	if err := ctx.Err(); err != nil {
		cmd.SetErr(err)
		return cmd
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == 0 {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	entry := f.entries[0]
	f.entries = f.entries[1:]
	cmd.SetVal([]string{keys[0], entry})
	return cmd
}

func (f *fakeResultSource) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, keys...)
	return redis.NewIntCmd(ctx)
}

func gatherBackend(src resultSource, timeout time.Duration) *Distributed {
	return &Distributed{
		logger:        zap.NewNop(),
		rdb:           src,
		queue:         "benchmark",
		gatherTimeout: timeout,
	}
}

func resultEntry(t *testing.T, index int, modelName string) string {
	t.Helper()
	payload := worker.ResultPayload{
		Index: index,
		Result: domain.TaskResult{
			ModelName:   modelName,
			DatasetName: "readings",
			Status:      domain.StatusSuccess,
		},
	}
	data, err := json.Marshal(&payload)
	require.NoError(t, err)
	return string(data)
}

func gatherTasks(n int) []domain.Task {
	tasks := make([]domain.Task, n)
	for i := range tasks {
		tasks[i] = domain.Task{
			Model:   domain.ByName(fmt.Sprintf("model-%d", i)),
			Dataset: domain.ByName("readings"),
		}
	}
	return tasks
}

func TestGatherReassociatesOutOfOrderResults(t *testing.T) {
	tasks := gatherTasks(3)
	src := &fakeResultSource{entries: []string{
		resultEntry(t, 2, "model-2"),
		resultEntry(t, 0, "model-0"),
		resultEntry(t, 1, "model-1"),
	}}
	b := gatherBackend(src, 5*time.Second)

	results := make([]domain.TaskResult, len(tasks))
	filled := make([]bool, len(tasks))
	require.NoError(t, b.gather(context.Background(), "run-1", tasks, results, filled, 3))

	for i, result := range results {
		assert.Equal(t, tasks[i].Model.Name, result.ModelName, "result %d re-associated by index", i)
		assert.Equal(t, domain.StatusSuccess, result.Status)
	}
}

func TestGatherDiscardsBadEntriesAndFillsLostTasks(t *testing.T) {
	tasks := gatherTasks(3)
	src := &fakeResultSource{entries: []string{
		"not json",
		resultEntry(t, 5, "out-of-range"),
		resultEntry(t, -1, "negative"),
		resultEntry(t, 2, "model-2"),
		resultEntry(t, 2, "duplicate"),
		resultEntry(t, 0, "model-0"),
	}}
	// The result for index 1 never arrives; the short deadline ends the
	// gather instead.
	b := gatherBackend(src, 150*time.Millisecond)

	results := make([]domain.TaskResult, len(tasks))
	filled := make([]bool, len(tasks))
	require.NoError(t, b.gather(context.Background(), "run-1", tasks, results, filled, 3))

	assert.Equal(t, "model-0", results[0].ModelName)
	assert.Equal(t, domain.StatusSuccess, results[0].Status)
	assert.Equal(t, "model-2", results[2].ModelName, "first delivery wins, duplicate discarded")
	assert.Equal(t, domain.StatusSuccess, results[2].Status)

	lost := results[1]
	assert.Equal(t, tasks[1].Model.Name, lost.ModelName)
	assert.Equal(t, domain.StatusFailed, lost.Status)
	require.NotNil(t, lost.Err)
	assert.Equal(t, domain.StageInfra, lost.Err.Stage)
	assert.Contains(t, lost.Err.Message, "no result received")
}

func TestGatherStopsOnCanceledContext(t *testing.T) {
	tasks := gatherTasks(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeResultSource{}
	b := gatherBackend(src, 5*time.Second)

	results := make([]domain.TaskResult, 1)
	filled := make([]bool, 1)
	err := b.gather(ctx, "run-1", tasks, results, filled, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDistributedRejectsInstanceSpecs(t *testing.T) {
	// Validation happens before any Redis traffic, so nil clients are fine.
	b := NewDistributed(nil, nil, nil, "benchmark")

	tasks := []domain.Task{
		{
			Model:   domain.ByName("identity"),
			Dataset: domain.ByName("readings"),
			Metrics: []domain.Spec{domain.ByName("stat-similarity")},
		},
		{
			Model:   domain.FromInstance("custom", &struct{}{}),
			Dataset: domain.ByName("readings"),
			Metrics: []domain.Spec{domain.ByName("stat-similarity")},
		},
	}

	_, err := b.Run(context.Background(), tasks, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "cannot be distributed")
}

func TestWithGatherTimeout(t *testing.T) {
	b := NewDistributed(nil, nil, nil, "benchmark", WithGatherTimeout(time.Minute))
	assert.Equal(t, time.Minute, b.gatherTimeout)

	b = NewDistributed(nil, nil, nil, "benchmark")
	assert.Equal(t, DefaultGatherTimeout, b.gatherTimeout)
}

func TestInfraFailed(t *testing.T) {
	task := domain.Task{
		Model:   domain.ByName("identity"),
		Dataset: domain.ByName("readings"),
	}
	result := infraFailed(task, "worker vanished")

	assert.Equal(t, "identity", result.ModelName)
	assert.Equal(t, "readings", result.DatasetName)
	assert.Equal(t, domain.StatusFailed, result.Status)
	require.NotNil(t, result.Err)
	assert.Equal(t, domain.StageInfra, result.Err.Stage)
	assert.Equal(t, "worker vanished", result.Err.Message)
}
