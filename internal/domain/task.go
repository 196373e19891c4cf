package domain

import (
	"sort"
	"time"
)

// Status is the terminal outcome of a task.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Stage identifies where in the pipeline a task currently is, or where it
// failed.
type Stage string

const (
	StageLoad     Stage = "load"
	StageFit      Stage = "fit"
	StageSample   Stage = "sample"
	StageEvaluate Stage = "evaluate"
	StageDone     Stage = "done"
	// StageInfra marks failures caused by the execution infrastructure
	// (worker crash, lost result) rather than the pipeline itself.
	StageInfra Stage = "infra"
)

// Task is one immutable unit of benchmark work: fit a model on a dataset
// and score the sampled output with a metric set.
type Task struct {
	Model       Spec   `json:"model"`
	Dataset     Spec   `json:"dataset"`
	Metrics     []Spec `json:"metrics"`
	MaxEntities int    `json:"max_entities,omitempty"`
	// SampleSize overrides the number of synthetic entities to request.
	// Zero means match the real dataset's entity count.
	SampleSize int `json:"sample_size,omitempty"`
}

// MetricNames returns the names of the task's metric set in order.
func (t Task) MetricNames() []string {
	names := make([]string, len(t.Metrics))
	for i, m := range t.Metrics {
		names[i] = m.Name
	}
	return names
}

// Transportable reports whether every spec in the task can cross a
// process boundary.
func (t Task) Transportable() bool {
	if !t.Model.Transportable() || !t.Dataset.Transportable() {
		return false
	}
	for _, m := range t.Metrics {
		if !m.Transportable() {
			return false
		}
	}
	return true
}

// StageError records the pipeline stage a task failed at and why.
type StageError struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return string(e.Stage) + ": " + e.Message
}

// MetricResult is the outcome of one metric within a task. A nil score
// with a non-empty error means the metric failed; sibling metrics are
// unaffected.
type MetricResult struct {
	Score    *float64      `json:"score,omitempty"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// TaskResult is the single, immutable outcome of running one task.
type TaskResult struct {
	ModelName      string                  `json:"model"`
	DatasetName    string                  `json:"dataset"`
	Status         Status                  `json:"status"`
	FitDuration    time.Duration           `json:"fit_duration,omitempty"`
	SampleDuration time.Duration           `json:"sample_duration,omitempty"`
	Metrics        map[string]MetricResult `json:"metrics,omitempty"`
	Err            *StageError             `json:"error,omitempty"`
}

// ScoredMetrics returns the names of metrics that produced a score, in
// lexical order.
func (r TaskResult) ScoredMetrics() []string {
	var names []string
	for name, m := range r.Metrics {
		if m.Score != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
