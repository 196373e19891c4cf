package domain

import "time"

// ReportRow is one flattened task outcome. It carries only names and
// values, never references to live models or datasets, so a report is
// serializable independent of the engine's state.
type ReportRow struct {
	Model       string                   `json:"model"`
	Dataset     string                   `json:"dataset"`
	Status      Status                   `json:"status"`
	FitTime     time.Duration            `json:"fit_time,omitempty"`
	SampleTime  time.Duration            `json:"sample_time,omitempty"`
	Scores      map[string]float64       `json:"scores,omitempty"`
	MetricTimes map[string]time.Duration `json:"metric_times,omitempty"`
	// Overall is the mean of the present metric scores; nil when no
	// metric produced a score.
	Overall *float64 `json:"overall,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Report is the final benchmark output: one row per task.
type Report struct {
	RunID string `json:"run_id"`
	// MetricNames is the ordered union of metric names across all tasks,
	// fixing the per-metric column layout.
	MetricNames []string    `json:"metric_names"`
	Rows        []ReportRow `json:"rows"`
	CreatedAt   time.Time   `json:"created_at"`
}
