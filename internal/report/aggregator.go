// Package report assembles task results into the final benchmark report
// and serializes it: CSV for files and object storage, a GitHub-style
// table for the console, and a Postgres sink for durable run history.
package report

import (
	"sort"
	"time"

	"github.com/echobench/echobench/internal/domain"
)

// Aggregate flattens the results of a run into one report row per task,
// keyed by (model, dataset). Failed tasks keep their row with empty score
// cells and a populated error column; they are never dropped. The metric
// column set is the union of the requested metric names across all tasks,
// sorted for a deterministic layout.
func Aggregate(runID string, tasks []domain.Task, results []domain.TaskResult) *domain.Report {
	nameSet := make(map[string]bool)
	for _, task := range tasks {
		for _, name := range task.MetricNames() {
			nameSet[name] = true
		}
	}
	for _, result := range results {
		for name := range result.Metrics {
			nameSet[name] = true
		}
	}
	metricNames := make([]string, 0, len(nameSet))
	for name := range nameSet {
		metricNames = append(metricNames, name)
	}
	sort.Strings(metricNames)

	report := &domain.Report{
		RunID:       runID,
		MetricNames: metricNames,
		Rows:        make([]domain.ReportRow, len(results)),
		CreatedAt:   time.Now().UTC(),
	}
	for i, result := range results {
		report.Rows[i] = flatten(result)
	}
	return report
}

func flatten(result domain.TaskResult) domain.ReportRow {
	row := domain.ReportRow{
		Model:      result.ModelName,
		Dataset:    result.DatasetName,
		Status:     result.Status,
		FitTime:    result.FitDuration,
		SampleTime: result.SampleDuration,
	}
	if result.Err != nil {
		row.Error = result.Err.Error()
	}

	var sum float64
	var count int
	for name, m := range result.Metrics {
		if row.MetricTimes == nil {
			row.MetricTimes = make(map[string]time.Duration, len(result.Metrics))
		}
		row.MetricTimes[name] = m.Duration
		if m.Score == nil {
			continue
		}
		if row.Scores == nil {
			row.Scores = make(map[string]float64, len(result.Metrics))
		}
		row.Scores[name] = *m.Score
		sum += *m.Score
		count++
	}

	// The overall column is derived strictly from the metric scores that
	// are present; it stays empty when every metric failed.
	if count > 0 {
		overall := sum / float64(count)
		row.Overall = &overall
	}
	return row
}
