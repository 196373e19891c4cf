// Package metrics provides Prometheus metrics recording for the benchmark
// engine. This package exists so the runner and backends can record without
// importing each other.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// tasksTotal tracks completed benchmark tasks by terminal status
	tasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echobench_tasks_total",
			Help: "Total number of completed benchmark tasks",
		},
		[]string{"status"},
	)

	// stageDuration tracks pipeline stage duration in seconds
	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "echobench_stage_duration_seconds",
			Help:    "Benchmark pipeline stage duration in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 60, 300, 1800},
		},
		[]string{"stage"},
	)

	// metricErrors tracks individual metric computation failures
	metricErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echobench_metric_errors_total",
			Help: "Total number of failed metric computations",
		},
		[]string{"metric"},
	)
)

// RecordTask records a completed task with its terminal status
func RecordTask(status string) {
	tasksTotal.WithLabelValues(status).Inc()
}

// RecordStage records the wall-clock duration of one pipeline stage
func RecordStage(stage string, duration time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordMetricError records a failed metric computation
func RecordMetricError(metric string) {
	metricErrors.WithLabelValues(metric).Inc()
}
