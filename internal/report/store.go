package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/echobench/echobench/internal/domain"
)

const createResultsTable = `
CREATE TABLE IF NOT EXISTS benchmark_results (
	id           BIGSERIAL PRIMARY KEY,
	run_id       TEXT        NOT NULL,
	model        TEXT        NOT NULL,
	dataset      TEXT        NOT NULL,
	status       TEXT        NOT NULL,
	fit_time_ns  BIGINT      NOT NULL,
	sample_time_ns BIGINT    NOT NULL,
	scores       JSONB,
	metric_times JSONB,
	overall      DOUBLE PRECISION,
	error        TEXT,
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_benchmark_results_run ON benchmark_results (run_id);
`

const insertResultRow = `
INSERT INTO benchmark_results
	(run_id, model, dataset, status, fit_time_ns, sample_time_ns, scores, metric_times, overall, error, created_at)
VALUES
	(:run_id, :model, :dataset, :status, :fit_time_ns, :sample_time_ns, :scores, :metric_times, :overall, :error, :created_at)
`

// Store persists benchmark reports to Postgres, one row per report row,
// keyed by run ID.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// OpenStore connects to Postgres and ensures the results table exists.
func OpenStore(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to results store: %w", err)
	}
	s := &Store{db: db, logger: logger}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing connection. The schema is assumed present.
func NewStore(db *sqlx.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createResultsTable); err != nil {
		return fmt.Errorf("creating results table: %w", err)
	}
	return nil
}

// Save persists every row of the report in one transaction.
func (s *Store) Save(ctx context.Context, r *domain.Report) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting results transaction: %w", err)
	}
	defer tx.Rollback()

	for _, row := range r.Rows {
		scores, err := json.Marshal(row.Scores)
		if err != nil {
			return fmt.Errorf("marshaling scores: %w", err)
		}
		times, err := json.Marshal(row.MetricTimes)
		if err != nil {
			return fmt.Errorf("marshaling metric times: %w", err)
		}
		args := map[string]any{
			"run_id":         r.RunID,
			"model":          row.Model,
			"dataset":        row.Dataset,
			"status":         string(row.Status),
			"fit_time_ns":    int64(row.FitTime),
			"sample_time_ns": int64(row.SampleTime),
			"scores":         scores,
			"metric_times":   times,
			"overall":        row.Overall,
			"error":          row.Error,
			"created_at":     r.CreatedAt,
		}
		if _, err := tx.NamedExecContext(ctx, insertResultRow, args); err != nil {
			return fmt.Errorf("inserting result row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing results: %w", err)
	}
	s.logger.Info("persisted benchmark report",
		zap.String("run_id", r.RunID),
		zap.Int("rows", len(r.Rows)),
	)
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}
