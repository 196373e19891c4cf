package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/echobench/echobench/internal/domain"
)

// Header returns the report's column names: fixed identity and timing
// columns, then a score and a time column per metric, then overall and
// error.
func Header(r *domain.Report) []string {
	header := []string{"model", "dataset", "status", "fit_time", "sample_time"}
	for _, name := range r.MetricNames {
		header = append(header, name, name+"_time")
	}
	return append(header, "overall", "error")
}

// Records flattens the report rows into string cells aligned with
// Header. Missing scores render as empty cells.
func Records(r *domain.Report) [][]string {
	records := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		record := []string{
			row.Model,
			row.Dataset,
			string(row.Status),
			formatDuration(row.FitTime),
			formatDuration(row.SampleTime),
		}
		for _, name := range r.MetricNames {
			record = append(record, formatScore(row.Scores, name))
			if t, ok := row.MetricTimes[name]; ok {
				record = append(record, formatDuration(t))
			} else {
				record = append(record, "")
			}
		}
		overall := ""
		if row.Overall != nil {
			overall = strconv.FormatFloat(*row.Overall, 'f', 6, 64)
		}
		records[i] = append(record, overall, row.Error)
	}
	return records
}

// WriteCSV writes the report as delimited tabular text.
func WriteCSV(w io.Writer, r *domain.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(r)); err != nil {
		return err
	}
	for _, record := range Records(r) {
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the report to a file, creating parent directories as
// needed.
func SaveCSV(path string, r *domain.Report) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, r)
}

// Upload serializes the report as CSV and stores it as an object in an
// S3-compatible bucket.
func Upload(ctx context.Context, client *minio.Client, bucket, key string, r *domain.Report) error {
	var sb strings.Builder
	if err := WriteCSV(&sb, r); err != nil {
		return err
	}
	body := strings.NewReader(sb.String())
	_, err := client.PutObject(ctx, bucket, key, body, int64(body.Len()), minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return fmt.Errorf("uploading report to %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Markdown renders the report as a GitHub-style table for console
// output.
func Markdown(r *domain.Report) string {
	header := Header(r)
	records := Records(r)

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, record := range records {
		for i, cell := range record {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i, cell := range cells {
			sb.WriteString(" ")
			sb.WriteString(cell)
			sb.WriteString(strings.Repeat(" ", widths[i]-len(cell)+1))
			sb.WriteString("|")
		}
		sb.WriteString("\n")
	}

	writeRow(header)
	sb.WriteString("|")
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteString("|")
	}
	sb.WriteString("\n")
	for _, record := range records {
		writeRow(record)
	}
	return sb.String()
}

func formatScore(scores map[string]float64, name string) string {
	v, ok := scores[name]
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.Round(time.Millisecond).String()
}
