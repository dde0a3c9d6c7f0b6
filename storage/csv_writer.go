package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"flyer-studio/models"
)

var recordHeader = []string{
	"id", "timestamp", "request_id", "style_id", "kind", "success", "error_kind",
	"warnings", "duration_ms", "harmony", "grid", "responsiveness", "hierarchy",
}

// CSVWriter writes generation records to a CSV file, one row per record.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(recordHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteRecords appends one row per record. Analysis columns are empty for
// records that were never analyzed.
func (c *CSVWriter) WriteRecords(records []models.GenerationRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range records {
		if err := c.writer.Write(recordRow(r)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

func recordRow(r models.GenerationRecord) []string {
	kind := string(r.Request.Kind)
	if r.Outcome.Document != nil {
		kind = string(r.Outcome.Document.Metadata.Kind)
	}

	errKind := ""
	if r.Outcome.Error != nil {
		errKind = string(r.Outcome.Error.Kind)
	}

	warnings := make([]string, 0, len(r.Outcome.Warnings))
	for _, w := range r.Outcome.Warnings {
		warnings = append(warnings, string(w.Kind))
	}

	row := []string{
		r.ID,
		r.Timestamp.Format(time.RFC3339),
		r.RequestID,
		r.StyleID,
		kind,
		strconv.FormatBool(r.Outcome.Success),
		errKind,
		strings.Join(warnings, ";"),
		strconv.FormatFloat(float64(r.Metrics.Duration.Microseconds())/1000, 'f', 3, 64),
		"", "", "", "",
	}
	if a := r.Analysis; a != nil {
		row[9] = strconv.FormatFloat(a.Design.Color.Score, 'f', 2, 64)
		row[10] = a.Design.Layout.Grid
		row[11] = strconv.FormatFloat(a.Design.Layout.Responsiveness, 'f', 2, 64)
		row[12] = a.Design.Typography.Hierarchy
	}
	return row
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
