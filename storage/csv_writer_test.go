package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"flyer-studio/models"
)

func TestCSVWriterWritesRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "records.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	records := []models.GenerationRecord{
		{
			ID: "rec-1", RequestID: "req-1", StyleID: "premium-luxury",
			Timestamp: time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
			Outcome: models.Outcome{
				Success:  true,
				Document: &models.GeneratedDocument{Metadata: models.DocumentMetadata{Kind: models.FlyerOpenHouse}},
				Warnings: []models.Warning{{Kind: models.WarnUnknownStyle}},
			},
			Metrics: models.PerformanceMetrics{Duration: 2 * time.Millisecond},
			Analysis: &models.RecordAnalysis{Design: models.DesignAnalysis{
				Color:      models.ColorHarmony{Score: 1},
				Layout:     models.LayoutSignature{Grid: "css-grid", Responsiveness: 1},
				Typography: models.TypographySignature{Hierarchy: "strong"},
			}},
		},
		{ID: "rec-2", Outcome: models.Outcome{Error: &models.GenerationError{Kind: models.ErrKindValidation}}},
	}
	if err := w.WriteRecords(records); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3 (header + 2)", len(rows))
	}
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"header", rows[0][0], "id"},
		{"kind", rows[1][4], "open-house"},
		{"success", rows[1][5], "true"},
		{"warnings", rows[1][7], "unknown-style"},
		{"duration", rows[1][8], "2.000"},
		{"harmony", rows[1][9], "1.00"},
		{"grid", rows[1][10], "css-grid"},
		{"hierarchy", rows[1][12], "strong"},
		{"error kind", rows[2][6], "validation"},
		{"no analysis", rows[2][10], ""},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
