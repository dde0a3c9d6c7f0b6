package telemetry_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"flyer-studio/telemetry"
)

func TestRecordGeneration(t *testing.T) {
	m := telemetry.New()

	m.RecordGeneration("premium-luxury", true, 2*time.Millisecond)
	m.RecordGeneration("premium-luxury", false, time.Millisecond)
	m.RecordGeneration("premium-luxury", true, time.Millisecond)

	if got := testutil.ToFloat64(m.Generations.WithLabelValues("success", "premium-luxury")); got != 2 {
		t.Errorf("success count: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Generations.WithLabelValues("failure", "premium-luxury")); got != 1 {
		t.Errorf("failure count: got %v, want 1", got)
	}
}

func TestRecordCycle(t *testing.T) {
	m := telemetry.New()
	m.RecordCycle("merged", 7, 30)

	if got := testutil.ToFloat64(m.PatternsMerged); got != 7 {
		t.Errorf("PatternsMerged: got %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.PatternLibrary); got != 30 {
		t.Errorf("PatternLibrary: got %v, want 30", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *telemetry.Metrics

	// Should not panic
	m.RecordGeneration("x", true, time.Millisecond)
	m.RecordWarning("unknown-style")
	m.SetRecordsStored(3)
	m.RecordCycle("skipped", 0, 0)
	m.RecordDegraded()
}

func TestHandlerServesMetrics(t *testing.T) {
	m := telemetry.New()
	m.RecordWarning("unknown-style")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	m.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "flyer_studio_warnings_total") {
		t.Error("expected warnings counter in metrics output")
	}
}
