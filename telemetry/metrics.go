// Package telemetry exposes Prometheus metrics for flyer generation and
// pattern learning.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flyer_studio"

// Metrics holds all service metrics. A nil *Metrics is valid and records
// nothing, so components can be built without telemetry in tests.
type Metrics struct {
	registry *prometheus.Registry

	Generations        *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	Warnings           *prometheus.CounterVec

	RecordsStored    prometheus.Gauge
	LearningCycles   *prometheus.CounterVec
	PatternsMerged   prometheus.Counter
	PatternLibrary   prometheus.Gauge
	AnalysisDegraded prometheus.Counter
}

// New creates metrics registered on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Flyer generations by outcome",
		}, []string{"outcome", "style"}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time spent assembling a flyer document",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		Warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Non-fatal generation warnings by kind",
		}, []string{"kind"}),
		RecordsStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_stored",
			Help:      "Generation records held by the learning engine",
		}),
		LearningCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "learning_cycles_total",
			Help:      "Learning cycles by result",
		}, []string{"result"}),
		PatternsMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patterns_merged_total",
			Help:      "Pattern observations merged into the library",
		}),
		PatternLibrary: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pattern_library_size",
			Help:      "Patterns currently in the library",
		}),
		AnalysisDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_degraded_total",
			Help:      "Analyses that yielded no pattern signal",
		}),
	}

	reg.MustRegister(
		m.Generations,
		m.GenerationDuration,
		m.Warnings,
		m.RecordsStored,
		m.LearningCycles,
		m.PatternsMerged,
		m.PatternLibrary,
		m.AnalysisDegraded,
	)
	return m
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordGeneration counts one generation attempt.
func (m *Metrics) RecordGeneration(style string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.Generations.WithLabelValues(outcome, style).Inc()
	m.GenerationDuration.Observe(duration.Seconds())
}

// RecordWarning counts one non-fatal warning.
func (m *Metrics) RecordWarning(kind string) {
	if m == nil {
		return
	}
	m.Warnings.WithLabelValues(kind).Inc()
}

// SetRecordsStored updates the record store gauge.
func (m *Metrics) SetRecordsStored(n int) {
	if m == nil {
		return
	}
	m.RecordsStored.Set(float64(n))
}

// RecordCycle counts a learning cycle and the patterns it merged.
func (m *Metrics) RecordCycle(result string, merged, librarySize int) {
	if m == nil {
		return
	}
	m.LearningCycles.WithLabelValues(result).Inc()
	m.PatternsMerged.Add(float64(merged))
	m.PatternLibrary.Set(float64(librarySize))
}

// RecordDegraded counts a degraded analysis.
func (m *Metrics) RecordDegraded() {
	if m == nil {
		return
	}
	m.AnalysisDegraded.Inc()
}
