// Package metrics exposes Prometheus counters for the cleanup pipeline.
//
// Every method is safe to call on a nil *Metrics, so tests and callers that
// run without metrics can pass nil.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sweeper"

// Outcome labels for Operation.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics holds the application collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	filesIngested     *prometheus.CounterVec
	encodingFallbacks prometheus.Counter
	operations        *prometheus.CounterVec
	exports           *prometheus.CounterVec
	archiveEntries    prometheus.Histogram
	activeSessions    prometheus.Gauge
}

// New registers all collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		filesIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_ingested_total",
			Help:      "Uploaded files parsed into a workspace, by format.",
		}, []string{"format"}),
		encodingFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encoding_fallbacks_total",
			Help:      "CSV uploads that were not valid UTF-8 and were read as ISO-8859-1.",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Cleaning and projection operations, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Single-file downloads, by format.",
		}, []string{"format"}),
		archiveEntries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "archive_entries",
			Help:      "Number of files in each built archive.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Browser sessions currently holding a workspace.",
		}),
	}

	reg.MustRegister(
		m.filesIngested,
		m.encodingFallbacks,
		m.operations,
		m.exports,
		m.archiveEntries,
		m.activeSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
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

// FileIngested counts a parsed upload. fallback marks an ISO-8859-1 retry.
func (m *Metrics) FileIngested(format string, fallback bool) {
	if m == nil {
		return
	}
	m.filesIngested.WithLabelValues(format).Inc()
	if fallback {
		m.encodingFallbacks.Inc()
	}
}

// Operation counts one cleaning or projection call.
func (m *Metrics) Operation(op, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

// Exported counts a single-file download.
func (m *Metrics) Exported(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// ArchiveBuilt observes the entry count of a finished archive.
func (m *Metrics) ArchiveBuilt(entries int) {
	if m == nil {
		return
	}
	m.archiveEntries.Observe(float64(entries))
}

// SetSessions records the live session count.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
