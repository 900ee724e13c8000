// Package metrics exposes Prometheus collectors for the analysis pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "factlens"

// Metrics holds every collector; a nil *Metrics is a valid no-op recorder
type Metrics struct {
	registry *prometheus.Registry

	analyses           *prometheus.CounterVec
	analysisDuration   *prometheus.HistogramVec
	reliability        prometheus.Histogram
	invocationFailures *prometheus.CounterVec
	rulesFired         *prometheus.CounterVec
	telemetryEvents    *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
}

// New creates a registry with process/go collectors and the pipeline collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed analyses by mode and final verdict.",
		}, []string{"mode", "verdict"}),
		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis latency, dominated by the model call.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
		}, []string{"mode"}),
		reliability: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "audit_reliability",
			Help:      "Distribution of final audit reliability scores.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		invocationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocation_failures_total",
			Help:      "Model invocations that failed.",
		}, []string{"provider"}),
		rulesFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ruleset_adjustments_total",
			Help:      "Consistency rules that changed a record.",
		}, []string{"rule"}),
		telemetryEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_events_total",
			Help:      "Telemetry events by sink and outcome (sent, failed, dropped).",
		}, []string{"sink", "status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "code"}),
	}

	reg.MustRegister(
		m.analyses,
		m.analysisDuration,
		m.reliability,
		m.invocationFailures,
		m.rulesFired,
		m.telemetryEvents,
		m.httpRequests,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveAnalysis records one completed analysis
func (m *Metrics) ObserveAnalysis(mode, verdict string, seconds float64, reliability int) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(mode, verdict).Inc()
	m.analysisDuration.WithLabelValues(mode).Observe(seconds)
	m.reliability.Observe(float64(reliability))
}

// InvocationFailed records a failed model call
func (m *Metrics) InvocationFailed(provider string) {
	if m == nil {
		return
	}
	m.invocationFailures.WithLabelValues(provider).Inc()
}

// RuleFired records a consistency rule adjustment
func (m *Metrics) RuleFired(rule string) {
	if m == nil {
		return
	}
	m.rulesFired.WithLabelValues(rule).Inc()
}

// TelemetryEvent records the outcome of one telemetry delivery
func (m *Metrics) TelemetryEvent(sink, status string) {
	if m == nil {
		return
	}
	m.telemetryEvents.WithLabelValues(sink, status).Inc()
}

// HTTPRequest records one API request
func (m *Metrics) HTTPRequest(route, code string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, code).Inc()
}
