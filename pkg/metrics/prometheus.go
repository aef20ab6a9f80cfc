// Package metrics provides Prometheus metrics for the dream team pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes.
const (
	OutcomeTeam         = "team"
	OutcomeNoCandidates = "no_candidates"
	OutcomeValidation   = "validation_error"
	OutcomeSourceError  = "source_error"
	OutcomeCancelled    = "cancelled"
)

// Enrichment outcomes.
const (
	EnrichOK       = "ok"
	EnrichFallback = "fallback"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Pipeline metrics
	runs              *prometheus.CounterVec
	runsInFlight      prometheus.Gauge
	runDuration       prometheus.Histogram
	candidatesSourced prometheus.Histogram
	searchLatency     prometheus.Histogram
	enrichments       *prometheus.CounterVec
	genomeLatency     prometheus.Histogram
	enrichInFlight    prometheus.Gauge
	assemblyLatency   prometheus.Histogram
	teamSize          prometheus.Gauge
	uncoveredSkills   prometheus.Gauge

	// Stream metrics
	streamEvents        *prometheus.CounterVec
	streamEventsDropped *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dreamteam",
		subsystem:        "pipeline",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.runs = auto.NewCounterVec(m.counter("runs_total", "Pipeline runs by outcome"), []string{"outcome"})
	m.runsInFlight = auto.NewGauge(m.gauge("runs_in_flight", "Pipeline runs currently executing"))
	m.runDuration = auto.NewHistogram(m.histogram("run_duration_milliseconds", "End-to-end run duration in milliseconds", m.histogramBuckets))
	m.candidatesSourced = auto.NewHistogram(m.histogram("candidates_sourced", "Raw candidates returned per search",
		[]float64{0, 1, 5, 10, 25, 50, 75, 100}))
	m.searchLatency = auto.NewHistogram(m.histogram("search_latency_milliseconds", "Search service round-trip in milliseconds", m.histogramBuckets))
	m.enrichments = auto.NewCounterVec(m.counter("enrichments_total", "Per-candidate genome fetches by outcome"), []string{"outcome"})
	m.genomeLatency = auto.NewHistogram(m.histogram("genome_latency_milliseconds", "Genome service round-trip in milliseconds", m.histogramBuckets))
	m.enrichInFlight = auto.NewGauge(m.gauge("enrich_in_flight", "Genome fetches currently executing"))
	m.assemblyLatency = auto.NewHistogram(m.histogram("assembly_latency_milliseconds", "Greedy assembly duration in milliseconds",
		[]float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50}))
	m.teamSize = auto.NewGauge(m.gauge("last_team_size", "Size of the most recently assembled team"))
	m.uncoveredSkills = auto.NewGauge(m.gauge("last_uncovered_skills", "Requested skills left uncovered by the most recent team"))

	m.streamEvents = auto.NewCounterVec(m.counter("stream_events_total", "Progress events delivered to consumers by kind"), []string{"kind"})
	m.streamEventsDropped = auto.NewCounterVec(m.counter("stream_events_dropped_total", "Progress events suppressed after disconnect or a terminal event"), []string{"kind"})

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counter("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counter("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counter("errors_by_endpoint_total", "Errors by HTTP endpoint"),
		[]string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogram("error_latency_milliseconds", "Latency of failed operations in milliseconds", m.histogramBuckets),
		[]string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordRun counts a finished run with its outcome.
func RecordRun(outcome string) {
	globalManager.runs.WithLabelValues(outcome).Inc()
}

// RunStarted increments the in-flight run gauge.
func RunStarted() {
	globalManager.runsInFlight.Inc()
}

// RunFinished decrements the in-flight run gauge and records the duration.
func RunFinished(durationMs float64) {
	globalManager.runsInFlight.Dec()
	globalManager.runDuration.Observe(durationMs)
}

// RecordSearch records a search round-trip and how many candidates it returned.
func RecordSearch(latencyMs float64, candidates int) {
	globalManager.searchLatency.Observe(latencyMs)
	if candidates >= 0 {
		globalManager.candidatesSourced.Observe(float64(candidates))
	}
}

// RecordEnrichment counts one genome fetch by outcome and its latency.
func RecordEnrichment(outcome string, latencyMs float64) {
	globalManager.enrichments.WithLabelValues(outcome).Inc()
	globalManager.genomeLatency.Observe(latencyMs)
}

// AddEnrichInFlight adjusts the in-flight genome fetch gauge.
func AddEnrichInFlight(delta float64) {
	globalManager.enrichInFlight.Add(delta)
}

// RecordAssembly records an assembly duration and its team coverage.
func RecordAssembly(latencyMs float64, teamSize, uncovered int) {
	globalManager.assemblyLatency.Observe(latencyMs)
	globalManager.teamSize.Set(float64(teamSize))
	globalManager.uncoveredSkills.Set(float64(uncovered))
}

// RecordStreamEvent counts an event delivered to a consumer.
func RecordStreamEvent(kind string) {
	globalManager.streamEvents.WithLabelValues(kind).Inc()
}

// RecordStreamEventDropped counts an event the sink suppressed.
func RecordStreamEventDropped(kind string) {
	globalManager.streamEventsDropped.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent increments the error counter for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType increments the error counter for a type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint increments the error counter for an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records how long a failed operation took.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage updates the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the global metrics are registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
