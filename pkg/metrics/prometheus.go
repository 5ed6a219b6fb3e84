// Package metrics provides Prometheus metrics for the dkptally pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline Metrics - Scoring pass volume and quality
	linesSanitized   prometheus.Counter
	validationErrors *prometheus.CounterVec
	runsCalculated   prometheus.Counter

	// Resolver Metrics - Interactive name resolution
	resolvePrompts      prometheus.Counter
	resolveOutcomes     *prometheus.CounterVec
	suggestionIndexSize prometheus.Gauge

	// History Metrics - Run store activity
	runsSaved        prometheus.Counter
	eventsAppended   prometheus.Counter
	eventsSuperseded prometheus.Counter

	// Roster Metrics - External name source
	rosterFetches       *prometheus.CounterVec
	rosterFetchDuration prometheus.Histogram

	// Error Metrics - Failures by component
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dkptally",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Pipeline Metrics
	m.linesSanitized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lines_sanitized_total",
		Help:      "Total number of log lines that survived sanitization",
	})

	m.validationErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "validation_errors_total",
			Help:      "Total number of validation errors by category",
		},
		[]string{"category"},
	)

	m.runsCalculated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_calculated_total",
		Help:      "Total number of scoring passes that completed without errors",
	})

	// Resolver Metrics
	m.resolvePrompts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "resolve_prompts_total",
		Help:      "Total number of resolver callback invocations",
	})

	m.resolveOutcomes = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "resolve_outcomes_total",
			Help:      "Total number of resolver decisions by action",
		},
		[]string{"action"},
	)

	m.suggestionIndexSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "suggestion_index_size",
		Help:      "Number of roster names in the fuzzy suggestion index",
	})

	// History Metrics
	m.runsSaved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_saved_total",
		Help:      "Total number of runs appended to the history",
	})

	m.eventsAppended = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_appended_total",
		Help:      "Total number of event records appended to the history",
	})

	m.eventsSuperseded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_superseded_total",
		Help:      "Total number of event records deactivated by overlapping runs",
	})

	// Roster Metrics
	m.rosterFetches = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "roster_fetches_total",
			Help:      "Total number of roster fetches by source",
		},
		[]string{"source"},
	)

	m.rosterFetchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_fetch_duration_milliseconds",
		Help:      "Roster fetch duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Error Metrics
	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)
}

// RecordLinesSanitized adds to the sanitized lines counter.
func RecordLinesSanitized(count int) {
	globalManager.linesSanitized.Add(float64(count))
}

// RecordValidationErrors adds to the validation error counter for a category.
func RecordValidationErrors(category string, count int) {
	globalManager.validationErrors.WithLabelValues(category).Add(float64(count))
}

// RecordRunCalculated increments the completed scoring pass counter.
func RecordRunCalculated() {
	globalManager.runsCalculated.Inc()
}

// RecordResolvePrompt increments the resolver invocation counter.
func RecordResolvePrompt() {
	globalManager.resolvePrompts.Inc()
}

// RecordResolveOutcome increments the resolver decision counter for an action.
func RecordResolveOutcome(action string) {
	globalManager.resolveOutcomes.WithLabelValues(action).Inc()
}

// UpdateSuggestionIndexSize sets the size of the fuzzy suggestion index.
func UpdateSuggestionIndexSize(size int) {
	globalManager.suggestionIndexSize.Set(float64(size))
}

// RecordRunSaved increments the saved runs counter.
func RecordRunSaved() {
	globalManager.runsSaved.Inc()
}

// RecordEventsAppended adds to the appended events counter.
func RecordEventsAppended(count int) {
	globalManager.eventsAppended.Add(float64(count))
}

// RecordEventsSuperseded adds to the superseded events counter.
func RecordEventsSuperseded(count int) {
	globalManager.eventsSuperseded.Add(float64(count))
}

// RecordRosterFetch increments the roster fetch counter for a source.
func RecordRosterFetch(source string) {
	globalManager.rosterFetches.WithLabelValues(source).Inc()
}

// RecordRosterFetchDuration records roster fetch duration in milliseconds.
func RecordRosterFetchDuration(latencyMs float64) {
	globalManager.rosterFetchDuration.Observe(latencyMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
