// Package metrics provides Prometheus metrics for the tourdesk service.
package metrics

import (
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const (
	defaultNamespace = "tourdesk"
	defaultSubsystem = "registrations"
)

// Manager owns every Prometheus collector the service exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Registration requests
	requestsSubmitted prometheus.Counter
	requestsStored    prometheus.Gauge
	listQueries       prometheus.Counter
	listQueryLatency  prometheus.Histogram
	listResultSize    prometheus.Histogram

	// Review decisions
	decisionsQueued    *prometheus.CounterVec
	decisionsRecorded  *prometheus.CounterVec
	decisionsDuplicate prometheus.Counter

	// Review queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors *prometheus.CounterVec

	// Review workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByType        *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out of /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.requestsSubmitted = auto.NewCounter(m.counterOpts("requests_submitted_total",
		"Total number of registration requests accepted by /submit-user-data"))
	m.requestsStored = auto.NewGauge(m.gaugeOpts("requests_stored",
		"Number of registration requests currently held in memory"))
	m.listQueries = auto.NewCounter(m.counterOpts("list_queries_total",
		"Total number of listing queries served"))
	m.listQueryLatency = auto.NewHistogram(m.histogramOpts("list_query_latency_milliseconds",
		"Time spent filtering and paginating the request collection", m.histogramBuckets))
	m.listResultSize = auto.NewHistogram(m.histogramOpts("list_result_size",
		"Number of records returned per listing page", prometheus.LinearBuckets(0, 10, 11)))

	m.decisionsQueued = auto.NewCounterVec(m.counterOpts("decisions_queued_total",
		"Review decisions accepted for processing"), []string{"verdict"})
	m.decisionsRecorded = auto.NewCounterVec(m.counterOpts("decisions_recorded_total",
		"Review decisions written to the decision log"), []string{"verdict"})
	m.decisionsDuplicate = auto.NewCounter(m.counterOpts("decisions_duplicate_total",
		"Review decisions rejected as duplicates"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("review_queue_size",
		"Current number of decisions waiting in the review queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("review_queue_capacity",
		"Maximum capacity of the review queue"))
	m.queueEnqueueErrors = auto.NewCounterVec(m.counterOpts("review_queue_enqueue_errors_total",
		"Decisions that could not be enqueued"), []string{"reason"})

	m.workerCount = auto.NewGauge(m.gaugeOpts("review_worker_count",
		"Number of review workers running"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("review_worker_latency_milliseconds",
		"Time a worker spends applying one decision", m.histogramBuckets))
	m.workerErrors = auto.NewCounter(m.counterOpts("review_worker_errors_total",
		"Decisions a worker failed to apply"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"HTTP errors by endpoint, method and error type"), []string{"endpoint", "method", "error_type"})
	m.errorsByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total",
		"HTTP errors by type and severity"), []string{"error_type", "severity"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes",
		"Heap bytes allocated by the process"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines",
		"Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds",
		"Average GC pause in milliseconds", m.histogramBuckets))
}

// FullName returns the fully qualified name of a metric owned by m.
func (m *Manager) FullName(name string) string {
	return prometheus.BuildFQName(m.namespace, m.subsystem, name)
}

// on reports whether the global manager records observations.
func on() bool {
	return globalManager != nil && globalManager.enabled.Load()
}

// SetEnabled toggles recording for the package-level helpers.
func SetEnabled(enabled bool) {
	globalManager.enabled.Store(enabled)
}

// RecordRequestSubmitted increments the submission counter.
func RecordRequestSubmitted() {
	if on() {
		globalManager.requestsSubmitted.Inc()
	}
}

// UpdateRequestsStored sets the number of stored requests.
func UpdateRequestsStored(count int) {
	if on() {
		globalManager.requestsStored.Set(float64(count))
	}
}

// RecordListQuery records a listing query with its latency and page size.
func RecordListQuery(latencyMs float64, returned int) {
	if on() {
		globalManager.listQueries.Inc()
		globalManager.listQueryLatency.Observe(latencyMs)
		globalManager.listResultSize.Observe(float64(returned))
	}
}

// RecordDecisionQueued increments the queued decision counter for verdict.
func RecordDecisionQueued(verdict string) {
	if on() {
		globalManager.decisionsQueued.WithLabelValues(verdict).Inc()
	}
}

// RecordDecisionRecorded increments the applied decision counter for verdict.
func RecordDecisionRecorded(verdict string) {
	if on() {
		globalManager.decisionsRecorded.WithLabelValues(verdict).Inc()
	}
}

// RecordDecisionDuplicate increments the duplicate decision counter.
func RecordDecisionDuplicate() {
	if on() {
		globalManager.decisionsDuplicate.Inc()
	}
}

// UpdateQueueSize sets the current review queue length.
func UpdateQueueSize(size int) {
	if on() {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the review queue capacity.
func UpdateQueueCapacity(capacity int) {
	if on() {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueueError counts a failed enqueue with its reason.
func RecordQueueEnqueueError(reason string) {
	if on() {
		globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
	}
}

// UpdateWorkerCount sets the number of running review workers.
func UpdateWorkerCount(count int) {
	if on() {
		globalManager.workerCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency records how long one decision took to apply.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if on() {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if on() {
		globalManager.workerErrors.Inc()
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if on() {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if on() {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if on() {
		globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if on() {
		globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
	}
}

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if on() {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if on() {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if on() {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Value sums every sample of a counter or gauge in the custom registry.
// name is the short metric name, e.g. "requests_submitted_total".
func Value(name string) (float64, error) {
	return valueFrom(customRegistry, globalManager.FullName(name))
}

func valueFrom(g prometheus.Gatherer, fqName string) (float64, error) {
	families, err := g.Gather()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrObserveFailed, err)
	}
	for _, mf := range families {
		if mf.GetName() != fqName {
			continue
		}
		var total float64
		for _, mtr := range mf.GetMetric() {
			total += sampleValue(mf.GetType(), mtr)
		}
		return total, nil
	}
	return 0, fmt.Errorf("%w: %s not found", ErrObserveFailed, fqName)
}

func sampleValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount())
	default:
		return 0
	}
}
