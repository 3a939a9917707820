// Package metrics provides Prometheus metrics for the clickhistory service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Press pipeline metrics
	pressesRecorded prometheus.Counter
	pressClicks     prometheus.Counter
	samplesSeen     prometheus.Counter
	samplesDropped  *prometheus.CounterVec

	// Event store metrics
	storeSize      prometheus.Gauge
	storeCapacity  prometheus.Gauge
	storeEvictions prometheus.Counter

	// Resolver metrics
	resolverAttempts prometheus.Counter
	resolverFailures *prometheus.CounterVec

	// Stream session metrics
	streamConnects    prometheus.Counter
	streamDisconnects prometheus.Counter
	streamMessages    prometheus.Counter
	streamIgnored     prometheus.Counter

	// Persistence metrics
	persistSaves        prometheus.Counter
	persistSaveFailures prometheus.Counter
	persistSaveDuration prometheus.Histogram
	persistLoadDuration prometheus.Histogram

	// Ingest queue metrics
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueDrops    prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "clickhistory",
		subsystem:        "tracker",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.pressesRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "presses_recorded_total",
		Help:      "Total number of press events derived from the stream",
	})

	m.pressClicks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "press_clicks_total",
		Help:      "Sum of click deltas across all recorded press events",
	})

	m.samplesSeen = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tick_samples_total",
		Help:      "Total number of ticking samples handed to the delta engine",
	})

	m.samplesDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tick_samples_dropped_total",
		Help:      "Tick samples dropped before reaching the store, by reason",
	}, []string{"reason"})

	m.storeSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_entries",
		Help:      "Current number of events held by the history store",
	})

	m.storeCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_capacity",
		Help:      "Configured capacity of the history store",
	})

	m.storeEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_evictions_total",
		Help:      "Total number of events evicted from the front of the store",
	})

	m.resolverAttempts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "resolver_attempts_total",
		Help:      "Total number of endpoint resolution attempts",
	})

	m.resolverFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "resolver_failures_total",
		Help:      "Endpoint resolution failures, by reason",
	}, []string{"reason"})

	m.streamConnects = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stream_connects_total",
		Help:      "Total number of websocket sessions opened",
	})

	m.streamDisconnects = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stream_disconnects_total",
		Help:      "Total number of websocket sessions closed",
	})

	m.streamMessages = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stream_messages_total",
		Help:      "Total number of websocket frames received",
	})

	m.streamIgnored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stream_messages_ignored_total",
		Help:      "Frames dropped for having an unrecognized shape or type",
	})

	m.persistSaves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_saves_total",
		Help:      "Total number of snapshot writes to the persistence backend",
	})

	m.persistSaveFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_save_failures_total",
		Help:      "Snapshot writes that failed",
	})

	m.persistSaveDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_save_duration_seconds",
		Help:      "Histogram of snapshot write latency",
		Buckets:   m.histogramBuckets,
	})

	m.persistLoadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_load_duration_seconds",
		Help:      "Histogram of boot-time snapshot load latency",
		Buckets:   m.histogramBuckets,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of samples waiting in the ingest queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the ingest queue",
	})

	m.queueDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_drops_total",
		Help:      "Samples rejected because the ingest queue was full or closed",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "Histogram of HTTP request latency",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated heap memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Histogram of average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// GetRegistry returns the registry backing the global manager, for use by
// the /healthz metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers delegating to the global manager.

func RecordPress(clicks int) {
	globalManager.pressesRecorded.Inc()
	globalManager.pressClicks.Add(float64(clicks))
}

func RecordTickSample() { globalManager.samplesSeen.Inc() }
func RecordSampleDropped(reason string) {
	globalManager.samplesDropped.WithLabelValues(reason).Inc()
}

func UpdateStoreSize(n int)     { globalManager.storeSize.Set(float64(n)) }
func UpdateStoreCapacity(n int) { globalManager.storeCapacity.Set(float64(n)) }
func RecordStoreEvictions(n int) {
	globalManager.storeEvictions.Add(float64(n))
}

func RecordResolverAttempt() { globalManager.resolverAttempts.Inc() }
func RecordResolverFailure(reason string) {
	globalManager.resolverFailures.WithLabelValues(reason).Inc()
}

func RecordStreamConnect()    { globalManager.streamConnects.Inc() }
func RecordStreamDisconnect() { globalManager.streamDisconnects.Inc() }
func RecordStreamMessage()    { globalManager.streamMessages.Inc() }
func RecordStreamIgnored()    { globalManager.streamIgnored.Inc() }

func RecordPersistSave()        { globalManager.persistSaves.Inc() }
func RecordPersistSaveFailure() { globalManager.persistSaveFailures.Inc() }
func RecordPersistSaveDuration(seconds float64) {
	globalManager.persistSaveDuration.Observe(seconds)
}
func RecordPersistLoadDuration(seconds float64) {
	globalManager.persistLoadDuration.Observe(seconds)
}

func UpdateQueueSize(n int)     { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }
func RecordQueueDrop()          { globalManager.queueDrops.Inc() }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(seconds)
}

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}

func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPauseTime.Observe(ms)
}
