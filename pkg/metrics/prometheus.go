// Package metrics provides Prometheus metrics for the bankdash dashboard.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the dashboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Upstream API calls
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	// Dashboard pages
	pageRequests *prometheus.CounterVec
	pageDuration *prometheus.HistogramVec

	// Section failures rendered as banners
	sectionErrors *prometheus.CounterVec

	exports        *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init rebuilds the global manager on a fresh registry with opts applied.
// It must run before any request is served; series recorded earlier are lost.
func Init(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "bankdash",
		subsystem:        "dashboard",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	if !m.enabled {
		// Unregistered collectors still accept observations; nothing is exported.
		auto = promauto.With(nil)
	}

	m.upstreamRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "upstream_requests_total",
			Help:        "Total number of calls to the transactions API by endpoint, method and outcome",
			ConstLabels: m.customLabels,
		},
		[]string{"endpoint", "method", "outcome"},
	)

	m.upstreamLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "upstream_latency_milliseconds",
			Help:        "Latency of calls to the transactions API in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.customLabels,
		},
		[]string{"endpoint", "method"},
	)

	m.pageRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of dashboard HTTP requests by page, method and status",
			ConstLabels: m.customLabels,
		},
		[]string{"page", "method", "status_code"},
	)

	m.pageDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "Dashboard page render duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.customLabels,
		},
		[]string{"page", "method", "status_code"},
	)

	m.sectionErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "section_errors_total",
			Help:        "Page sections rendered as an error banner, by page, section and error kind",
			ConstLabels: m.customLabels,
		},
		[]string{"page", "section", "kind"},
	)

	m.exports = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "exports_total",
			Help:        "Number of CSV exports served by table",
			ConstLabels: m.customLabels,
		},
		[]string{"table"},
	)

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "active_sessions",
		Help:        "Number of browser sessions held in memory",
		ConstLabels: m.customLabels,
	})
}

// RecordUpstreamRequest records one call to the transactions API.
func RecordUpstreamRequest(endpoint, method, outcome string, latencyMs float64) {
	globalManager.upstreamRequests.WithLabelValues(endpoint, method, outcome).Inc()
	globalManager.upstreamLatency.WithLabelValues(endpoint, method).Observe(latencyMs)
}

// RecordHTTPRequest records a dashboard request.
func RecordHTTPRequest(page, method, statusCode string) {
	globalManager.pageRequests.WithLabelValues(page, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records dashboard request duration.
func RecordHTTPRequestDuration(page, method, statusCode string, duration float64) {
	globalManager.pageDuration.WithLabelValues(page, method, statusCode).Observe(duration)
}

// RecordSectionError counts a section that failed and showed a banner.
func RecordSectionError(page, section, kind string) {
	globalManager.sectionErrors.WithLabelValues(page, section, kind).Inc()
}

// RecordExport counts a served CSV export.
func RecordExport(table string) {
	globalManager.exports.WithLabelValues(table).Inc()
}

// UpdateActiveSessions sets the number of sessions in the store.
func UpdateActiveSessions(n int) {
	globalManager.activeSessions.Set(float64(n))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RegisterRuntimeCollectors adds the Go runtime and process collectors to the
// custom registry. Calling it more than once is harmless.
func RegisterRuntimeCollectors() {
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := customRegistry.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
		}
	}
}
