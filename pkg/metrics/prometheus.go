// Package metrics provides Prometheus metrics for the pulseboard dashboard client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the dashboard client.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Refresh cycle metrics
	cyclesStarted  prometheus.Counter
	cyclesInFlight prometheus.Gauge
	cycleDuration  prometheus.Histogram
	cyclePanics    prometheus.Counter

	// Backend request metrics
	backendRequests        *prometheus.CounterVec
	backendRequestDuration *prometheus.HistogramVec
	backendErrors          *prometheus.CounterVec

	// Display metrics
	sliceUpdates  *prometheus.CounterVec
	sliceSkips    *prometheus.CounterVec
	chartRebuilds *prometheus.CounterVec
	liveCharts    *prometheus.GaugeVec

	// Session metrics
	sessionInvalidations prometheus.Counter

	// Page server metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "pulseboard",
		subsystem:        "dashboard",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of metric definitions
	auto := promauto.With(m.registry)

	m.cyclesStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_cycles_total",
		Help:      "Total number of refresh cycles started",
	})

	m.cyclesInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_cycles_in_flight",
		Help:      "Refresh cycles currently running (above 1 means cycles overlap)",
	})

	m.cycleDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_cycle_duration_milliseconds",
		Help:      "Duration of a full refresh cycle in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.cyclePanics = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_cycle_panics_total",
		Help:      "Refresh cycles aborted by an unexpected panic",
	})

	m.backendRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "backend_requests_total",
			Help:      "Total number of backend requests by endpoint, method and status code",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.backendRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "backend_request_duration_milliseconds",
			Help:      "Backend request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method"},
	)

	m.backendErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "backend_errors_total",
			Help:      "Backend request failures by endpoint and error type",
		},
		[]string{"endpoint", "error_type"},
	)

	m.sliceUpdates = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "slice_updates_total",
			Help:      "Display slices updated with a fresh snapshot",
		},
		[]string{"slice"},
	)

	m.sliceSkips = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "slice_skips_total",
			Help:      "Display slices left unchanged because no snapshot was available",
		},
		[]string{"slice"},
	)

	m.chartRebuilds = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "chart_rebuilds_total",
			Help:      "Chart instances rebuilt from scratch",
		},
		[]string{"chart"},
	)

	m.liveCharts = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "live_charts",
			Help:      "Live chart instances per chart slot",
		},
		[]string{"chart"},
	)

	m.sessionInvalidations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_invalidations_total",
		Help:      "Sessions cleared after an unauthorized response or logout",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of page server requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "Page server request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// CycleStarted increments the started counter and the in-flight gauge.
func (m *Manager) CycleStarted() {
	if !m.enabled {
		return
	}
	m.cyclesStarted.Inc()
	m.cyclesInFlight.Inc()
}

// CycleFinished decrements the in-flight gauge and records the duration.
func (m *Manager) CycleFinished(durationMs float64) {
	if !m.enabled {
		return
	}
	m.cyclesInFlight.Dec()
	m.cycleDuration.Observe(durationMs)
}

// CyclePanicked counts a cycle aborted by a panic.
func (m *Manager) CyclePanicked() {
	if m.enabled {
		m.cyclePanics.Inc()
	}
}

// BackendRequest records one backend round trip.
func (m *Manager) BackendRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.backendRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.backendRequestDuration.WithLabelValues(endpoint, method).Observe(durationMs)
}

// BackendError counts a failed backend request.
func (m *Manager) BackendError(endpoint, errorType string) {
	if m.enabled {
		m.backendErrors.WithLabelValues(endpoint, errorType).Inc()
	}
}

// SliceUpdated counts an applied snapshot.
func (m *Manager) SliceUpdated(slice string) {
	if m.enabled {
		m.sliceUpdates.WithLabelValues(slice).Inc()
	}
}

// SliceSkipped counts a slice left untouched.
func (m *Manager) SliceSkipped(slice string) {
	if m.enabled {
		m.sliceSkips.WithLabelValues(slice).Inc()
	}
}

// ChartRebuilt counts a chart rebuild and sets the live instance count.
func (m *Manager) ChartRebuilt(chart string, live int) {
	if !m.enabled {
		return
	}
	m.chartRebuilds.WithLabelValues(chart).Inc()
	m.liveCharts.WithLabelValues(chart).Set(float64(live))
}

// SessionInvalidated counts a cleared session.
func (m *Manager) SessionInvalidated() {
	if m.enabled {
		m.sessionInvalidations.Inc()
	}
}

// HTTPRequest records one page server request.
func (m *Manager) HTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystem sets memory and goroutine gauges.
func (m *Manager) UpdateSystem(memBytes uint64, goroutines int) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
}

// Global helpers delegating to the default manager.

// RecordCycleStarted records the start of a refresh cycle.
func RecordCycleStarted() { globalManager.CycleStarted() }

// RecordCycleFinished records the end of a refresh cycle.
func RecordCycleFinished(durationMs float64) { globalManager.CycleFinished(durationMs) }

// RecordCyclePanic records a panicking refresh cycle.
func RecordCyclePanic() { globalManager.CyclePanicked() }

// RecordBackendRequest records a backend round trip.
func RecordBackendRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.BackendRequest(endpoint, method, statusCode, durationMs)
}

// RecordBackendError records a failed backend request.
func RecordBackendError(endpoint, errorType string) { globalManager.BackendError(endpoint, errorType) }

// RecordSliceUpdated records an applied snapshot.
func RecordSliceUpdated(slice string) { globalManager.SliceUpdated(slice) }

// RecordSliceSkipped records a skipped slice.
func RecordSliceSkipped(slice string) { globalManager.SliceSkipped(slice) }

// RecordChartRebuilt records a chart rebuild.
func RecordChartRebuilt(chart string, live int) { globalManager.ChartRebuilt(chart, live) }

// RecordSessionInvalidated records a cleared session.
func RecordSessionInvalidated() { globalManager.SessionInvalidated() }

// RecordHTTPRequest records a page server request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.HTTPRequest(endpoint, method, statusCode, durationMs)
}

// UpdateSystemMetrics sets the system gauges.
func UpdateSystemMetrics(memBytes uint64, goroutines int) {
	globalManager.UpdateSystem(memBytes, goroutines)
}

// GetRegistry returns the custom registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
