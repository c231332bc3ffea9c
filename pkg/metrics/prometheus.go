// Package metrics provides Prometheus metrics for the foodrank pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Run metrics
	runsTotal       prometheus.Counter
	runFailures     *prometheus.CounterVec
	runDuration     prometheus.Histogram
	lastSuccessUnix prometheus.Gauge

	// Fetch metrics
	recordsFetched prometheus.Gauge
	fetchRetries   prometheus.Counter

	// Publish metrics
	snapshotSize     prometheus.Gauge
	artifactsWritten prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "foodrank",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
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

	m.runsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of pipeline runs attempted",
	})

	m.runFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "run_failures_total",
			Help:      "Total number of failed pipeline runs by error kind",
		},
		[]string{"kind"},
	)

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Histogram of end-to-end pipeline run duration in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.lastSuccessUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful publish",
	})

	m.recordsFetched = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_fetched",
		Help:      "Number of candidate records returned by the last fetch",
	})

	m.fetchRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_retries_total",
		Help:      "Total number of fetch retry attempts",
	})

	m.snapshotSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_size",
		Help:      "Number of records in the last published snapshot",
	})

	m.artifactsWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "artifacts_written_total",
		Help:      "Total number of artifact files written",
	})
}

// RecordRun increments the total run counter.
func RecordRun() {
	globalManager.runsTotal.Inc()
}

// RecordRunFailure increments the failure counter for the given error kind.
func RecordRunFailure(kind string) {
	globalManager.runFailures.WithLabelValues(kind).Inc()
}

// ObserveRunDuration records the duration of a pipeline run in seconds.
func ObserveRunDuration(seconds float64) {
	globalManager.runDuration.Observe(seconds)
}

// SetLastSuccess records the unix timestamp of the last successful publish.
func SetLastSuccess(unix float64) {
	globalManager.lastSuccessUnix.Set(unix)
}

// SetRecordsFetched records the candidate count of the last fetch.
func SetRecordsFetched(count int) {
	globalManager.recordsFetched.Set(float64(count))
}

// RecordFetchRetry increments the fetch retry counter.
func RecordFetchRetry() {
	globalManager.fetchRetries.Inc()
}

// SetSnapshotSize records the size of the last published snapshot.
func SetSnapshotSize(size int) {
	globalManager.snapshotSize.Set(float64(size))
}

// RecordArtifactWritten increments the artifact counter.
func RecordArtifactWritten() {
	globalManager.artifactsWritten.Inc()
}

// Handler returns an HTTP handler serving the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
