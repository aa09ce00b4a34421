package infrastructure

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the dashboard service.
// One instance is created at startup and shared through the service container;
// every collector is registered on a private registry so tests can create
// isolated instances without double-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpActiveRequests  prometheus.Gauge

	// Dataset metrics
	datasetReloadsTotal *prometheus.CounterVec
	datasetRows         *prometheus.GaugeVec

	// Enrichment metrics
	enrichmentDuration    prometheus.Histogram
	enrichmentCacheHits   prometheus.Counter
	enrichmentCacheMisses prometheus.Counter

	// Export metrics
	exportsTotal *prometheus.CounterVec

	// WebSocket metrics
	websocketConnections prometheus.Gauge
	websocketMessages    prometheus.Counter
}

// NewMetrics creates the collector set on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served",
		}, []string{"method", "path", "status"}),

		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),

		httpActiveRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of in-flight HTTP requests",
		}),

		datasetReloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dataset_reloads_total",
			Help: "Dataset reloads by source and outcome",
		}, []string{"source", "outcome"}),

		datasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dataset_rows",
			Help: "Row count of the active snapshot per collection",
		}, []string{"collection"}),

		enrichmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "enrichment_duration_seconds",
			Help:    "Time spent enriching a raw dataset",
			Buckets: prometheus.DefBuckets,
		}),

		enrichmentCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "enrichment_cache_hits_total",
			Help: "Enrichment results served from the content-hash cache",
		}),

		enrichmentCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "enrichment_cache_misses_total",
			Help: "Enrichment runs that could not be served from cache",
		}),

		exportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Generated exports by format and outcome",
		}, []string{"format", "outcome"}),

		websocketConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "websocket_active_connections",
			Help: "Connected dashboard clients",
		}),

		websocketMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Messages broadcast to dashboard clients",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpActiveRequests,
		m.datasetReloadsTotal,
		m.datasetRows,
		m.enrichmentDuration,
		m.enrichmentCacheHits,
		m.enrichmentCacheMisses,
		m.exportsTotal,
		m.websocketConnections,
		m.websocketMessages,
	)

	return m
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one served HTTP request. The path should be the
// route pattern, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RequestStarted marks a request in flight.
func (m *Metrics) RequestStarted() {
	m.httpActiveRequests.Inc()
}

// RequestFinished marks a request completed.
func (m *Metrics) RequestFinished() {
	m.httpActiveRequests.Dec()
}

// RecordReload records a dataset reload attempt.
// Source is "upload" or "bundled"; outcome is "success" or "failure".
func (m *Metrics) RecordReload(source, outcome string) {
	m.datasetReloadsTotal.WithLabelValues(source, outcome).Inc()
}

// SetDatasetRows publishes the active snapshot's row count for a collection.
func (m *Metrics) SetDatasetRows(collection string, rows int) {
	m.datasetRows.WithLabelValues(collection).Set(float64(rows))
}

// ObserveEnrichment records the duration of an enrichment run.
func (m *Metrics) ObserveEnrichment(duration time.Duration) {
	m.enrichmentDuration.Observe(duration.Seconds())
}

// RecordEnrichmentCacheHit counts an enrichment served from cache.
func (m *Metrics) RecordEnrichmentCacheHit() {
	m.enrichmentCacheHits.Inc()
}

// RecordEnrichmentCacheMiss counts an enrichment that had to run.
func (m *Metrics) RecordEnrichmentCacheMiss() {
	m.enrichmentCacheMisses.Inc()
}

// RecordExport records a generated export.
// Format is "csv", "xlsx" or "png"; outcome is "success" or "failure".
func (m *Metrics) RecordExport(format, outcome string) {
	m.exportsTotal.WithLabelValues(format, outcome).Inc()
}

// ClientConnected tracks a new WebSocket client.
func (m *Metrics) ClientConnected() {
	m.websocketConnections.Inc()
}

// ClientDisconnected tracks a departed WebSocket client.
func (m *Metrics) ClientDisconnected() {
	m.websocketConnections.Dec()
}

// RecordBroadcast counts messages fanned out to clients.
func (m *Metrics) RecordBroadcast(clients int) {
	m.websocketMessages.Add(float64(clients))
}

// RuntimeStats is a point-in-time snapshot of process health counters,
// surfaced by the health endpoint alongside snapshot statistics.
type RuntimeStats struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB uint64  `json:"memory_alloc_mb"`
	MemorySysMB   uint64  `json:"memory_sys_mb"`
	GCCount       uint32  `json:"gc_count"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// CollectRuntimeStats reads the current runtime counters.
func CollectRuntimeStats(startTime time.Time) RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		Goroutines:    runtime.NumGoroutine(),
		MemoryAllocMB: memStats.Alloc / 1024 / 1024,
		MemorySysMB:   memStats.Sys / 1024 / 1024,
		GCCount:       memStats.NumGC,
		UptimeSeconds: time.Since(startTime).Seconds(),
	}
}
