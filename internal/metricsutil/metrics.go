// Package metricsutil registers and exposes the Prometheus metrics
// named in spec.md §6.5, and adapts them to the narrower interfaces
// internal/cache and internal/httpserver depend on, so internal/cache
// does not import client_golang and internal/httpserver imports only
// what it needs to serve /metrics.
package metricsutil

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// histogramBuckets spans roughly 100us to 10s across 15 buckets, per
// spec.md §6.5.
var histogramBuckets = prometheus.ExponentialBucketsRange(0.0001, 10, 15)

// Metrics owns every Prometheus collector this server exposes.
type Metrics struct {
	registry *prometheus.Registry

	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions *prometheus.CounterVec
	cacheEntries   prometheus.Gauge
	cacheOpSeconds *prometheus.HistogramVec

	httpRequests    *prometheus.CounterVec
	httpReqDuration *prometheus.HistogramVec
}

// New registers every collector against a fresh registry and returns
// the Metrics handle.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vortex_cache_hits_total",
			Help: "Total number of cache lookups that found a live entry.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vortex_cache_misses_total",
			Help: "Total number of cache lookups that found no live entry.",
		}),
		cacheEvictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vortex_cache_evictions_total",
			Help: "Total number of cache entries evicted, by reason.",
		}, []string{"reason"}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vortex_cache_entries",
			Help: "Approximate number of entries currently in the cache.",
		}),
		cacheOpSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vortex_cache_operation_seconds",
			Help:    "Duration of cache operations, by operation.",
			Buckets: histogramBuckets,
		}, []string{"operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vortex_http_requests_total",
			Help: "Total number of HTTP requests served, by method, path, and status.",
		}, []string{"method", "path", "status"}),
		httpReqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vortex_http_request_duration_seconds",
			Help:    "Duration of HTTP requests, by method and path.",
			Buckets: histogramBuckets,
		}, []string{"method", "path"}),
	}

	m.registry.MustRegister(
		m.cacheHits, m.cacheMisses, m.cacheEvictions, m.cacheEntries, m.cacheOpSeconds,
		m.httpRequests, m.httpReqDuration,
	)
	return m
}

// Registry exposes the underlying registry for /metrics exposition.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// CacheRecorder returns the narrow interface internal/cache.Cache
// expects, so that package never imports client_golang.
func (m *Metrics) CacheRecorder() *CacheRecorder { return &CacheRecorder{m: m} }

// CacheRecorder adapts Metrics to cache.MetricsRecorder.
type CacheRecorder struct{ m *Metrics }

func (r *CacheRecorder) RecordHit()  { r.m.cacheHits.Inc() }
func (r *CacheRecorder) RecordMiss() { r.m.cacheMisses.Inc() }
func (r *CacheRecorder) RecordEviction(reason string) {
	r.m.cacheEvictions.WithLabelValues(reason).Inc()
}
func (r *CacheRecorder) RecordOperationDuration(op string, d time.Duration) {
	r.m.cacheOpSeconds.WithLabelValues(op).Observe(d.Seconds())
}
func (r *CacheRecorder) UpdateEntryCount(n int) { r.m.cacheEntries.Set(float64(n)) }

// RecordHTTPRequest increments the request counter and observes its
// duration, for middleware.go to call once per handled request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, d time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpReqDuration.WithLabelValues(method, path).Observe(d.Seconds())
}
