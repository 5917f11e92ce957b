package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/schoolworks/sis-api/internal/models"
)

// MetricsService owns the Prometheus registry. It also keeps atomic
// aggregates so the admin snapshot endpoint can answer without scraping
// the registry.
type MetricsService struct {
	handler http.Handler

	httpDuration *prometheus.HistogramVec
	httpTotal    *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	cacheLookupD prometheus.Observer
	cacheWriteD  prometheus.Observer

	hits        atomic.Uint64
	misses      atomic.Uint64
	requests    atomic.Uint64
	requestNano atomic.Uint64
}

// NewMetricsService builds a private registry with the service collectors
// plus a goroutine gauge.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route template.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route template.",
		}, []string{"method", "path", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Dashboard cache lookups by result.",
		}, []string{"result"}),
	}

	cacheLookupD := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_lookup_duration_seconds",
		Help:    "Dashboard cache read latency.",
		Buckets: prometheus.DefBuckets,
	})
	cacheWriteD := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_duration_seconds",
		Help:    "Dashboard cache write latency.",
		Buckets: prometheus.DefBuckets,
	})
	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Current goroutine count.",
	}, func() float64 { return float64(runtime.NumGoroutine()) })

	m.cacheLookupD = cacheLookupD
	m.cacheWriteD = cacheWriteD

	registry := prometheus.NewRegistry()
	registry.MustRegister(m.httpDuration, m.httpTotal, m.cacheLookups, cacheLookupD, cacheWriteD, goroutines)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the Prometheus exposition format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one completed request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.httpTotal.WithLabelValues(method, path, code).Inc()
	m.requests.Add(1)
	m.requestNano.Add(uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records one cache lookup and its outcome.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLookupD.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		m.hits.Add(1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		m.misses.Add(1)
	}
}

// ObserveCacheWrite records one cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWriteD.Observe(duration.Seconds())
}

// Snapshot reports the aggregate counters for the admin endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}

	hits := m.hits.Load()
	misses := m.misses.Load()
	requests := m.requests.Load()

	snap := models.SystemMetrics{
		CacheHits:     hits,
		CacheMisses:   misses,
		RequestsTotal: requests,
		Goroutines:    runtime.NumGoroutine(),
		GeneratedAt:   time.Now().UTC(),
	}
	if lookups := hits + misses; lookups > 0 {
		snap.CacheHitRatio = float64(hits) / float64(lookups)
	}
	if requests > 0 {
		snap.AverageRequestDurationMs = float64(m.requestNano.Load()) / float64(requests) / float64(time.Millisecond)
	}
	return snap
}
