package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// upstream document registry client.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	registryDuration *prometheus.HistogramVec
	registryErrors   *prometheus.CounterVec
	overlayOps       *prometheus.CounterVec
	provisionalGauge prometheus.Gauge
	resyncRetryTotal prometheus.Counter
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	registryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "registry_request_duration_seconds",
		Help:    "Duration of document registry calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	registryErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_errors_total",
		Help: "Document registry call failures by error code",
	}, []string{"code"})

	overlayOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "review_overlay_operations_total",
		Help: "Review overlay reads, writes and discards",
	}, []string{"operation"})

	provisionalGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "review_overlay_provisional",
		Help: "Provisional reviews awaiting registry confirmation",
	})

	resyncRetryTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "review_resync_retries_total",
		Help: "Review resync jobs that required a retry",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, registryDuration, registryErrors,
		overlayOps, provisionalGauge, resyncRetryTotal, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		registryDuration: registryDuration,
		registryErrors:   registryErrors,
		overlayOps:       overlayOps,
		provisionalGauge: provisionalGauge,
		resyncRetryTotal: resyncRetryTotal,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveRegistryCall records a document registry round trip.
func (m *MetricsService) ObserveRegistryCall(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.registryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRegistryError counts a failed registry call by error code.
func (m *MetricsService) RecordRegistryError(code string) {
	if m == nil {
		return
	}
	m.registryErrors.WithLabelValues(code).Inc()
}

// RecordOverlayOperation counts overlay store activity.
func (m *MetricsService) RecordOverlayOperation(operation string) {
	if m == nil {
		return
	}
	m.overlayOps.WithLabelValues(operation).Inc()
}

// ProvisionalReviewOpened tracks a newly synthesized provisional review.
func (m *MetricsService) ProvisionalReviewOpened() {
	if m == nil {
		return
	}
	m.provisionalGauge.Inc()
}

// ProvisionalReviewClosed tracks a provisional review replaced by the
// registry's stored record.
func (m *MetricsService) ProvisionalReviewClosed() {
	if m == nil {
		return
	}
	m.provisionalGauge.Dec()
}

// RecordResyncRetry counts a resync job retry.
func (m *MetricsService) RecordResyncRetry() {
	if m == nil {
		return
	}
	m.resyncRetryTotal.Inc()
}

// RecordCacheOperation records listings cache hit/miss.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
