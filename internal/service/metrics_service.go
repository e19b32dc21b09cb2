package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the portal.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	overrides       *prometheus.CounterVec
	sessionsCleared *prometheus.CounterVec
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

	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Duration of calls to the REST backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "resource", "status"})

	overrides := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_override_total",
		Help: "Assignment fields kept locally or patched from the local override store",
	}, []string{"field", "action"})

	sessionsCleared := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_cleared_total",
		Help: "Sessions cleared by the portal, by reason",
	}, []string{"reason"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, backendDuration, overrides, sessionsCleared, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		backendDuration: backendDuration,
		overrides:       overrides,
		sessionsCleared: sessionsCleared,
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

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records inbound request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveBackendCall records one call to the REST backend. Status 0 means the call never got a
// response.
func (m *MetricsService) ObserveBackendCall(method, resource string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.backendDuration.WithLabelValues(method, resource, strconv.Itoa(status)).Observe(duration.Seconds())
}

// ObserveOverride counts override store activity.
func (m *MetricsService) ObserveOverride(field, action string) {
	if m == nil {
		return
	}
	m.overrides.WithLabelValues(field, action).Inc()
}

// ObserveSessionCleared counts sessions dropped by the portal.
func (m *MetricsService) ObserveSessionCleared(reason string) {
	if m == nil {
		return
	}
	m.sessionsCleared.WithLabelValues(reason).Inc()
}
