package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the prometheus registry and the counters the
// rest of the service layer reports into.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	importsTotal        *prometheus.CounterVec
	enrollmentOpsTotal  *prometheus.CounterVec
}

// NewMetricsService constructs MetricsService with its own registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &MetricsService{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and path.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		importsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_imports_total",
			Help: "Roster imports by kind and outcome.",
		}, []string{"kind", "outcome"}),
		enrollmentOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_operations_total",
			Help: "Enrollment mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	registry.MustRegister(s.httpRequestsTotal, s.httpRequestDuration, s.importsTotal, s.enrollmentOpsTotal)
	return s
}

// RecordHTTPRequest feeds the request counters from middleware.
func (s *MetricsService) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	s.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	s.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordImport counts one import attempt.
func (s *MetricsService) RecordImport(kind, outcome string) {
	s.importsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordEnrollmentOp counts one enrollment mutation.
func (s *MetricsService) RecordEnrollmentOp(operation, outcome string) {
	s.enrollmentOpsTotal.WithLabelValues(operation, outcome).Inc()
}

// Handler exposes the registry for the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
