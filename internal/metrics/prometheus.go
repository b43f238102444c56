package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// PrometheusSink implements Sink using Prometheus client library.
// All methods are non-blocking and fire-and-forget.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	logger zerolog.Logger

	// Preview service metrics
	operationsTotal    *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	executionsComputed prometheus.Counter

	// Cache metrics
	cacheLookupsTotal *prometheus.CounterVec
	cacheCircuitOpen  prometheus.Counter

	// HTTP metrics
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewPrometheusSink creates a new Prometheus metrics sink.
// If registration fails, it logs a warning and returns a functional sink.
func NewPrometheusSink(reg prometheus.Registerer, logger zerolog.Logger) *PrometheusSink {
	s := &PrometheusSink{logger: logger.With().Str("component", "metrics").Logger()}
	s.initPreviewMetrics(reg)
	s.initCacheMetrics(reg)
	s.initHTTPMetrics(reg)
	return s
}

func (s *PrometheusSink) initPreviewMetrics(reg prometheus.Registerer) {
	s.operationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cronpreview_operations_total",
		Help: "Total number of preview operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	s.operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cronpreview_operation_duration_seconds",
		Help:    "Duration of preview operations in seconds.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"operation"})

	s.executionsComputed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cronpreview_executions_computed_total",
		Help: "Total number of execution instants computed.",
	})

	s.register(reg, s.operationsTotal, "cronpreview_operations_total")
	s.register(reg, s.operationDuration, "cronpreview_operation_duration_seconds")
	s.register(reg, s.executionsComputed, "cronpreview_executions_computed_total")
}

func (s *PrometheusSink) initCacheMetrics(reg prometheus.Registerer) {
	s.cacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cronpreview_cache_lookups_total",
		Help: "Total number of preview cache lookups by result.",
	}, []string{"result"})

	s.cacheCircuitOpen = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cronpreview_cache_circuit_open_total",
		Help: "Total number of cache calls rejected by the open circuit breaker.",
	})

	s.register(reg, s.cacheLookupsTotal, "cronpreview_cache_lookups_total")
	s.register(reg, s.cacheCircuitOpen, "cronpreview_cache_circuit_open_total")
}

func (s *PrometheusSink) initHTTPMetrics(reg prometheus.Registerer) {
	s.httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cronpreview_http_requests_total",
		Help: "Total number of HTTP requests by route and status class.",
	}, []string{"route", "status_class"})

	s.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cronpreview_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"route"})

	s.register(reg, s.httpRequestsTotal, "cronpreview_http_requests_total")
	s.register(reg, s.httpDuration, "cronpreview_http_request_duration_seconds")
}

// register attempts to register a collector, logging any errors without propagating them.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		s.logger.Warn().Err(err).Str("metric", name).Msg("failed to register metric")
	}
}

// Preview service metrics implementation

func (s *PrometheusSink) OperationCompleted(operation string, outcome string, duration time.Duration) {
	s.operationsTotal.WithLabelValues(operation, outcome).Inc()
	s.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (s *PrometheusSink) ExecutionsComputed(count int) {
	s.executionsComputed.Add(float64(count))
}

// Cache metrics implementation

func (s *PrometheusSink) CacheLookup(result string) {
	s.cacheLookupsTotal.WithLabelValues(result).Inc()
}

func (s *PrometheusSink) CacheCircuitOpen() {
	s.cacheCircuitOpen.Inc()
}

// HTTP metrics implementation

func (s *PrometheusSink) HTTPRequestCompleted(route string, statusClass string, duration time.Duration) {
	s.httpRequestsTotal.WithLabelValues(route, statusClass).Inc()
	s.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}
