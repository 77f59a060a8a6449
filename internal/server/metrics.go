package server

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry so several servers can live in
// one process (tests) without duplicate registration panics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	activeConnections   prometheus.Gauge

	graphqlOperations *prometheus.CounterVec
	graphqlDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors for a service. activeSubscriptions is
// sampled on every scrape.
func NewMetrics(serviceName string, activeSubscriptions func() int) *Metrics {
	prefix := strings.ReplaceAll(serviceName, "-", "_")

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		activeConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: prefix + "_active_connections",
				Help: "Number of active connections",
			},
		),
		graphqlOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_graphql_operations_total",
				Help: "Total GraphQL responses by operation",
			},
			[]string{"operation", "type", "status"},
		),
		graphqlDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_graphql_operation_duration_seconds",
				Help:    "GraphQL operation duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "type"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.activeConnections,
		m.graphqlOperations,
		m.graphqlDuration,
	)

	if activeSubscriptions != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: prefix + "_subscriptions_active",
				Help: "Active postAdded subscribers",
			},
			func() float64 { return float64(activeSubscriptions()) },
		))
	}

	return m
}

// Middleware returns middleware that collects HTTP metrics
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.activeConnections.Inc()
		defer m.activeConnections.Dec()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// AroundOperations records one observation per GraphQL response. A
// subscription produces one per delivered event.
func (m *Metrics) AroundOperations(ctx context.Context, next graphql.OperationHandler) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)
	name := opCtx.OperationName
	if name == "" {
		name = "anonymous"
	}
	opType := "unknown"
	if opCtx.Operation != nil {
		opType = string(opCtx.Operation.Operation)
	}

	start := time.Now()
	responses := next(ctx)

	return func(ctx context.Context) *graphql.Response {
		resp := responses(ctx)
		if resp == nil {
			return nil
		}

		status := "success"
		if len(resp.Errors) > 0 {
			status = "error"
		}
		m.graphqlOperations.WithLabelValues(name, opType, status).Inc()
		m.graphqlDuration.WithLabelValues(name, opType).Observe(time.Since(start).Seconds())
		return resp
	}
}
