// Package metrics exposes workflow counters in the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	ShootTransitions *prometheus.CounterVec
	FileTransitions  *prometheus.CounterVec
	BlobOps          *prometheus.CounterVec
	BlobLatency      *prometheus.HistogramVec
	HTTPRequests     *prometheus.CounterVec
}

// New registers the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ShootTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shoot_workflow_transitions_total",
			Help: "Shoot workflow status transitions.",
		}, []string{"from", "to", "override"}),
		FileTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shoot_file_stage_transitions_total",
			Help: "File lifecycle stage transitions.",
		}, []string{"from", "to"}),
		BlobOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blob_operations_total",
			Help: "Blob store calls by provider, operation and outcome.",
		}, []string{"provider", "op", "outcome"}),
		BlobLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blob_operation_duration_seconds",
			Help:    "Blob store call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "op"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ShootTransitions,
		m.FileTransitions,
		m.BlobOps,
		m.BlobLatency,
		m.HTTPRequests,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveShootTransition(from, to string, override bool) {
	if m == nil {
		return
	}
	m.ShootTransitions.WithLabelValues(from, to, strconv.FormatBool(override)).Inc()
}

func (m *Metrics) ObserveFileTransition(from, to string) {
	if m == nil {
		return
	}
	m.FileTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ObserveBlobOp(provider, op string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.BlobOps.WithLabelValues(provider, op, outcome).Inc()
	m.BlobLatency.WithLabelValues(provider, op).Observe(time.Since(start).Seconds())
}

// GinMiddleware counts requests by matched route pattern.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
