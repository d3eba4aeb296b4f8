// Package metrics exposes Prometheus collectors for sweeps and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors and the registry they live in
type Metrics struct {
	registry *prometheus.Registry

	sweepItems    *prometheus.CounterVec
	sweepRuns     *prometheus.CounterVec
	sweepDuration *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sweepItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arrendamientos",
			Subsystem: "sweep",
			Name:      "items_total",
			Help:      "Items handled by batch sweeps, by outcome.",
		}, []string{"job", "outcome"}),
		sweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arrendamientos",
			Subsystem: "sweep",
			Name:      "runs_total",
			Help:      "Completed batch sweep runs.",
		}, []string{"job"}),
		sweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "arrendamientos",
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Batch sweep wall time.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"job"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arrendamientos",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "arrendamientos",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.sweepItems,
		m.sweepRuns,
		m.sweepDuration,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSweep records the outcome of one sweep run
func (m *Metrics) ObserveSweep(job string, processed, succeeded, failed, skipped int, elapsed time.Duration) {
	m.sweepRuns.WithLabelValues(job).Inc()
	m.sweepItems.WithLabelValues(job, "succeeded").Add(float64(succeeded))
	m.sweepItems.WithLabelValues(job, "failed").Add(float64(failed))
	m.sweepItems.WithLabelValues(job, "skipped").Add(float64(skipped))
	m.sweepDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware counts requests by matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
