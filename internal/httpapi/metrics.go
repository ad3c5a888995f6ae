package httpapi

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics owns its registry so several handlers can live in one process.
type metrics struct {
	registry        *prometheus.Registry
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	messageCount    *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "requests_total",
				Help: "How many HTTP requests processed, partitioned by status code and HTTP method.",
			},
			[]string{"code", "method", "url"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "request_duration_seconds",
				Help: "The HTTP request latencies in seconds.",
			},
			[]string{"code", "method", "url"},
		),
		messageCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_messages_total",
				Help: "Free-text messages handled, partitioned by recognised intent.",
			},
			[]string{"intent"},
		),
	}
	m.registry.MustRegister(m.requestCount, m.requestDuration, m.messageCount)
	return m
}

func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// The route template keeps label cardinality bounded.
		url := c.FullPath()
		if url == "" {
			url = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		elapsed := time.Since(start).Seconds()

		m.requestDuration.WithLabelValues(status, c.Request.Method, url).Observe(elapsed)
		m.requestCount.WithLabelValues(status, c.Request.Method, url).Inc()
	}
}

func (m *metrics) handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
