package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ItemSavesTotal      *prometheus.CounterVec
	LoginAttemptsTotal  *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg under prefix. A nil reg uses a private
// registry.
func New(prefix string, reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		ItemSavesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_item_saves_total",
				Help: "Total number of stock grid row saves by result",
			},
			[]string{"result"},
		),
		LoginAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_login_attempts_total",
				Help: "Total number of admin login attempts by result",
			},
			[]string{"result"},
		),
		gatherer: reg,
	}
}

// ObserveSave counts a row save by result.
func (m *Metrics) ObserveSave(result string) {
	m.ItemSavesTotal.WithLabelValues(result).Inc()
}

// ObserveLogin counts a login attempt by result.
func (m *Metrics) ObserveLogin(result string) {
	m.LoginAttemptsTotal.WithLabelValues(result).Inc()
}

// Middleware records request count and duration per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
