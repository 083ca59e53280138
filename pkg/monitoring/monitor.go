package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 进度引擎指标
	InteractionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_interactions_total",
			Help: "Total number of recorded learning interactions",
		},
		[]string{"content_type", "result"},
	)

	XPAwardedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_xp_awarded_total",
			Help: "Total XP awarded across all users",
		},
	)

	ConflictRetryCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_conflict_retries_total",
			Help: "Optimistic write conflicts retried by the coordinator",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(InteractionCounter)
	prometheus.MustRegister(XPAwardedCounter)
	prometheus.MustRegister(ConflictRetryCounter)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
