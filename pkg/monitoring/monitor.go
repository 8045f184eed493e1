package monitoring

import (
	"strconv"
	"sync"
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
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	EnrollmentCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edunest_enrollments_total",
			Help: "Total number of course enrollments",
		},
	)

	ProgressUpdateCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edunest_progress_updates_total",
			Help: "Lecture progress updates, labelled by whether the course became complete",
		},
		[]string{"course_completed"},
	)

	UploadCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edunest_uploads_total",
			Help: "File uploads by kind and result",
		},
		[]string{"kind", "result"},
	)

	WSClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "edunest_ws_clients",
			Help: "Currently connected websocket clients",
		},
	)

	MessageCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edunest_ws_messages_total",
			Help: "Realtime messages by type and direction",
		},
		[]string{"type", "direction"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(EnrollmentCounter)
		prometheus.MustRegister(ProgressUpdateCounter)
		prometheus.MustRegister(UploadCounter)
		prometheus.MustRegister(WSClients)
		prometheus.MustRegister(MessageCounter)
	})
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
