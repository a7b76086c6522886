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
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	EnrollmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enrollments_total",
			Help: "Number of enrollments created",
		},
	)

	ExamSubmissionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "exam_submissions_total",
			Help: "Number of exam submissions recorded",
		},
	)

	ExamResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_results_total",
			Help: "Graded exam results by outcome",
		},
		[]string{"passed"},
	)

	EnrollmentCounterDrift = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enrollment_counter_drift_total",
			Help: "Courses whose total_enrollment was corrected by the reconciler",
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(EnrollmentsTotal)
		prometheus.MustRegister(ExamSubmissionsTotal)
		prometheus.MustRegister(ExamResultsTotal)
		prometheus.MustRegister(EnrollmentCounterDrift)
	})
}

// ObserveExamResult 记录一次评分结果
func ObserveExamResult(passed bool) {
	ExamResultsTotal.WithLabelValues(strconv.FormatBool(passed)).Inc()
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
