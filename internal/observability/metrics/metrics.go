package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_search_queries_total",
			Help: "Text queries evaluated, by effective mode.",
		},
		[]string{"mode"},
	)

	SearchFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_search_fallbacks_total",
			Help: "Ranked queries degraded to substring matching.",
		},
	)

	ReindexFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_reindex_failures_total",
			Help: "Search document updates that failed after a committed write.",
		},
	)

	AuditWriteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_audit_write_failures_total",
			Help: "Audit entries that could not be written after a committed mutation.",
		},
		[]string{"action", "target"},
	)

	MutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_mutations_total",
			Help: "Committed mutations by action and target model.",
		},
		[]string{"action", "target"},
	)

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_submissions_total",
			Help: "Public submissions by result.",
		},
		[]string{"result"},
	)

	ReviewsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_reviews_total",
			Help: "Submission review outcomes.",
		},
		[]string{"decision", "outcome"},
	)

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_rate_limited_total",
			Help: "Requests rejected by the submission rate gate.",
		},
	)
)

// MustRegister registers every collector on the default registry with a
// constant service label.
func MustRegister(serviceName string) {
	reg := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, prometheus.DefaultRegisterer)
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		SearchQueriesTotal,
		SearchFallbacksTotal,
		ReindexFailuresTotal,
		AuditWriteFailuresTotal,
		MutationsTotal,
		SubmissionsTotal,
		ReviewsTotal,
		RateLimitedTotal,
	)
}

// Middleware records request counts and latency keyed by the route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDurationSeconds.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
