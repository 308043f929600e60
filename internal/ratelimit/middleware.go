package ratelimit

import (
	"net/http"

	"memorial-registry/internal/observability/metrics"
	"memorial-registry/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Middleware rejects requests over the limit with 429, keyed by client IP.
// A limiter error lets the request through and is logged.
func Middleware(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.FromGin(c).Error("rate gate unavailable", "err", err)
			c.Next()
			return
		}
		if !ok {
			metrics.RateLimitedTotal.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many submissions, try again later"})
			return
		}
		c.Next()
	}
}
