package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadcheck/inspection-api/metrics"
	"golang.org/x/time/rate"
)

// NewLimiter builds the process-wide token bucket. A non-positive rps
// disables limiting.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// RateLimit rejects requests once the shared limiter runs dry. Callers are
// not queued.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.Allow() {
			c.Next()
			return
		}

		metrics.RateLimited.Inc()
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RATE_LIMITED",
				"message": "Too many requests, try again shortly",
			},
		})
	}
}
