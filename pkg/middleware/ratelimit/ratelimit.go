package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// PerClient returns a middleware applying a token bucket per client IP.
// Idle buckets are evicted after idleTTL.
func PerClient(limit rate.Limit, burst int, idleTTL time.Duration) gin.HandlerFunc {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	buckets := gocache.New(idleTTL, idleTTL)
	retryAfter := strconv.Itoa(int(time.Duration(float64(time.Second) / float64(limit)).Seconds()) + 1)

	return func(c *gin.Context) {
		key := c.ClientIP()
		v, ok := buckets.Get(key)
		if !ok {
			v = rate.NewLimiter(limit, burst)
		}
		limiter := v.(*rate.Limiter)
		// touching the entry keeps active clients from being evicted
		buckets.Set(key, limiter, gocache.DefaultExpiration)

		if !limiter.Allow() {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests, please slow down",
				"code":    "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
