package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"steam-bff-backend/internal/cache"
)

// IPRateLimiter keeps one token bucket per client IP. A bucket unused for
// idleTTL is dropped; it would have refilled by then anyway as long as
// idleTTL is at least b/r.
type IPRateLimiter struct {
	mu      sync.Mutex
	buckets *cache.Cache[*rate.Limiter]
	r       rate.Limit
	b       int
}

// NewIPRateLimiter creates an IPRateLimiter refilling r tokens per second up to b.
func NewIPRateLimiter(r rate.Limit, b int, idleTTL time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		buckets: cache.NewSweeping[*rate.Limiter]("ip-rate-limit", idleTTL, idleTTL),
		r:       r,
		b:       b,
	}
}

// Limiter returns the bucket for ip, creating it on first use. Every call
// pushes the bucket's idle deadline back.
func (l *IPRateLimiter) Limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.buckets.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(l.r, l.b)
	}
	l.buckets.Put(ip, limiter)
	return limiter
}

// Len reports how many client buckets exist.
func (l *IPRateLimiter) Len() int {
	return l.buckets.Len()
}

// RateLimiter rejects clients that exceed their bucket with 429 and a
// Retry-After hint.
func RateLimiter(limiter *IPRateLimiter) gin.HandlerFunc {
	retryAfter := "1"
	if limiter.r > 0 {
		retryAfter = strconv.Itoa(int(math.Ceil(1 / float64(limiter.r))))
	}

	return func(c *gin.Context) {
		if !limiter.Limiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
