package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(c *gin.Context) string

// ByClientIP buckets requests per client address.
func ByClientIP(c *gin.Context) string { return "ip:" + c.ClientIP() }

// ByProfile buckets authenticated requests per profile, falling back to the
// client address before Auth has run.
func ByProfile(c *gin.Context) string {
	if id := GetProfileID(c); id != uuid.Nil {
		return "profile:" + id.String()
	}
	return ByClientIP(c)
}

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// RateLimit provides token-bucket rate limiting per key.
// r = requests per second, b = burst size.
func RateLimit(r rate.Limit, b int, key KeyFunc) gin.HandlerFunc {
	limiters := &sync.Map{}

	// Cleanup goroutine: remove stale entries every 5 minutes.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-10 * time.Minute).UnixNano()
			limiters.Range(func(k, v interface{}) bool {
				if v.(*keyLimiter).lastSeen.Load() < cutoff {
					limiters.Delete(k)
				}
				return true
			})
		}
	}()

	getLimiter := func(k string) *rate.Limiter {
		v, _ := limiters.LoadOrStore(k, &keyLimiter{limiter: rate.NewLimiter(r, b)})
		kl := v.(*keyLimiter)
		kl.lastSeen.Store(time.Now().UnixNano())
		return kl.limiter
	}

	return func(c *gin.Context) {
		if !getLimiter(key(c)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
