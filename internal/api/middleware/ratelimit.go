package middleware

import (
	"sync"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keep the per-IP limiter map from growing without bound
const maxTrackedIPs = 10000

// limiterCache holds one token bucket per client IP, with double-check
// locking on the slow path.
type limiterCache struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache(rps float64, burst int) *limiterCache {
	return &limiterCache{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (lc *limiterCache) get(key string) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	if len(lc.limiters) > maxTrackedIPs {
		lc.limiters = make(map[string]*rate.Limiter)
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// LoginRateLimit limits requests per client IP on the routes it wraps.
// Disabled limits pass everything through.
func LoginRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	rps := float64(cfg.RequestsPerMinute) / 60
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.RequestsPerMinute
	}
	cache := newLimiterCache(rps, burst)

	return func(c *gin.Context) {
		if !cache.get(RequestIP(c)).Allow() {
			c.JSON(429, gin.H{"error": "Too many requests. Please slow down."})
			c.Abort()
			return
		}
		c.Next()
	}
}
