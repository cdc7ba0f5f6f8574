package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL = 10 * time.Minute
	limiterSweepAt = 1024
)

type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiters hands out one token bucket per client IP. Once the map grows
// past limiterSweepAt entries, lookups sweep out entries idle longer than
// limiterIdleTTL, keeping memory bounded under IP churn.
type ipLimiters struct {
	mu      sync.Mutex
	rps     int
	entries map[string]*ipLimiterEntry
}

func newIPLimiters(rps int) *ipLimiters {
	return &ipLimiters{
		rps:     rps,
		entries: make(map[string]*ipLimiterEntry),
	}
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if len(l.entries) >= limiterSweepAt {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(l.entries, k)
			}
		}
	}

	e, ok := l.entries[ip]
	if !ok {
		e = &ipLimiterEntry{limiter: rate.NewLimiter(rate.Limit(l.rps), l.rps)}
		l.entries[ip] = e
	}
	e.lastSeen = now
	return e.limiter
}

// PerIPRateLimit caps requests per client IP. Used on signup, where every
// request triggers an outbound email.
func PerIPRateLimit(rps int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiters := newIPLimiters(rps)
	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
