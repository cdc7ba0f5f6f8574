package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func limitedRouter(rps int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/signup", PerIPRateLimit(rps), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func hitFrom(r *gin.Engine, addr string) int {
	req, _ := http.NewRequest(http.MethodPost, "/signup", nil)
	req.RemoteAddr = addr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestPerIPRateLimit_BlocksPastBurst(t *testing.T) {
	r := limitedRouter(1)

	assert.Equal(t, http.StatusOK, hitFrom(r, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, hitFrom(r, "10.0.0.1:1234"))
}

func TestPerIPRateLimit_BucketsAreIndependent(t *testing.T) {
	r := limitedRouter(1)

	assert.Equal(t, http.StatusOK, hitFrom(r, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, hitFrom(r, "10.0.0.1:1234"))
	// A different client still has its full budget.
	assert.Equal(t, http.StatusOK, hitFrom(r, "10.0.0.2:1234"))
}

func TestPerIPRateLimit_DisabledPassesThrough(t *testing.T) {
	r := limitedRouter(0)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hitFrom(r, "10.0.0.1:1234"))
	}
}

func TestIPLimiters_SweepsIdleEntries(t *testing.T) {
	l := newIPLimiters(1)
	for i := 0; i < limiterSweepAt; i++ {
		l.get(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	assert.Equal(t, limiterSweepAt, len(l.entries))

	// Age every entry past the idle window; the next lookup sweeps them.
	for _, e := range l.entries {
		e.lastSeen = time.Now().Add(-2 * limiterIdleTTL)
	}
	l.get("192.168.0.1")

	assert.Equal(t, 1, len(l.entries))
	assert.Contains(t, l.entries, "192.168.0.1")
}

func TestIPLimiters_SweepKeepsActiveEntries(t *testing.T) {
	l := newIPLimiters(1)
	for i := 0; i < limiterSweepAt; i++ {
		l.get(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}

	// Only half go idle; the rest must survive the sweep.
	stale := 0
	for _, e := range l.entries {
		if stale == limiterSweepAt/2 {
			break
		}
		e.lastSeen = time.Now().Add(-2 * limiterIdleTTL)
		stale++
	}
	l.get("192.168.0.1")

	assert.Equal(t, limiterSweepAt-stale+1, len(l.entries))
}
