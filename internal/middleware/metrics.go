package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/metrics"
)

// Metrics records request counts and latency, labelled by route pattern
// so path parameters don't explode cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.
			WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Inc()
		metrics.RequestLatency.
			WithLabelValues(route, c.Request.Method).
			Observe(time.Since(start).Seconds())
	}
}
