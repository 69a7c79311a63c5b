package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"landslide-monitor/metrics"
)

// Metrics records request counts and latency per route template, so
// /api/sensors/1 and /api/sensors/2 share a series.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
