package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stockify/internal/observability/metrics"
)

func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDurationSeconds.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
