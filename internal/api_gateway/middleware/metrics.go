package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wallet-ledger/internal/platform/metrics"
)

// Metrics records request latency per route template, so /accounts/:id is
// one series rather than one per account. Unmatched routes are grouped.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
