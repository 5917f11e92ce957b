package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schoolworks/sis-api/internal/service"
)

// Metrics times every request and records it against the route template
// so path parameters don't explode label cardinality. Unmatched routes
// fall back to the raw path.
func Metrics(m *service.MetricsService) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		m.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
