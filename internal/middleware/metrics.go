package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/authflow/pkg/metrics"
)

// unmatchedRoute labels requests that hit no route, keeping path cardinality bounded.
const unmatchedRoute = "unmatched"

// Metrics records latency per route template and counts requests per surface.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()

		metrics.APILatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		metrics.HTTPRequests.
			WithLabelValues(surfaceOf(c.Request.URL.Path), strconv.Itoa(status/100)+"xx").
			Inc()
	}
}

func surfaceOf(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/health"), strings.HasPrefix(path, "/health"), path == "/metrics":
		return "probe"
	case strings.HasPrefix(path, "/api/"):
		return "api"
	case strings.HasPrefix(path, "/static/"):
		return "static"
	default:
		return "page"
	}
}
