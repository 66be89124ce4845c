package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/authflow/pkg/errors"
	"github.com/charlesng35/authflow/pkg/logger"
)

// RateLimitOptions configure RateLimit.
type RateLimitOptions struct {
	Store    RateStore
	Requests int
	Window   time.Duration
	// Methods restricts limiting to the listed methods. Empty means every method.
	Methods []string
	Render  ErrorRenderer
}

// RateLimit limits requests per (client IP, route) within a fixed window.
// Store failures let the request through.
func RateLimit(opts RateLimitOptions) gin.HandlerFunc {
	render := renderOrJSON(opts.Render)
	methods := make(map[string]struct{}, len(opts.Methods))
	for _, m := range opts.Methods {
		methods[m] = struct{}{}
	}

	return func(c *gin.Context) {
		if opts.Store == nil || opts.Requests <= 0 || opts.Window <= 0 {
			c.Next()
			return
		}
		if len(methods) > 0 {
			if _, ok := methods[c.Request.Method]; !ok {
				c.Next()
				return
			}
		}

		// Unmatched paths share one bucket so arbitrary URLs cannot mint new counters.
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		key := c.ClientIP() + "|" + c.Request.Method + "|" + route

		count, resetIn, err := opts.Store.Increment(c.Request.Context(), key, opts.Window)
		if err != nil {
			logger.WithModule("ratelimit").Warn("rate store unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(opts.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(0, opts.Requests-count)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(resetIn.Seconds())))

		if count > opts.Requests {
			c.Header("Retry-After", strconv.Itoa(max(1, int(resetIn.Seconds()))))
			render(c, errors.ErrRateLimit)
			return
		}

		c.Next()
	}
}
