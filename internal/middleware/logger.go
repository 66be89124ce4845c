package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/charlesng35/authflow/pkg/logger"
)

// Logger writes a concise structured access log for each request.
// Static assets and probes are logged at debug level.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		level := zapcore.InfoLevel
		if strings.HasPrefix(path, "/static/") || path == "/health" || path == "/metrics" {
			level = zapcore.DebugLevel
		}
		status := c.Writer.Status()
		if status >= 500 {
			level = zapcore.ErrorLevel
		}

		if ce := logger.WithModule("http").Check(level, "request"); ce != nil {
			ce.Write(
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
				zap.String("client_ip", c.ClientIP()),
				zap.String("user_agent", c.Request.UserAgent()),
			)
		}
	}
}
