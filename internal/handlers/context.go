package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/authflow/internal/middleware"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// clientID returns the storage scope resolved by the ClientID middleware.
func clientID(c *gin.Context) string {
	return middleware.ClientIDFrom(c)
}
