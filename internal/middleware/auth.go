package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/charlesng35/authflow/internal/auth"
	"github.com/charlesng35/authflow/internal/storage"
	"github.com/charlesng35/authflow/pkg/errors"
	"github.com/charlesng35/authflow/pkg/logger"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"
)

// Session loads the token stored for the client, or a bearer token, and exposes its claims.
// Requests without a valid token continue anonymously.
func Session(jwt *iauth.JWTService, cs *storage.ClientStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" && cs != nil {
			if id := ClientIDFrom(c); id != "" {
				stored, err := cs.Token(c.Request.Context(), id)
				if err != nil {
					logger.WithModule("http").Warn("load stored token", zap.Error(err))
				}
				token = stored
			}
		}

		if token != "" {
			if claims, err := jwt.Validate(token); err == nil {
				c.Set(CtxClaimsKey, claims)
				c.Set(CtxUserIDKey, claims.UserID)
			}
		}

		c.Next()
	}
}

// RequireSession rejects requests that Session did not authenticate.
func RequireSession(render ErrorRenderer) gin.HandlerFunc {
	render = renderOrJSON(render)
	return func(c *gin.Context) {
		if _, ok := ClaimsFrom(c); !ok {
			c.Header("WWW-Authenticate", "Bearer")
			render(c, errors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Session.
func ClaimsFrom(c *gin.Context) (*iauth.Claims, bool) {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*iauth.Claims)
	return claims, ok && claims != nil
}

func bearerToken(header string) string {
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
