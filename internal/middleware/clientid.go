package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ClientCookieName identifies the browser whose storage a request reads and writes.
	ClientCookieName = "authflow_client"
	// CtxClientIDKey stores the resolved client identifier in the gin context.
	CtxClientIDKey = "clientID"
	// ClientIDHeader lets API clients without cookies pick their storage scope.
	ClientIDHeader = "X-Client-ID"
)

// ClientID resolves the client identifier from the cookie or header, issuing a new one when absent.
// Issued cookies are session cookies until PersistClientCookie is called.
func ClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ""
		if cookie, err := c.Cookie(ClientCookieName); err == nil {
			id = validClientID(cookie)
		}
		if id == "" {
			id = validClientID(c.GetHeader(ClientIDHeader))
		}
		if id == "" {
			id = uuid.NewString()
			setClientCookie(c, id, 0)
		}

		c.Set(CtxClientIDKey, id)
		c.Next()
	}
}

// ClientIDFrom returns the identifier resolved by ClientID.
func ClientIDFrom(c *gin.Context) string {
	return c.GetString(CtxClientIDKey)
}

// PersistClientCookie re-issues the client cookie with a max age in seconds.
func PersistClientCookie(c *gin.Context, maxAge int) {
	id := ClientIDFrom(c)
	if id == "" {
		return
	}
	setClientCookie(c, id, maxAge)
}

func setClientCookie(c *gin.Context, id string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     ClientCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isSecureRequest(c.Request),
		SameSite: http.SameSiteLaxMode,
	})
}

func validClientID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return ""
	}
	return parsed.String()
}
