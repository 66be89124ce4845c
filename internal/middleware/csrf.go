package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/authflow/pkg/crypto"
	"github.com/charlesng35/authflow/pkg/errors"
	"github.com/charlesng35/authflow/pkg/logger"
)

const (
	// CSRFCookieName is the cookie used to transport the CSRF token to clients.
	CSRFCookieName = "authflow_csrf"
	// CSRFHeaderName is the header scripts present for unsafe HTTP methods.
	CSRFHeaderName = "X-CSRF-Token"
	// CSRFFormField is the hidden form field HTML forms present instead of the header.
	CSRFFormField = "csrf_token"
	// CtxCSRFTokenKey exposes the current token to templates.
	CtxCSRFTokenKey = "csrfToken"

	csrfTokenLength  = 48
	csrfCookieMaxAge = 12 * 60 * 60 // 12 hours
)

// CSRFOptions customise the CSRF middleware.
type CSRFOptions struct {
	// Skip exempts a request from the token check. The cookie is still issued.
	Skip   func(c *gin.Context) bool
	Render ErrorRenderer
}

// CSRF implements the double-submit-cookie pattern. Every request gets a token cookie;
// POST, PUT, PATCH and DELETE must echo it in the X-CSRF-Token header or the csrf_token field.
func CSRF(opts CSRFOptions) gin.HandlerFunc {
	render := renderOrJSON(opts.Render)
	log := logger.WithModule("csrf")

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token, issued, err := csrfCookieToken(c)
		if err != nil {
			log.Error("issue csrf token", zap.Error(err))
			render(c, errors.ErrInternalServer)
			return
		}
		c.Set(CtxCSRFTokenKey, token)

		if !mutates(c.Request.Method) {
			c.Header(CSRFHeaderName, token)
			c.Next()
			return
		}
		if opts.Skip != nil && opts.Skip(c) {
			c.Next()
			return
		}

		if !tokensMatch(token, presentedCSRFToken(c)) {
			log.Warn("csrf validation failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Bool("cookie_issued", issued),
			)
			render(c, errors.ErrCSRFInvalid)
			return
		}
		c.Next()
	}
}

// CSRFTokenFrom returns the token set by CSRF for the current request.
func CSRFTokenFrom(c *gin.Context) string {
	return c.GetString(CtxCSRFTokenKey)
}

// WithoutClientCookie skips the CSRF check for clients identified only by header.
// Such requests carry no ambient credentials.
func WithoutClientCookie(c *gin.Context) bool {
	_, err := c.Cookie(ClientCookieName)
	return err != nil && c.GetHeader(ClientIDHeader) != ""
}

// csrfCookieToken reuses the client's token or mints one; either way the cookie is refreshed.
func csrfCookieToken(c *gin.Context) (token string, issued bool, err error) {
	token, _ = c.Cookie(CSRFCookieName)
	if token == "" {
		if token, err = crypto.GenerateToken(csrfTokenLength); err != nil {
			return "", false, err
		}
		issued = true
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   csrfCookieMaxAge,
		Secure:   isSecureRequest(c.Request),
		SameSite: http.SameSiteStrictMode,
	})
	return token, issued, nil
}

func presentedCSRFToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader(CSRFHeaderName)); token != "" {
		return token
	}
	return strings.TrimSpace(c.PostForm(CSRFFormField))
}

func mutates(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func tokensMatch(expected, presented string) bool {
	return expected != "" && presented != "" && crypto.EqualHashes(expected, presented)
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
