package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/authflow/internal/forms"
	"github.com/charlesng35/authflow/internal/middleware"
	"github.com/charlesng35/authflow/internal/storage"
	apperrors "github.com/charlesng35/authflow/pkg/errors"
	"github.com/charlesng35/authflow/pkg/logger"
)

// Template names.
const (
	tmplHome           = "home.html"
	tmplSignIn         = "sign-in.html"
	tmplSignUp         = "sign-up.html"
	tmplVerifyEmail    = "verify-email.html"
	tmplForgotPassword = "forgot-password.html"
	tmplResetPassword  = "reset-password.html"
	tmplNotFound       = "not-found.html"
	tmplError          = "error.html"
)

// pageData is the model every page template receives.
type pageData struct {
	Title     string
	Quote     string
	CSRFToken string
	Toast     *storage.Toast
	Notice    string
	View      string

	Values map[string]string
	Fields forms.FieldErrors

	Email           string
	FromSignup      bool
	CooldownSeconds int
	Digits          []string
	Focus           int

	Token string

	Profile  *storage.Profile
	SignedIn bool

	Status  int
	Message string
}

// TemplateFuncs returns the helpers the page templates use.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}
}

func newPage(c *gin.Context, title, quote string) pageData {
	return pageData{
		Title:     title,
		Quote:     quote,
		CSRFToken: middleware.CSRFTokenFrom(c),
	}
}

// NotFound renders the not-found page, or the JSON envelope for API paths.
func NotFound(c *gin.Context) {
	if wantsJSON(c) {
		middleware.NotFoundJSON(c)
		return
	}
	page := newPage(c, titleNotFound, quoteLost)
	page.Status = http.StatusNotFound
	c.HTML(http.StatusNotFound, tmplNotFound, page)
	c.Abort()
}

// RenderError writes err as an error page for browsers and as JSON for API clients.
func RenderError(c *gin.Context, err *apperrors.AppError) {
	if err == nil {
		err = apperrors.ErrInternalServer
	}
	if wantsJSON(c) {
		middleware.JSONError(c, err)
		return
	}
	if err.StatusCode == http.StatusNotFound {
		NotFound(c)
		return
	}

	message, ok := pageErrorMessages[err.Code]
	if !ok {
		message = err.Message
	}
	page := newPage(c, titleError, "")
	page.Status = err.StatusCode
	page.Message = message
	c.HTML(err.StatusCode, tmplError, page)
	c.Abort()
}

func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func logPageError(c *gin.Context, msg string, err error) {
	if err == nil {
		return
	}
	logger.WithModule("pages").Warn(msg,
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
}

func toastError(message string) *storage.Toast {
	return &storage.Toast{Variant: storage.ToastError, Message: message}
}
