package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/charlesng35/authflow/internal/app"
	iauth "github.com/charlesng35/authflow/internal/auth"
	"github.com/charlesng35/authflow/internal/flows"
	"github.com/charlesng35/authflow/internal/handlers"
	"github.com/charlesng35/authflow/internal/middleware"
	"github.com/charlesng35/authflow/internal/storage"
	"github.com/charlesng35/authflow/web"
)

// Dependencies are the services the router hands to middleware and handlers.
type Dependencies struct {
	DB     *gorm.DB
	JWT    *iauth.JWTService
	Flows  *flows.Controller
	Config *app.Config
	// Store is the client storage backend. It also holds the rate limiter counters.
	Store storage.Store
}

// NewRouter builds the Gin engine, wires middleware and registers the page, API and ops routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Flows == nil {
		return nil, fmt.Errorf("flow controller must be provided")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	cfg := deps.Config

	r := gin.New()

	tmpl, err := web.Templates(handlers.TemplateFuncs())
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	static, err := web.Static()
	if err != nil {
		return nil, fmt.Errorf("load static assets: %w", err)
	}

	// Global middleware
	r.Use(middleware.Recovery(handlers.RenderError))
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.ClientID())
	if cfg.Server.CSRF.Enabled {
		r.Use(middleware.CSRF(middleware.CSRFOptions{
			Skip:   middleware.WithoutClientCookie,
			Render: handlers.RenderError,
		}))
	}
	if cfg.Server.RateLimit.Enabled && deps.Store != nil {
		r.Use(middleware.RateLimit(middleware.RateLimitOptions{
			Store:    middleware.NewRateStore(deps.Store),
			Requests: cfg.Server.RateLimit.Requests,
			Window:   cfg.Server.RateLimit.Window,
			Methods:  []string{http.MethodPost},
			Render:   handlers.RenderError,
		}))
	}
	r.Use(middleware.Session(deps.JWT, deps.Flows.Storage()))

	r.StaticFS("/static", http.FS(static))

	registerHealthRoutes(r, cfg, newHealthManager(deps.DB, deps.Store))
	registerMetricsRoutes(r, cfg)

	if err := registerPageRoutes(r, deps.Flows, cfg); err != nil {
		return nil, err
	}
	if err := registerAPIRoutes(r, deps.Flows, cfg); err != nil {
		return nil, err
	}

	// NotFound fallback
	r.NoRoute(handlers.NotFound)

	return r, nil
}

func registerPageRoutes(r *gin.Engine, ctrl *flows.Controller, cfg *app.Config) error {
	pages, err := handlers.NewAuthPages(ctrl, cfg.Server.RememberFor)
	if err != nil {
		return err
	}

	r.GET("/", pages.Home)

	auth := r.Group("/auth")
	{
		auth.GET("/sign-in", pages.SignInForm)
		auth.POST("/sign-in", pages.SignIn)
		auth.GET("/sign-up", pages.SignUpForm)
		auth.POST("/sign-up", pages.SignUp)
		auth.GET("/verify-email", pages.VerifyEmailForm)
		auth.POST("/verify-email", pages.VerifyEmail)
		auth.POST("/verify-email/resend", pages.ResendVerification)
		auth.GET("/forgot-password", pages.ForgotPasswordForm)
		auth.POST("/forgot-password", pages.ForgotPassword)
		auth.GET("/reset-password", pages.ResetPasswordForm)
		auth.POST("/reset-password", pages.ResetPassword)
		auth.GET("/sign-out", pages.SignOut)
	}
	return nil
}

func registerAPIRoutes(r *gin.Engine, ctrl *flows.Controller, cfg *app.Config) error {
	authAPI, err := handlers.NewAuthAPI(ctrl, cfg.Server.RememberFor)
	if err != nil {
		return err
	}

	api := r.Group("/api")
	api.Use(middleware.CORS(cfg.Server.CORSOrigins...))
	// Preflight requests are answered by the CORS middleware.
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	auth := api.Group("/auth")
	{
		auth.POST("/sign-in", authAPI.SignIn)
		auth.POST("/sign-up", authAPI.SignUp)
		auth.POST("/verify-email", authAPI.VerifyEmail)
		auth.POST("/resend-verification", authAPI.ResendVerification)
		auth.POST("/forgot-password", authAPI.ForgotPassword)
		auth.POST("/reset-password", authAPI.ResetPassword)
		auth.POST("/sign-out", authAPI.SignOut)
		auth.GET("/session", middleware.RequireSession(handlers.RenderError), authAPI.Session)
	}
	return nil
}
