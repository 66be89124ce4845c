package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/authflow/internal/app"
	iauth "github.com/charlesng35/authflow/internal/auth"
	"github.com/charlesng35/authflow/internal/backend"
	"github.com/charlesng35/authflow/internal/database/testutil"
	"github.com/charlesng35/authflow/internal/flows"
	"github.com/charlesng35/authflow/internal/middleware"
	"github.com/charlesng35/authflow/internal/storage"
	"github.com/charlesng35/authflow/pkg/mail"
)

func newTestDeps(t *testing.T, mutate func(*app.Config)) Dependencies {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "router-secret", Issuer: "test", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("jwt service: %v", err)
	}

	sim, err := backend.NewSimulated(db, jwtSvc, mail.NewLogMailer(), backend.WithLatency(0))
	if err != nil {
		t.Fatalf("backend: %v", err)
	}

	store := storage.NewMemoryStore()
	cs, err := storage.NewClientStorage(store)
	if err != nil {
		t.Fatalf("client storage: %v", err)
	}
	ctrl, err := flows.NewController(sim, cs)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}

	cfg := &app.Config{
		Server: app.ServerConfig{
			CSRF:      app.CSRFConfig{Enabled: true},
			RateLimit: app.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Minute},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}
	if mutate != nil {
		mutate(cfg)
	}

	return Dependencies{DB: db, JWT: jwtSvc, Flows: ctrl, Config: cfg, Store: store}
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewRouterRequiresDependencies(t *testing.T) {
	deps := newTestDeps(t, nil)

	cases := map[string]func(d *Dependencies){
		"db":     func(d *Dependencies) { d.DB = nil },
		"jwt":    func(d *Dependencies) { d.JWT = nil },
		"flows":  func(d *Dependencies) { d.Flows = nil },
		"config": func(d *Dependencies) { d.Config = nil },
	}
	for name, mutate := range cases {
		d := deps
		mutate(&d)
		if _, err := NewRouter(d); err == nil {
			t.Fatalf("expected error when %s is missing", name)
		}
	}
}

func TestRouter_PublicPagesAndSession(t *testing.T) {
	router, err := NewRouter(newTestDeps(t, nil))
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	for _, path := range []string{"/", "/auth/sign-in", "/auth/sign-up", "/auth/verify-email", "/auth/forgot-password", "/auth/reset-password"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		w := serve(router, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", path, w.Code)
		}
		if !strings.Contains(w.Header().Get("Content-Type"), "text/html") {
			t.Fatalf("expected html for %s, got %q", path, w.Header().Get("Content-Type"))
		}
	}

	req, _ := http.NewRequest(http.MethodGet, "/api/auth/session", nil)
	w := serve(router, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for /api/auth/session without token, got %d", w.Code)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router, err := NewRouter(newTestDeps(t, nil))
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	// Trigger a request to generate metrics
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	rec := serve(router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for /health, got %d", rec.Code)
	}

	metricsReq, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	metricsRec := serve(router, metricsReq)
	if metricsRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for /metrics, got %d", metricsRec.Code)
	}
	if !strings.Contains(metricsRec.Body.String(), "authflow_http_latency_seconds") {
		t.Fatalf("expected request latency in metrics output")
	}
}

func TestRouter_MonitoringDisabled(t *testing.T) {
	router, err := NewRouter(newTestDeps(t, func(cfg *app.Config) {
		cfg.Monitoring.Prometheus.Enabled = false
		cfg.Monitoring.Health.Enabled = false
	}))
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	for _, path := range []string{"/health", "/metrics"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		if w := serve(router, req); w.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for %s when disabled, got %d", path, w.Code)
		}
	}
}

func TestRouter_StaticAssets(t *testing.T) {
	router, err := NewRouter(newTestDeps(t, nil))
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	for _, path := range []string{"/static/app.css", "/static/app.js"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		if w := serve(router, req); w.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", path, w.Code)
		}
	}
}

func TestRouter_NotFoundNegotiation(t *testing.T) {
	router, err := NewRouter(newTestDeps(t, nil))
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, "/auth/missing", nil)
	w := serve(router, req)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("expected html 404, got %d %q", w.Code, w.Header().Get("Content-Type"))
	}

	req, _ = http.NewRequest(http.MethodGet, "/api/missing", nil)
	w = serve(router, req)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("expected json 404, got %d %q", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestRouter_RateLimitsPosts(t *testing.T) {
	router, err := NewRouter(newTestDeps(t, nil))
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	var last int
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodPost, "/api/auth/forgot-password", strings.NewReader(`{"email":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.ClientIDHeader, "5f0b7c1e-8a57-4d7b-9d2e-0c7f3f1f7a10")
		req.RemoteAddr = "192.0.2.1:1234"
		last = serve(router, req).Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after exceeding the limit, got %d", last)
	}

	// GETs are not counted.
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodGet, "/auth/forgot-password", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		if w := serve(router, req); w.Code != http.StatusOK {
			t.Fatalf("expected 200 for GET, got %d", w.Code)
		}
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, err := NewRouter(newTestDeps(t, func(cfg *app.Config) {
		cfg.Server.CORSOrigins = []string{"https://app.example.com"}
	}))
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	req, _ := http.NewRequest(http.MethodOptions, "/api/auth/sign-in", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := serve(router, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestRouter_ReadinessReportsChecks(t *testing.T) {
	router, err := NewRouter(newTestDeps(t, nil))
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	for _, path := range []string{"/health/ready", "/api/health/ready", "/health/live"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		w := serve(router, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d: %s", path, w.Code, w.Body.String())
		}
	}

	req, _ := http.NewRequest(http.MethodGet, "/health/ready", nil)
	body := serve(router, req).Body.String()
	if !strings.Contains(body, `"database"`) || !strings.Contains(body, `"storage"`) {
		t.Fatalf("expected database and storage checks, got %s", body)
	}
}
