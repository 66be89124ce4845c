package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/authflow/internal/api"
	"github.com/charlesng35/authflow/internal/app"
	iauth "github.com/charlesng35/authflow/internal/auth"
	"github.com/charlesng35/authflow/internal/backend"
	sharedtestutil "github.com/charlesng35/authflow/internal/database/testutil"
	"github.com/charlesng35/authflow/internal/flows"
	"github.com/charlesng35/authflow/internal/middleware"
	"github.com/charlesng35/authflow/internal/storage"
	"github.com/charlesng35/authflow/pkg/mail"
	"github.com/charlesng35/authflow/pkg/response"
)

// FixedCode is the verification code every test environment issues.
const FixedCode = "123456"

// Demo account seeded into every environment.
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "Demo@1234"
)

// Env encapsulates a fully-wired router backed by an in-memory database and store.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	JWT    *iauth.JWTService
	Flows  *flows.Controller
	Store  *storage.MemoryStore
	Mailer *RecordingMailer
	Config *app.Config

	cookies map[string]*http.Cookie
}

// EnvOption adjusts the configuration before the router is built.
type EnvOption func(*app.Config)

// WithConfig mutates the test configuration.
func WithConfig(fn func(*app.Config)) EnvOption {
	return func(cfg *app.Config) { fn(cfg) }
}

// NewEnv provisions a fresh handler test environment with migrations and the demo account.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	cfg := &app.Config{
		Server: app.ServerConfig{
			BaseURL:     "http://localhost:8000",
			RememberFor: 30 * 24 * time.Hour,
			CSRF:        app.CSRFConfig{Enabled: true},
			RateLimit:   app.RateLimitConfig{Enabled: false, Requests: 100, Window: time.Minute},
		},
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{
				Secret: "test-suite-super-secret-key-32-bytes!!",
				Issuer: "test-suite",
				TTL:    time.Hour,
			},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	mailer := &RecordingMailer{}
	sim, err := backend.NewSimulated(db, jwtSvc, mailer,
		backend.WithLatency(0),
		backend.WithFixedCode(FixedCode),
		backend.WithBaseURL(cfg.Server.BaseURL),
	)
	require.NoError(t, err)

	_, err = backend.SeedDemoAccount(context.Background(), db, backend.DemoAccount{
		Email:     DemoEmail,
		Password:  DemoPassword,
		FirstName: "Demo",
		LastName:  "User",
	})
	require.NoError(t, err)

	store := storage.NewMemoryStore()
	cs, err := storage.NewClientStorage(store)
	require.NoError(t, err)

	ctrl, err := flows.NewController(sim, cs)
	require.NoError(t, err)

	router, err := api.NewRouter(api.Dependencies{
		DB:     db,
		JWT:    jwtSvc,
		Flows:  ctrl,
		Config: cfg,
		Store:  store,
	})
	require.NoError(t, err)

	return &Env{
		T:       t,
		DB:      db,
		Router:  router,
		JWT:     jwtSvc,
		Flows:   ctrl,
		Store:   store,
		Mailer:  mailer,
		Config:  cfg,
		cookies: make(map[string]*http.Cookie),
	}
}

// Get issues a browser GET, carrying and updating the cookie jar.
func (e *Env) Get(path string) *httptest.ResponseRecorder {
	e.T.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(e.T, err)
	return e.serve(req)
}

// PostForm submits an HTML form, adding the CSRF field from the jar.
func (e *Env) PostForm(path string, values url.Values) *httptest.ResponseRecorder {
	e.T.Helper()

	if values == nil {
		values = url.Values{}
	}
	if token := e.ensureCSRF(); token != "" && values.Get(middleware.CSRFFormField) == "" {
		values.Set(middleware.CSRFFormField, token)
	}

	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	require.NoError(e.T, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.serve(req)
}

// PostFormWithoutCSRF submits an HTML form with no CSRF attestation.
func (e *Env) PostFormWithoutCSRF(path string, values url.Values) *httptest.ResponseRecorder {
	e.T.Helper()
	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	require.NoError(e.T, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.serve(req)
}

// JSON calls the API as a cookie-less client identified by clientID.
func (e *Env) JSON(method, path, clientID string, body any) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if clientID != "" {
		req.Header.Set(middleware.ClientIDHeader, clientID)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// Cookie returns the jar entry with the given name.
func (e *Env) Cookie(name string) *http.Cookie {
	return e.cookies[name]
}

// ClientID returns the identifier stored in the client cookie.
func (e *Env) ClientID() string {
	if c := e.cookies[middleware.ClientCookieName]; c != nil {
		return c.Value
	}
	return ""
}

// Follow GETs the Location of a redirect response.
func (e *Env) Follow(w *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	e.T.Helper()
	require.Equal(e.T, http.StatusSeeOther, w.Code, w.Body.String())
	location := w.Header().Get("Location")
	require.NotEmpty(e.T, location)
	return e.Get(location)
}

func (e *Env) serve(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range e.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	e.capture(w.Result())
	return w
}

func (e *Env) ensureCSRF() string {
	if c := e.cookies[middleware.CSRFCookieName]; c != nil {
		return c.Value
	}
	resp := e.Get("/health")
	require.Equal(e.T, http.StatusOK, resp.Code, resp.Body.String())
	if c := e.cookies[middleware.CSRFCookieName]; c != nil {
		return c.Value
	}
	return ""
}

func (e *Env) capture(resp *http.Response) {
	if resp == nil {
		return
	}
	defer resp.Body.Close()

	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 {
			delete(e.cookies, c.Name)
			continue
		}
		clone := *c
		e.cookies[c.Name] = &clone
	}
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// RecordingMailer keeps every message it is asked to send.
type RecordingMailer struct {
	mu       sync.Mutex
	messages []mail.Message
}

// Send records msg.
func (m *RecordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (m *RecordingMailer) Messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.messages...)
}

var resetTokenPattern = regexp.MustCompile(`token=([^\s]+)`)

// LastResetToken extracts the token from the most recent reset link mailed to to.
func (m *RecordingMailer) LastResetToken(t *testing.T, to string) string {
	t.Helper()
	msgs := m.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if len(msgs[i].To) == 0 || msgs[i].To[0] != to {
			continue
		}
		if match := resetTokenPattern.FindStringSubmatch(msgs[i].Body); match != nil {
			token, err := url.QueryUnescape(match[1])
			require.NoError(t, err)
			return token
		}
	}
	t.Fatalf("no reset link mailed to %s", to)
	return ""
}
