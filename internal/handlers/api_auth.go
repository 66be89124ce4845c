package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/authflow/internal/backend"
	"github.com/charlesng35/authflow/internal/flows"
	"github.com/charlesng35/authflow/internal/forms"
	"github.com/charlesng35/authflow/internal/middleware"
	"github.com/charlesng35/authflow/internal/storage"
	apperrors "github.com/charlesng35/authflow/pkg/errors"
	"github.com/charlesng35/authflow/pkg/response"
)

// AuthAPI exposes the flows as JSON endpoints under /api/auth.
type AuthAPI struct {
	flows       *flows.Controller
	rememberFor time.Duration
}

// NewAuthAPI constructs the JSON handlers.
func NewAuthAPI(ctrl *flows.Controller, rememberFor time.Duration) (*AuthAPI, error) {
	if ctrl == nil {
		return nil, errors.New("auth api: flow controller is required")
	}
	if rememberFor <= 0 {
		rememberFor = DefaultRememberFor
	}
	return &AuthAPI{flows: ctrl, rememberFor: rememberFor}, nil
}

type outcomePayload struct {
	Redirect        string               `json:"redirect,omitempty"`
	View            string               `json:"view,omitempty"`
	Token           string               `json:"token,omitempty"`
	User            *backend.UserProfile `json:"user,omitempty"`
	CooldownSeconds int                  `json:"cooldownSeconds,omitempty"`
}

type verifyEmailRequest struct {
	VerificationCode string `json:"verificationCode"`
	Email            string `json:"email"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type sessionPayload struct {
	UserID        string           `json:"userId"`
	Email         string           `json:"email"`
	EmailVerified bool             `json:"emailVerified"`
	ExpiresAt     time.Time        `json:"expiresAt"`
	Profile       *storage.Profile `json:"profile,omitempty"`
}

func (h *AuthAPI) respond(c *gin.Context, out *flows.Outcome, payload outcomePayload) {
	if out.Err != nil {
		response.Error(c, out.Err)
		return
	}

	payload.Redirect = out.Redirect
	payload.View = out.View
	if out.Result != nil {
		payload.Token = out.Result.Token
		payload.User = out.Result.Data
	}
	message := ""
	if out.Toast != nil {
		message = out.Toast.Message
	}
	response.SuccessWithMessage(c, http.StatusOK, message, payload)
}

// POST /api/auth/sign-in
func (h *AuthAPI) SignIn(c *gin.Context) {
	var req forms.SignIn
	if !bindJSON(c, &req) {
		return
	}
	out := h.flows.SignIn(requestContext(c), clientID(c), req)
	if out.Succeeded() && out.Remember {
		middleware.PersistClientCookie(c, int(h.rememberFor.Seconds()))
	}
	h.respond(c, out, outcomePayload{})
}

// POST /api/auth/sign-up
func (h *AuthAPI) SignUp(c *gin.Context) {
	var req forms.SignUp
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, h.flows.SignUp(requestContext(c), clientID(c), req), outcomePayload{})
}

// POST /api/auth/verify-email
func (h *AuthAPI) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, h.flows.VerifyEmailCode(requestContext(c), clientID(c), req.VerificationCode, req.Email), outcomePayload{})
}

// POST /api/auth/resend-verification
func (h *AuthAPI) ResendVerification(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := requestContext(c)
	out := h.flows.ResendVerification(ctx, clientID(c), req.Email)

	var payload outcomePayload
	if out.Succeeded() {
		if state, err := h.flows.VerifyState(ctx, clientID(c)); err == nil {
			payload.CooldownSeconds = state.CooldownSeconds()
		}
	}
	h.respond(c, out, payload)
}

// POST /api/auth/forgot-password
func (h *AuthAPI) ForgotPassword(c *gin.Context) {
	var req forms.ForgotPassword
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, h.flows.ForgotPassword(requestContext(c), clientID(c), req), outcomePayload{})
}

// POST /api/auth/reset-password
func (h *AuthAPI) ResetPassword(c *gin.Context) {
	var req forms.ResetPassword
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, h.flows.ResetPassword(requestContext(c), clientID(c), req), outcomePayload{})
}

// POST /api/auth/sign-out
func (h *AuthAPI) SignOut(c *gin.Context) {
	if err := h.flows.SignOut(requestContext(c), clientID(c)); err != nil {
		response.Error(c, apperrors.ErrInternalServer.WithInternal(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"redirect": flows.PathSignIn})
}

// GET /api/auth/session
func (h *AuthAPI) Session(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	payload := sessionPayload{
		UserID:        claims.UserID,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}
	if claims.ExpiresAt != nil {
		payload.ExpiresAt = claims.ExpiresAt.Time
	}
	profile, err := h.flows.Storage().Profile(requestContext(c), clientID(c))
	if err != nil {
		response.Error(c, apperrors.ErrInternalServer.WithInternal(err))
		return
	}
	// A bearer token may belong to another account than this client's stored user data.
	if profile != nil && strings.EqualFold(strings.TrimSpace(profile.Email), strings.TrimSpace(claims.Email)) {
		payload.Profile = profile
	}

	response.Success(c, http.StatusOK, payload)
}
