package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/authflow/internal/flows"
	"github.com/charlesng35/authflow/internal/forms"
	"github.com/charlesng35/authflow/internal/middleware"
)

// DefaultRememberFor is how long a remembered browser keeps its client cookie.
const DefaultRememberFor = 30 * 24 * time.Hour

// AuthPages serves the server-rendered authentication forms.
type AuthPages struct {
	flows       *flows.Controller
	rememberFor time.Duration
}

// NewAuthPages constructs the page handlers.
func NewAuthPages(ctrl *flows.Controller, rememberFor time.Duration) (*AuthPages, error) {
	if ctrl == nil {
		return nil, errors.New("auth pages: flow controller is required")
	}
	if rememberFor <= 0 {
		rememberFor = DefaultRememberFor
	}
	return &AuthPages{flows: ctrl, rememberFor: rememberFor}, nil
}

// page builds the base model and consumes the pending toast.
func (h *AuthPages) page(c *gin.Context, title, quote string) pageData {
	data := newPage(c, title, quote)
	toast, err := h.flows.Storage().PopToast(requestContext(c), clientID(c))
	logPageError(c, "pop toast", err)
	data.Toast = toast
	return data
}

// settle follows the redirect of a finished submission, or re-renders tmpl with its errors.
func (h *AuthPages) settle(c *gin.Context, out *flows.Outcome, tmpl string, data pageData) {
	if out.Redirect != "" {
		if out.Toast != nil {
			logPageError(c, "push toast", h.flows.Storage().PushToast(requestContext(c), clientID(c), *out.Toast))
		}
		c.Redirect(http.StatusSeeOther, out.Redirect)
		return
	}

	if out.Toast != nil {
		data.Toast = out.Toast
	}
	data.Fields = out.Fields
	if out.View != "" {
		data.View = out.View
	}

	status := http.StatusOK
	if out.Err != nil {
		status = out.Err.StatusCode
	}
	c.HTML(status, tmpl, data)
}

func (h *AuthPages) badSubmission(c *gin.Context, tmpl string, data pageData, err error) {
	logPageError(c, "bind form", err)
	data.Toast = toastError(msgBadSubmission)
	c.HTML(http.StatusBadRequest, tmpl, data)
}

// Home renders the landing page with the navigation message and stored profile.
func (h *AuthPages) Home(c *gin.Context) {
	ctx := requestContext(c)
	data := h.page(c, titleHome, "")

	notice, err := h.flows.Notice(ctx, clientID(c), flows.PathHome)
	logPageError(c, "load notice", err)
	data.Notice = notice

	profile, err := h.flows.Storage().Profile(ctx, clientID(c))
	logPageError(c, "load profile", err)
	data.Profile = profile
	_, data.SignedIn = middleware.ClaimsFrom(c)

	c.HTML(http.StatusOK, tmplHome, data)
}

// SignOut clears the stored token and profile.
func (h *AuthPages) SignOut(c *gin.Context) {
	logPageError(c, "sign out", h.flows.SignOut(requestContext(c), clientID(c)))
	c.Redirect(http.StatusSeeOther, flows.PathSignIn)
}

// SignInForm renders GET /auth/sign-in.
func (h *AuthPages) SignInForm(c *gin.Context) {
	data := h.page(c, titleSignIn, quoteSignIn)
	notice, err := h.flows.Notice(requestContext(c), clientID(c), flows.PathSignIn)
	logPageError(c, "load notice", err)
	data.Notice = notice
	c.HTML(http.StatusOK, tmplSignIn, data)
}

// SignIn handles POST /auth/sign-in.
func (h *AuthPages) SignIn(c *gin.Context) {
	data := h.page(c, titleSignIn, quoteSignIn)

	var form forms.SignIn
	if err := bindForm(c, &form); err != nil {
		h.badSubmission(c, tmplSignIn, data, err)
		return
	}
	data.Values = map[string]string{
		"email":      form.Email,
		"rememberMe": strconv.FormatBool(form.RememberMe),
	}

	out := h.flows.SignIn(requestContext(c), clientID(c), form)
	if out.Succeeded() && out.Remember {
		middleware.PersistClientCookie(c, int(h.rememberFor.Seconds()))
	}
	h.settle(c, out, tmplSignIn, data)
}

// SignUpForm renders GET /auth/sign-up.
func (h *AuthPages) SignUpForm(c *gin.Context) {
	c.HTML(http.StatusOK, tmplSignUp, h.page(c, titleSignUp, quoteSignUp))
}

// SignUp handles POST /auth/sign-up.
func (h *AuthPages) SignUp(c *gin.Context) {
	data := h.page(c, titleSignUp, quoteSignUp)

	var form forms.SignUp
	if err := bindForm(c, &form); err != nil {
		h.badSubmission(c, tmplSignUp, data, err)
		return
	}
	data.Values = map[string]string{
		"firstName":            form.FirstName,
		"lastName":             form.LastName,
		"email":                form.Email,
		"acceptTerms":          strconv.FormatBool(form.AcceptTerms),
		"receiveNotifications": strconv.FormatBool(form.ReceiveNotifications),
	}

	h.settle(c, h.flows.SignUp(requestContext(c), clientID(c), form), tmplSignUp, data)
}

// verifyPage loads the verification page model for the current client.
func (h *AuthPages) verifyPage(c *gin.Context, input *forms.CodeInput) pageData {
	data := h.page(c, titleVerifyEmail, quoteVerify)

	state, err := h.flows.VerifyState(requestContext(c), clientID(c))
	logPageError(c, "load verify state", err)
	data.Email = state.Email
	data.FromSignup = state.FromSignup
	data.CooldownSeconds = state.CooldownSeconds()
	if data.Email == "" {
		data.View = flows.ViewNoEmail
	}

	if input == nil {
		input = forms.NewCodeInput()
	}
	data.Digits = input.Digits()
	data.Focus = input.Focus()
	return data
}

// VerifyEmailForm renders GET /auth/verify-email.
func (h *AuthPages) VerifyEmailForm(c *gin.Context) {
	c.HTML(http.StatusOK, tmplVerifyEmail, h.verifyPage(c, nil))
}

// VerifyEmail handles POST /auth/verify-email. The six slots arrive as digit0..digit5,
// with an optional paste field replayed after them. A posted email field is ignored.
func (h *AuthPages) VerifyEmail(c *gin.Context) {
	slots := make([]string, forms.CodeLength)
	for i := range slots {
		slots[i] = c.PostForm("digit" + strconv.Itoa(i))
	}
	input := forms.ReplayCodeInput(slots, c.PostForm("paste"))

	// The address always comes from this client's navigation state or profile.
	h.settle(c, h.flows.VerifyEmail(requestContext(c), clientID(c), input, ""), tmplVerifyEmail, h.verifyPage(c, input))
}

// ResendVerification handles POST /auth/verify-email/resend.
func (h *AuthPages) ResendVerification(c *gin.Context) {
	out := h.flows.ResendVerification(requestContext(c), clientID(c), "")
	if out.View == flows.ViewNoEmail {
		h.settle(c, out, tmplVerifyEmail, h.verifyPage(c, nil))
		return
	}
	if out.Redirect == "" {
		out.Redirect = flows.PathVerifyEmail
	}
	h.settle(c, out, tmplVerifyEmail, pageData{})
}

// ForgotPasswordForm renders GET /auth/forgot-password. ?again=1 returns to an empty form.
func (h *AuthPages) ForgotPasswordForm(c *gin.Context) {
	ctx := requestContext(c)
	if c.Query("again") != "" {
		logPageError(c, "reset forgot state", h.flows.ForgotAgain(ctx, clientID(c)))
		c.Redirect(http.StatusSeeOther, flows.PathForgotPassword)
		return
	}

	data := h.page(c, titleForgotPassword, quoteForgot)
	submitted, email, err := h.flows.ForgotState(ctx, clientID(c))
	logPageError(c, "load forgot state", err)
	if submitted {
		data.View = flows.ViewSubmitted
		data.Email = email
	}
	c.HTML(http.StatusOK, tmplForgotPassword, data)
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *AuthPages) ForgotPassword(c *gin.Context) {
	data := h.page(c, titleForgotPassword, quoteForgot)

	var form forms.ForgotPassword
	if err := bindForm(c, &form); err != nil {
		h.badSubmission(c, tmplForgotPassword, data, err)
		return
	}
	data.Values = map[string]string{"email": form.Email}

	h.settle(c, h.flows.ForgotPassword(requestContext(c), clientID(c), form), tmplForgotPassword, data)
}

// ResetPasswordForm renders GET /auth/reset-password?token=...
func (h *AuthPages) ResetPasswordForm(c *gin.Context) {
	data := h.page(c, titleResetPassword, quoteReset)
	data.Token = strings.TrimSpace(c.Query("token"))
	if data.Token == "" {
		data.View = flows.ViewInvalidLink
	}
	c.HTML(http.StatusOK, tmplResetPassword, data)
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthPages) ResetPassword(c *gin.Context) {
	data := h.page(c, titleResetPassword, quoteReset)

	var form forms.ResetPassword
	if err := bindForm(c, &form); err != nil {
		h.badSubmission(c, tmplResetPassword, data, err)
		return
	}
	if form.Token == "" {
		form.Token = c.Query("token")
	}
	data.Token = strings.TrimSpace(form.Token)

	h.settle(c, h.flows.ResetPassword(requestContext(c), clientID(c), form), tmplResetPassword, data)
}
