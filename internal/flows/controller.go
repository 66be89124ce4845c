package flows

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/authflow/internal/backend"
	"github.com/charlesng35/authflow/internal/forms"
	"github.com/charlesng35/authflow/internal/storage"
	apperrors "github.com/charlesng35/authflow/pkg/errors"
	"github.com/charlesng35/authflow/pkg/logger"
	"github.com/charlesng35/authflow/pkg/metrics"
)

// Name identifies a flow in logs, metrics and the pending guard.
type Name string

const (
	FlowSignIn             Name = "sign_in"
	FlowSignUp             Name = "sign_up"
	FlowVerifyEmail        Name = "verify_email"
	FlowResendVerification Name = "resend_verification"
	FlowForgotPassword     Name = "forgot_password"
	FlowResetPassword      Name = "reset_password"
)

// DefaultResendCooldown is the wait between two verification code requests.
const DefaultResendCooldown = 60 * time.Second

const cooldownResend = "resend"

// Option customises a Controller.
type Option func(*Controller)

// WithResendCooldown overrides the resend cooldown.
func WithResendCooldown(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.resendCooldown = d
		}
	}
}

// WithPendingGuard shares a guard between controllers.
func WithPendingGuard(g *PendingGuard) Option {
	return func(c *Controller) {
		if g != nil {
			c.pending = g
		}
	}
}

// Controller runs the authentication flows for a client.
type Controller struct {
	backend        backend.Backend
	storage        *storage.ClientStorage
	pending        *PendingGuard
	resendCooldown time.Duration
}

// NewController constructs a flow controller.
func NewController(b backend.Backend, cs *storage.ClientStorage, opts ...Option) (*Controller, error) {
	if b == nil {
		return nil, errors.New("flows: backend is required")
	}
	if cs == nil {
		return nil, errors.New("flows: client storage is required")
	}

	c := &Controller{
		backend:        b,
		storage:        cs,
		pending:        NewPendingGuard(),
		resendCooldown: DefaultResendCooldown,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Storage exposes the client storage the controller writes to.
func (c *Controller) Storage() *storage.ClientStorage {
	return c.storage
}

// SignOut drops the stored token, profile and navigation state.
func (c *Controller) SignOut(ctx context.Context, clientID string) error {
	if err := c.storage.ClearAuth(ctx, clientID); err != nil {
		return err
	}
	return c.storage.ClearNavState(ctx, clientID)
}

// validate returns a rejecting outcome when form is invalid.
func (c *Controller) validate(flow Name, form forms.Form) *Outcome {
	fields, err := forms.Validate(form)
	if err != nil {
		return c.fail(flow, msgInvalidForm, err)
	}
	if len(fields) == 0 {
		return nil
	}

	for field := range fields {
		metrics.ValidationFailures.WithLabelValues(string(flow), field).Inc()
	}
	metrics.FormSubmissions.WithLabelValues(string(flow), "invalid").Inc()

	return &Outcome{
		Fields: fields,
		Err:    apperrors.NewValidation(fields).WithMessage(msgInvalidForm),
	}
}

// submit runs call while the (client, flow) pair is marked pending.
func (c *Controller) submit(ctx context.Context, clientID string, flow Name, call func(context.Context) (*backend.Result, error)) (*backend.Result, *Outcome) {
	release, ok := c.pending.Acquire(clientID, flow)
	if !ok {
		metrics.FormSubmissions.WithLabelValues(string(flow), "pending").Inc()
		return nil, &Outcome{
			Toast: toastError(msgPending),
			Err:   apperrors.ErrSubmissionPending.WithMessage(msgPending),
		}
	}
	defer release()

	res, err := call(ctx)
	if err != nil {
		return nil, c.fail(flow, "", err)
	}
	if res == nil {
		return nil, c.fail(flow, "", errors.New("flows: backend returned no result"))
	}
	return res, nil
}

// reject turns a backend failure result into an outcome that keeps the form on screen.
func (c *Controller) reject(flow Name, res *backend.Result, message string) *Outcome {
	metrics.FormSubmissions.WithLabelValues(string(flow), "failure").Inc()
	return &Outcome{
		Toast:  toastError(message),
		Result: res,
		Err:    apperrors.ErrFlowRejected.WithMessage(message),
	}
}

// fail logs an unexpected error and returns the flow's generic error outcome.
func (c *Controller) fail(flow Name, message string, err error) *Outcome {
	if message == "" {
		message = genericError(flow)
	}
	metrics.FormSubmissions.WithLabelValues(string(flow), "error").Inc()
	logger.WithFlow(string(flow)).Error("flow submission failed", zap.Error(err))
	return &Outcome{
		Toast: toastError(message),
		Err:   apperrors.ErrInternalServer.WithMessage(message).WithInternal(err),
	}
}

func (c *Controller) succeed(flow Name, res *backend.Result, redirect string) *Outcome {
	metrics.FormSubmissions.WithLabelValues(string(flow), "success").Inc()
	return &Outcome{
		Redirect: redirect,
		Toast:    toastSuccess(res.Message),
		Result:   res,
	}
}

func genericError(flow Name) string {
	switch flow {
	case FlowSignIn:
		return msgSignInError
	case FlowSignUp:
		return msgSignUpError
	case FlowVerifyEmail:
		return msgVerifyError
	case FlowResendVerification:
		return msgResendError
	case FlowForgotPassword:
		return msgForgotError
	case FlowResetPassword:
		return msgResetError
	default:
		return apperrors.ErrInternalServer.Message
	}
}
