package flows

import (
	"context"
	"strings"

	"github.com/charlesng35/authflow/internal/backend"
	"github.com/charlesng35/authflow/internal/forms"
	"github.com/charlesng35/authflow/internal/storage"
	apperrors "github.com/charlesng35/authflow/pkg/errors"
)

// ForgotState reports whether the forgot-password page shows the "link sent" view.
func (c *Controller) ForgotState(ctx context.Context, clientID string) (submitted bool, email string, err error) {
	nav, err := c.storage.NavState(ctx, clientID, PathForgotPassword)
	if err != nil || nav == nil {
		return false, "", err
	}
	return nav.Submitted, nav.Email, nil
}

// ForgotAgain returns the forgot-password page to an empty form.
func (c *Controller) ForgotAgain(ctx context.Context, clientID string) error {
	submitted, _, err := c.ForgotState(ctx, clientID)
	if err != nil || !submitted {
		return err
	}
	return c.storage.ClearNavState(ctx, clientID)
}

// ForgotPassword asks the backend to mail a reset link.
func (c *Controller) ForgotPassword(ctx context.Context, clientID string, form forms.ForgotPassword) *Outcome {
	if out := c.validate(FlowForgotPassword, form); out != nil {
		return out
	}

	res, out := c.submit(ctx, clientID, FlowForgotPassword, func(ctx context.Context) (*backend.Result, error) {
		return c.backend.ForgotPassword(ctx, form.Email)
	})
	if out != nil {
		return out
	}
	if !res.Success {
		return c.reject(FlowForgotPassword, res, res.Message)
	}

	nav := storage.NavState{Path: PathForgotPassword, Email: form.Email, Submitted: true}
	if err := c.storage.SetNavState(ctx, clientID, nav); err != nil {
		return c.fail(FlowForgotPassword, "", err)
	}

	out = c.succeed(FlowForgotPassword, res, PathForgotPassword)
	out.View = ViewSubmitted
	return out
}

// ResetPassword sets the new password, signs the client out and sends it to sign-in.
func (c *Controller) ResetPassword(ctx context.Context, clientID string, form forms.ResetPassword) *Outcome {
	if strings.TrimSpace(form.Token) == "" {
		return &Outcome{
			View: ViewInvalidLink,
			Err:  apperrors.NewBadRequest(msgResetError),
		}
	}
	if out := c.validate(FlowResetPassword, form); out != nil {
		return out
	}

	res, out := c.submit(ctx, clientID, FlowResetPassword, func(ctx context.Context) (*backend.Result, error) {
		return c.backend.ResetPassword(ctx, form.Token, form.NewPassword)
	})
	if out != nil {
		return out
	}
	if !res.Success {
		return c.reject(FlowResetPassword, res, res.Message)
	}

	if err := c.storage.ClearAuth(ctx, clientID); err != nil {
		return c.fail(FlowResetPassword, "", err)
	}
	if err := c.storage.SetNavState(ctx, clientID, storage.NavState{Path: PathSignIn, Message: msgResetDone}); err != nil {
		return c.fail(FlowResetPassword, "", err)
	}

	return c.succeed(FlowResetPassword, res, PathSignIn)
}

// Notice returns the navigation message addressed to path, if any.
func (c *Controller) Notice(ctx context.Context, clientID, path string) (string, error) {
	nav, err := c.storage.NavState(ctx, clientID, path)
	if err != nil || nav == nil {
		return "", err
	}
	return nav.Message, nil
}
