package flows

import (
	"context"

	"github.com/charlesng35/authflow/internal/backend"
	"github.com/charlesng35/authflow/internal/forms"
	apperrors "github.com/charlesng35/authflow/pkg/errors"
)

// SignIn authenticates the client and stores the issued token.
func (c *Controller) SignIn(ctx context.Context, clientID string, form forms.SignIn) *Outcome {
	if out := c.validate(FlowSignIn, form); out != nil {
		return out
	}

	res, out := c.submit(ctx, clientID, FlowSignIn, func(ctx context.Context) (*backend.Result, error) {
		return c.backend.SignIn(ctx, form.Email, form.Password, form.RememberMe)
	})
	if out != nil {
		return out
	}
	if !res.Success {
		out := c.reject(FlowSignIn, res, msgSignInFailed)
		out.Err = apperrors.ErrInvalidCredentials.WithMessage(msgSignInFailed)
		return out
	}

	if err := c.storage.SetToken(ctx, clientID, res.Token); err != nil {
		return c.fail(FlowSignIn, "", err)
	}

	out = c.succeed(FlowSignIn, res, PathHome)
	out.Remember = form.RememberMe
	return out
}
