package flows

import (
	"context"

	"github.com/charlesng35/authflow/internal/backend"
	"github.com/charlesng35/authflow/internal/forms"
	"github.com/charlesng35/authflow/internal/storage"
)

// SignUp registers the account, stores token and profile, then sends the client to verification.
func (c *Controller) SignUp(ctx context.Context, clientID string, form forms.SignUp) *Outcome {
	if out := c.validate(FlowSignUp, form); out != nil {
		return out
	}

	res, out := c.submit(ctx, clientID, FlowSignUp, func(ctx context.Context) (*backend.Result, error) {
		return c.backend.SignUp(ctx, backend.SignUpRequest{
			FirstName:            form.FirstName,
			LastName:             form.LastName,
			Email:                form.Email,
			Password:             form.Password,
			AcceptTerms:          form.AcceptTerms,
			ReceiveNotifications: form.ReceiveNotifications,
		})
	})
	if out != nil {
		return out
	}
	if !res.Success {
		return c.reject(FlowSignUp, res, res.Message)
	}

	if err := c.storage.SetToken(ctx, clientID, res.Token); err != nil {
		return c.fail(FlowSignUp, "", err)
	}
	if err := c.storage.SetProfile(ctx, clientID, profileFromResult(res)); err != nil {
		return c.fail(FlowSignUp, "", err)
	}
	nav := storage.NavState{Path: PathVerifyEmail, Email: form.Email, FromSignup: true}
	if err := c.storage.SetNavState(ctx, clientID, nav); err != nil {
		return c.fail(FlowSignUp, "", err)
	}

	return c.succeed(FlowSignUp, res, PathVerifyEmail)
}

func profileFromResult(res *backend.Result) storage.Profile {
	if res == nil || res.Data == nil {
		return storage.Profile{}
	}
	return storage.Profile{
		FirstName:            res.Data.FirstName,
		LastName:             res.Data.LastName,
		Email:                res.Data.Email,
		EmailVerified:        res.Data.EmailVerified,
		ReceiveNotifications: res.Data.ReceiveNotifications,
	}
}
