package flows

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charlesng35/authflow/internal/backend"
	"github.com/charlesng35/authflow/internal/forms"
	"github.com/charlesng35/authflow/internal/storage"
	apperrors "github.com/charlesng35/authflow/pkg/errors"
)

// VerifyState is what the verification page needs to render.
type VerifyState struct {
	Email          string
	FromSignup     bool
	ResendCooldown time.Duration
}

// CooldownSeconds rounds the remaining cooldown up to whole seconds.
func (s VerifyState) CooldownSeconds() int {
	if s.ResendCooldown <= 0 {
		return 0
	}
	return int(math.Ceil(s.ResendCooldown.Seconds()))
}

// VerifyState resolves the address being verified: navigation state first, then the stored profile.
func (c *Controller) VerifyState(ctx context.Context, clientID string) (VerifyState, error) {
	var state VerifyState

	nav, err := c.storage.NavState(ctx, clientID, PathVerifyEmail)
	if err != nil {
		return state, err
	}
	if nav != nil {
		state.Email = strings.TrimSpace(nav.Email)
		state.FromSignup = nav.FromSignup
	}

	if state.Email == "" {
		profile, err := c.storage.Profile(ctx, clientID)
		if err != nil {
			return state, err
		}
		if profile != nil {
			state.Email = strings.TrimSpace(profile.Email)
		}
	}

	state.ResendCooldown, err = c.storage.CooldownRemaining(ctx, clientID, cooldownResend)
	return state, err
}

// VerifyEmail submits the code held by input. An explicit email overrides the resolved one;
// the stored profile is only marked verified when it belongs to the verified address.
func (c *Controller) VerifyEmail(ctx context.Context, clientID string, input *forms.CodeInput, email string) *Outcome {
	state, err := c.VerifyState(ctx, clientID)
	if err != nil {
		return c.fail(FlowVerifyEmail, "", err)
	}
	if email = strings.TrimSpace(email); email == "" {
		email = state.Email
	}
	if email == "" {
		return &Outcome{
			View:  ViewNoEmail,
			Toast: toastError(msgEmailUnavailable),
			Err:   apperrors.NewBadRequest(msgEmailUnavailable),
		}
	}

	if input == nil || !input.Complete() {
		invalid := c.validate(FlowVerifyEmail, forms.VerifyEmail{VerificationCode: codeOf(input), Email: email})
		out := &Outcome{
			Toast: toastError(msgCodeIncomplete),
			Err:   apperrors.ErrValidation.WithMessage(msgCodeIncomplete),
		}
		if invalid != nil {
			out.Fields = invalid.Fields
			out.Err = out.Err.WithFields(invalid.Fields)
		}
		return out
	}

	form := forms.VerifyEmail{VerificationCode: input.Code(), Email: email}
	if out := c.validate(FlowVerifyEmail, form); out != nil {
		return out
	}

	res, out := c.submit(ctx, clientID, FlowVerifyEmail, func(ctx context.Context) (*backend.Result, error) {
		return c.backend.VerifyEmail(ctx, form.VerificationCode, form.Email)
	})
	if out != nil {
		return out
	}
	if !res.Success {
		return c.reject(FlowVerifyEmail, res, res.Message)
	}

	verified := form.Email
	if res.Data != nil && res.Data.Email != "" {
		verified = res.Data.Email
	}
	if err := c.markVerified(ctx, clientID, verified); err != nil {
		return c.fail(FlowVerifyEmail, "", err)
	}
	if err := c.storage.SetNavState(ctx, clientID, storage.NavState{Path: PathHome, Message: msgVerifiedWelcome}); err != nil {
		return c.fail(FlowVerifyEmail, "", err)
	}

	return c.succeed(FlowVerifyEmail, res, PathHome)
}

// markVerified flags the stored profile when it belongs to email. A profile of another
// account is left untouched.
func (c *Controller) markVerified(ctx context.Context, clientID, email string) error {
	return c.storage.UpdateProfile(ctx, clientID, func(p *storage.Profile) bool {
		if !strings.EqualFold(strings.TrimSpace(p.Email), strings.TrimSpace(email)) {
			return false
		}
		p.EmailVerified = true
		return true
	})
}

// ResendVerification requests a new code, then starts the cooldown and clears the code input.
func (c *Controller) ResendVerification(ctx context.Context, clientID, email string) *Outcome {
	state, err := c.VerifyState(ctx, clientID)
	if err != nil {
		return c.fail(FlowResendVerification, "", err)
	}
	if email = strings.TrimSpace(email); email == "" {
		email = state.Email
	}
	if email == "" {
		return &Outcome{
			View:  ViewNoEmail,
			Toast: toastError(msgEmailUnavailable),
			Err:   apperrors.NewBadRequest(msgEmailUnavailable),
		}
	}

	if secs := state.CooldownSeconds(); secs > 0 {
		message := fmt.Sprintf(msgResendCooldown, secs)
		return &Outcome{
			Redirect: PathVerifyEmail,
			Toast:    toastError(message),
			Err:      apperrors.ErrResendCooldown.WithMessage(message),
		}
	}

	form := forms.ResendVerification{Email: email}
	if out := c.validate(FlowResendVerification, form); out != nil {
		out.Toast = toastError(out.Fields["email"])
		return out
	}

	res, out := c.submit(ctx, clientID, FlowResendVerification, func(ctx context.Context) (*backend.Result, error) {
		return c.backend.ResendVerification(ctx, form.Email)
	})
	if out != nil {
		return out
	}
	if !res.Success {
		out := c.reject(FlowResendVerification, res, res.Message)
		out.Redirect = PathVerifyEmail
		return out
	}

	if err := c.storage.StartCooldown(ctx, clientID, cooldownResend, c.resendCooldown); err != nil {
		return c.fail(FlowResendVerification, "", err)
	}

	out = c.succeed(FlowResendVerification, res, PathVerifyEmail)
	out.ResetCode = true
	return out
}

func codeOf(input *forms.CodeInput) string {
	if input == nil {
		return ""
	}
	return input.Code()
}

// VerifyEmailCode submits a code sent as one string, the way API clients send it.
func (c *Controller) VerifyEmailCode(ctx context.Context, clientID, code, email string) *Outcome {
	code = strings.TrimSpace(code)
	form := forms.VerifyEmail{VerificationCode: code, Email: strings.TrimSpace(email)}
	if out := c.validate(FlowVerifyEmail, form); out != nil {
		return out
	}

	input := forms.NewCodeInput()
	input.Paste(code)
	return c.VerifyEmail(ctx, clientID, input, email)
}
