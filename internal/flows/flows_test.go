package flows

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/authflow/internal/auth"
	"github.com/charlesng35/authflow/internal/backend"
	"github.com/charlesng35/authflow/internal/database/testutil"
	"github.com/charlesng35/authflow/internal/forms"
	"github.com/charlesng35/authflow/internal/storage"
	"github.com/charlesng35/authflow/pkg/mail"
)

const (
	clientID        = "client-1"
	mismatchMessage = "كلمات المرور غير متطابقة"
)

type stubBackend struct {
	mu    sync.Mutex
	calls map[string]int
	gate  chan struct{}
	res   *backend.Result
	err   error
}

func newStub(res *backend.Result) *stubBackend {
	return &stubBackend{calls: map[string]int{}, res: res}
}

func (s *stubBackend) record(ctx context.Context, name string) (*backend.Result, error) {
	s.mu.Lock()
	s.calls[name]++
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.res, s.err
}

func (s *stubBackend) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *stubBackend) SignIn(ctx context.Context, _, _ string, _ bool) (*backend.Result, error) {
	return s.record(ctx, "sign_in")
}

func (s *stubBackend) SignUp(ctx context.Context, _ backend.SignUpRequest) (*backend.Result, error) {
	return s.record(ctx, "sign_up")
}

func (s *stubBackend) VerifyEmail(ctx context.Context, _, _ string) (*backend.Result, error) {
	return s.record(ctx, "verify_email")
}

func (s *stubBackend) ResendVerification(ctx context.Context, _ string) (*backend.Result, error) {
	return s.record(ctx, "resend_verification")
}

func (s *stubBackend) ForgotPassword(ctx context.Context, _ string) (*backend.Result, error) {
	return s.record(ctx, "forgot_password")
}

func (s *stubBackend) ResetPassword(ctx context.Context, _, _ string) (*backend.Result, error) {
	return s.record(ctx, "reset_password")
}

func newController(t *testing.T, b backend.Backend, opts ...Option) *Controller {
	t.Helper()
	cs, err := storage.NewClientStorage(storage.NewMemoryStore())
	require.NoError(t, err)
	c, err := NewController(b, cs, opts...)
	require.NoError(t, err)
	return c
}

func validSignUpForm() forms.SignUp {
	return forms.SignUp{
		FirstName:       "Sara",
		LastName:        "Ali",
		Email:           "sara@example.com",
		Password:        "Secret1!pass",
		ConfirmPassword: "Secret1!pass",
		AcceptTerms:     true,
	}
}

func TestNewControllerRequiresDependencies(t *testing.T) {
	_, err := NewController(nil, nil)
	require.Error(t, err)

	_, err = NewController(newStub(nil), nil)
	require.Error(t, err)
}

func TestSignUpStoresTokenAndNavigatesToVerification(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	tokens, err := auth.NewJWTService(auth.JWTConfig{Secret: "secret"})
	require.NoError(t, err)
	sim, err := backend.NewSimulated(db, tokens, mail.NewLogMailer(), backend.WithLatency(0))
	require.NoError(t, err)

	c := newController(t, sim)
	ctx := context.Background()

	out := c.SignUp(ctx, clientID, validSignUpForm())
	require.Nil(t, out.Err)
	require.True(t, out.Succeeded())
	require.Equal(t, PathVerifyEmail, out.Redirect)
	require.Equal(t, storage.ToastSuccess, out.Toast.Variant)

	token, err := c.Storage().Token(ctx, clientID)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	_, err = tokens.Validate(token)
	require.NoError(t, err)

	profile, err := c.Storage().Profile(ctx, clientID)
	require.NoError(t, err)
	require.Equal(t, "sara@example.com", profile.Email)
	require.False(t, profile.EmailVerified)

	state, err := c.VerifyState(ctx, clientID)
	require.NoError(t, err)
	require.Equal(t, "sara@example.com", state.Email)
	require.True(t, state.FromSignup)
}

func TestSignUpInvalidFormDoesNotCallBackend(t *testing.T) {
	stub := newStub(&backend.Result{Success: true})
	c := newController(t, stub)

	form := validSignUpForm()
	form.ConfirmPassword = "Mismatch1!"

	out := c.SignUp(context.Background(), clientID, form)
	require.NotNil(t, out.Err)
	require.Equal(t, "VALIDATION_FAILED", out.Err.Code)
	require.Equal(t, mismatchMessage, out.Fields["confirmPassword"])
	require.Empty(t, out.Redirect)
	require.Zero(t, stub.count("sign_up"))
}

func TestSignUpRejectedKeepsForm(t *testing.T) {
	stub := newStub(&backend.Result{Success: false, Message: "taken"})
	c := newController(t, stub)

	out := c.SignUp(context.Background(), clientID, validSignUpForm())
	require.Empty(t, out.Redirect)
	require.Equal(t, &storage.Toast{Variant: storage.ToastError, Message: "taken"}, out.Toast)
	require.Equal(t, "FLOW_REJECTED", out.Err.Code)

	token, err := c.Storage().Token(context.Background(), clientID)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestSignInOutcomes(t *testing.T) {
	stub := newStub(&backend.Result{Success: true, Message: "ok", Token: "tok"})
	c := newController(t, stub)
	ctx := context.Background()

	out := c.SignIn(ctx, clientID, forms.SignIn{Email: "a@b.co", Password: "Secret1!", RememberMe: true})
	require.True(t, out.Succeeded())
	require.Equal(t, PathHome, out.Redirect)
	require.True(t, out.Remember)

	token, err := c.Storage().Token(ctx, clientID)
	require.NoError(t, err)
	require.Equal(t, "tok", token)

	stub.res = &backend.Result{Success: false, Message: "backend says no"}
	out = c.SignIn(ctx, clientID, forms.SignIn{Email: "a@b.co", Password: "Secret1!"})
	require.Equal(t, msgSignInFailed, out.Toast.Message)
	require.Equal(t, "INVALID_CREDENTIALS", out.Err.Code)

	stub.err = errors.New("boom")
	out = c.SignIn(ctx, clientID, forms.SignIn{Email: "a@b.co", Password: "Secret1!"})
	require.Equal(t, msgSignInError, out.Toast.Message)
	require.Equal(t, "INTERNAL_SERVER_ERROR", out.Err.Code)
}

func TestConcurrentSubmissionRejected(t *testing.T) {
	stub := newStub(&backend.Result{Success: true, Token: "tok"})
	stub.gate = make(chan struct{})
	c := newController(t, stub)
	form := forms.SignIn{Email: "a@b.co", Password: "Secret1!"}

	done := make(chan *Outcome, 1)
	go func() {
		done <- c.SignIn(context.Background(), clientID, form)
	}()

	require.Eventually(t, func() bool {
		return c.pending.Pending(clientID, FlowSignIn)
	}, time.Second, 5*time.Millisecond)

	second := c.SignIn(context.Background(), clientID, form)
	require.Equal(t, "SUBMISSION_PENDING", second.Err.Code)
	require.Equal(t, msgPending, second.Toast.Message)

	require.False(t, c.pending.Pending("client-2", FlowSignIn))

	close(stub.gate)
	first := <-done
	require.True(t, first.Succeeded())
	require.False(t, c.pending.Pending(clientID, FlowSignIn))
	require.Equal(t, 1, stub.count("sign_in"))
}

func TestVerifyEmailWithoutEmailShowsErrorView(t *testing.T) {
	stub := newStub(&backend.Result{Success: true})
	c := newController(t, stub)

	out := c.VerifyEmail(context.Background(), clientID, forms.ReplayCodeInput([]string{"1", "2", "3", "4", "5", "6"}, ""), "")
	require.Equal(t, ViewNoEmail, out.View)
	require.Zero(t, stub.count("verify_email"))
}

func TestVerifyEmailIncompleteCode(t *testing.T) {
	stub := newStub(&backend.Result{Success: true})
	c := newController(t, stub)

	out := c.VerifyEmail(context.Background(), clientID, forms.ReplayCodeInput([]string{"1", "2", "3"}, ""), "a@b.co")
	require.Equal(t, msgCodeIncomplete, out.Toast.Message)
	require.Equal(t, "VALIDATION_FAILED", out.Err.Code)
	require.Zero(t, stub.count("verify_email"))
}

func TestVerifyEmailSuccessMarksProfileVerified(t *testing.T) {
	stub := newStub(&backend.Result{Success: true, Message: "verified"})
	c := newController(t, stub)
	ctx := context.Background()
	require.NoError(t, c.Storage().SetProfile(ctx, clientID, storage.Profile{Email: "a@b.co"}))

	out := c.VerifyEmail(ctx, clientID, forms.ReplayCodeInput(nil, "123456"), "")
	require.True(t, out.Succeeded())
	require.Equal(t, PathHome, out.Redirect)

	profile, err := c.Storage().Profile(ctx, clientID)
	require.NoError(t, err)
	require.True(t, profile.EmailVerified)

	notice, err := c.Notice(ctx, clientID, PathHome)
	require.NoError(t, err)
	require.Equal(t, msgVerifiedWelcome, notice)
}

func TestVerifyEmailOtherAccountLeavesProfileUnverified(t *testing.T) {
	stub := newStub(&backend.Result{Success: true, Message: "verified", Data: &backend.UserProfile{Email: "other@b.co", EmailVerified: true}})
	c := newController(t, stub)
	ctx := context.Background()
	require.NoError(t, c.Storage().SetProfile(ctx, clientID, storage.Profile{Email: "mine@b.co"}))

	out := c.VerifyEmailCode(ctx, clientID, "123456", "other@b.co")
	require.True(t, out.Succeeded())

	profile, err := c.Storage().Profile(ctx, clientID)
	require.NoError(t, err)
	require.Equal(t, "mine@b.co", profile.Email)
	require.False(t, profile.EmailVerified)
}

func TestVerifyEmailCode(t *testing.T) {
	stub := newStub(&backend.Result{Success: true, Message: "verified"})
	c := newController(t, stub)
	ctx := context.Background()

	out := c.VerifyEmailCode(ctx, clientID, "1234567", "a@b.co")
	require.True(t, out.Fields.Has("verificationCode"))
	require.Zero(t, stub.count("verify_email"))

	out = c.VerifyEmailCode(ctx, clientID, "12a456", "a@b.co")
	require.True(t, out.Fields.Has("verificationCode"))
	require.Zero(t, stub.count("verify_email"))

	out = c.VerifyEmailCode(ctx, clientID, " 123456 ", "a@b.co")
	require.True(t, out.Succeeded())
	require.Equal(t, 1, stub.count("verify_email"))
}

func TestResendVerificationCooldown(t *testing.T) {
	stub := newStub(&backend.Result{Success: true, Message: "sent"})
	c := newController(t, stub, WithResendCooldown(time.Minute))
	ctx := context.Background()

	out := c.ResendVerification(ctx, clientID, "")
	require.Equal(t, ViewNoEmail, out.View)
	require.Equal(t, msgEmailUnavailable, out.Toast.Message)

	out = c.ResendVerification(ctx, clientID, "a@b.co")
	require.True(t, out.Succeeded())
	require.True(t, out.ResetCode)

	state, err := c.VerifyState(ctx, clientID)
	require.NoError(t, err)
	require.Greater(t, state.CooldownSeconds(), 0)
	require.LessOrEqual(t, state.CooldownSeconds(), 60)

	out = c.ResendVerification(ctx, clientID, "a@b.co")
	require.Equal(t, "RESEND_COOLDOWN", out.Err.Code)
	require.Equal(t, 1, stub.count("resend_verification"))
}

func TestForgotPasswordSubmittedAndAgain(t *testing.T) {
	stub := newStub(&backend.Result{Success: true, Message: "sent"})
	c := newController(t, stub)
	ctx := context.Background()

	out := c.ForgotPassword(ctx, clientID, forms.ForgotPassword{Email: "a@b.co"})
	require.True(t, out.Succeeded())
	require.Equal(t, ViewSubmitted, out.View)

	submitted, email, err := c.ForgotState(ctx, clientID)
	require.NoError(t, err)
	require.True(t, submitted)
	require.Equal(t, "a@b.co", email)

	require.NoError(t, c.ForgotAgain(ctx, clientID))
	submitted, _, err = c.ForgotState(ctx, clientID)
	require.NoError(t, err)
	require.False(t, submitted)
}

func TestResetPassword(t *testing.T) {
	stub := newStub(&backend.Result{Success: true, Message: "changed"})
	c := newController(t, stub)
	ctx := context.Background()
	require.NoError(t, c.Storage().SetToken(ctx, clientID, "tok"))
	require.NoError(t, c.Storage().SetProfile(ctx, clientID, storage.Profile{Email: "a@b.co"}))

	out := c.ResetPassword(ctx, clientID, forms.ResetPassword{NewPassword: "Secret1!", ConfirmNewPassword: "Secret1!"})
	require.Equal(t, ViewInvalidLink, out.View)
	require.Zero(t, stub.count("reset_password"))

	out = c.ResetPassword(ctx, clientID, forms.ResetPassword{Token: "t", NewPassword: "Secret1!", ConfirmNewPassword: "Secret1!"})
	require.True(t, out.Succeeded())
	require.Equal(t, PathSignIn, out.Redirect)

	token, err := c.Storage().Token(ctx, clientID)
	require.NoError(t, err)
	require.Empty(t, token)
	profile, err := c.Storage().Profile(ctx, clientID)
	require.NoError(t, err)
	require.Nil(t, profile)

	notice, err := c.Notice(ctx, clientID, PathSignIn)
	require.NoError(t, err)
	require.Equal(t, msgResetDone, notice)
}

func TestSignOut(t *testing.T) {
	c := newController(t, newStub(nil))
	ctx := context.Background()
	require.NoError(t, c.Storage().SetToken(ctx, clientID, "tok"))

	require.NoError(t, c.SignOut(ctx, clientID))
	token, err := c.Storage().Token(ctx, clientID)
	require.NoError(t, err)
	require.Empty(t, token)
}
