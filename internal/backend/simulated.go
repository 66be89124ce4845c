package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/authflow/internal/auth"
	"github.com/charlesng35/authflow/internal/models"
	"github.com/charlesng35/authflow/pkg/crypto"
	"github.com/charlesng35/authflow/pkg/logger"
	"github.com/charlesng35/authflow/pkg/mail"
	"github.com/charlesng35/authflow/pkg/metrics"
)

const (
	DefaultLatency     = time.Second
	DefaultCodeTTL     = 15 * time.Minute
	DefaultResetTTL    = time.Hour
	DefaultMaxAttempts = 5

	codeDigits      = 6
	resetTokenBytes = 32
)

// Option customises the Simulated backend.
type Option func(*Simulated)

// WithLatency sets the fixed delay applied to every call. Zero disables the delay.
func WithLatency(d time.Duration) Option {
	return func(s *Simulated) {
		if d >= 0 {
			s.latency = d
		}
	}
}

// WithCodeTTL overrides the verification code lifetime.
func WithCodeTTL(d time.Duration) Option {
	return func(s *Simulated) {
		if d > 0 {
			s.codeTTL = d
		}
	}
}

// WithResetTTL overrides the reset link lifetime.
func WithResetTTL(d time.Duration) Option {
	return func(s *Simulated) {
		if d > 0 {
			s.resetTTL = d
		}
	}
}

// WithMaxAttempts bounds wrong guesses per verification code.
func WithMaxAttempts(n int) Option {
	return func(s *Simulated) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithFixedCode makes every issued verification code equal to code.
func WithFixedCode(code string) Option {
	return func(s *Simulated) {
		s.fixedCode = strings.TrimSpace(code)
	}
}

// WithBaseURL sets the origin used in reset links.
func WithBaseURL(base string) Option {
	return func(s *Simulated) {
		s.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithClock injects a custom time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Simulated) {
		if clock != nil {
			s.now = clock
		}
	}
}

// Simulated is a Backend backed by the local database. Every call waits a fixed latency first.
type Simulated struct {
	db          *gorm.DB
	tokens      *auth.JWTService
	mailer      mail.Mailer
	sanitizer   *bluemonday.Policy
	log         *zap.Logger
	latency     time.Duration
	codeTTL     time.Duration
	resetTTL    time.Duration
	maxAttempts int
	fixedCode   string
	baseURL     string
	now         func() time.Time
}

var _ Backend = (*Simulated)(nil)

// NewSimulated constructs the simulated backend.
func NewSimulated(db *gorm.DB, tokens *auth.JWTService, mailer mail.Mailer, opts ...Option) (*Simulated, error) {
	if db == nil {
		return nil, errors.New("backend: db is required")
	}
	if tokens == nil {
		return nil, errors.New("backend: token service is required")
	}
	if mailer == nil {
		mailer = mail.NewLogMailer()
	}

	s := &Simulated{
		db:          db,
		tokens:      tokens,
		mailer:      mailer,
		sanitizer:   bluemonday.StrictPolicy(),
		log:         logger.WithModule("backend"),
		latency:     DefaultLatency,
		codeTTL:     DefaultCodeTTL,
		resetTTL:    DefaultResetTTL,
		maxAttempts: DefaultMaxAttempts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SignIn checks the credentials and issues a token.
func (s *Simulated) SignIn(ctx context.Context, email, password string, remember bool) (res *Result, err error) {
	defer s.observe("sign_in", time.Now(), &res, &err)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !crypto.VerifyPassword(user.Password, password) {
		return failure(msgInvalidCredentials), nil
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("backend: record login: %w", err)
	}

	token, err := s.tokens.Issue(auth.TokenInput{
		UserID:        user.ID,
		Email:         user.Email,
		EmailVerified: user.EmailVerified(),
		Remember:      remember,
	})
	if err != nil {
		return nil, err
	}

	res = success(msgSignInSuccess)
	res.Token = token
	res.Data = profileOf(user)
	return res, nil
}

// SignUp registers an account and mails the first verification code.
func (s *Simulated) SignUp(ctx context.Context, req SignUpRequest) (res *Result, err error) {
	defer s.observe("sign_up", time.Now(), &res, &err)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	if !req.AcceptTerms {
		return failure(msgTermsRequired), nil
	}

	email := normaliseEmail(req.Email)
	existing, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return failure(msgEmailTaken), nil
	}

	hashed, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("backend: hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		Email:                email,
		Password:             hashed,
		FirstName:            s.sanitizeName(req.FirstName),
		LastName:             s.sanitizeName(req.LastName),
		AcceptedTermsAt:      &now,
		ReceiveNotifications: req.ReceiveNotifications,
	}

	var code string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		var issueErr error
		code, issueErr = s.issueCode(tx, user.ID)
		return issueErr
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return failure(msgEmailTaken), nil
		}
		return nil, fmt.Errorf("backend: create user: %w", err)
	}

	s.deliver(ctx, user.Email, subjectVerification, verificationBody(code))

	token, err := s.tokens.Issue(auth.TokenInput{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, err
	}

	res = success(msgSignUpSuccess)
	res.Token = token
	res.Data = profileOf(user)
	return res, nil
}

// VerifyEmail checks code against the latest pending code issued for email.
func (s *Simulated) VerifyEmail(ctx context.Context, code, email string) (res *Result, err error) {
	defer s.observe("verify_email", time.Now(), &res, &err)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return failure(msgUnknownAccount), nil
	}
	if user.EmailVerified() {
		res = success(msgAlreadyVerified)
		res.Data = profileOf(user)
		return res, nil
	}

	var verification models.EmailVerification
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND verified_at IS NULL", user.ID).
		Order("created_at DESC").
		First(&verification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return failure(msgCodeExpired), nil
	}
	if err != nil {
		return nil, fmt.Errorf("backend: find verification: %w", err)
	}

	now := s.now()
	if !verification.ExpiresAt.After(now) {
		return failure(msgCodeExpired), nil
	}
	if verification.Attempts >= s.maxAttempts {
		return failure(msgTooManyAttempts), nil
	}

	if !crypto.EqualHashes(verification.CodeHash, codeHash(user.ID, code)) {
		attempts := verification.Attempts + 1
		if err := s.db.WithContext(ctx).Model(&verification).Update("attempts", attempts).Error; err != nil {
			return nil, fmt.Errorf("backend: count attempt: %w", err)
		}
		if attempts >= s.maxAttempts {
			return failure(msgTooManyAttempts), nil
		}
		return failure(msgInvalidCode), nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&verification).Update("verified_at", now).Error; err != nil {
			return err
		}
		return tx.Model(user).Update("email_verified_at", now).Error
	})
	if err != nil {
		return nil, fmt.Errorf("backend: mark verified: %w", err)
	}
	user.EmailVerifiedAt = &now

	res = success(msgVerifySuccess)
	res.Data = profileOf(user)
	return res, nil
}

// ResendVerification replaces any pending code with a fresh one.
func (s *Simulated) ResendVerification(ctx context.Context, email string) (res *Result, err error) {
	defer s.observe("resend_verification", time.Now(), &res, &err)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return failure(msgUnknownAccount), nil
	}
	if user.EmailVerified() {
		return failure(msgAlreadyVerified), nil
	}

	var code string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var issueErr error
		code, issueErr = s.issueCode(tx, user.ID)
		return issueErr
	})
	if err != nil {
		return nil, err
	}
	s.deliver(ctx, user.Email, subjectVerification, verificationBody(code))

	return success(msgResendSuccess), nil
}

// ForgotPassword mails a reset link when the account exists. The result is the same either way.
func (s *Simulated) ForgotPassword(ctx context.Context, email string) (res *Result, err error) {
	defer s.observe("forgot_password", time.Now(), &res, &err)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.log.Debug("reset requested for unknown account")
		return success(msgForgotSuccess), nil
	}

	token, err := crypto.GenerateToken(resetTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("backend: generate reset token: %w", err)
	}

	record := models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: crypto.HashToken(token),
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("backend: store reset token: %w", err)
	}

	s.deliver(ctx, user.Email, subjectReset, resetBody(s.resetLink(token)))
	return success(msgForgotSuccess), nil
}

// ResetPassword consumes a reset token and replaces the password.
func (s *Simulated) ResetPassword(ctx context.Context, token, newPassword string) (res *Result, err error) {
	defer s.observe("reset_password", time.Now(), &res, &err)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return failure(msgInvalidResetToken), nil
	}

	var record models.PasswordResetToken
	err = s.db.WithContext(ctx).Where("token_hash = ?", crypto.HashToken(token)).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return failure(msgInvalidResetToken), nil
	}
	if err != nil {
		return nil, fmt.Errorf("backend: find reset token: %w", err)
	}

	now := s.now()
	if record.UsedAt != nil || !record.ExpiresAt.After(now) {
		return failure(msgInvalidResetToken), nil
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("backend: hash password: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).Where("id = ?", record.UserID).Update("password", hashed)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		// every outstanding link for the account is spent
		return tx.Model(&models.PasswordResetToken{}).
			Where("user_id = ? AND used_at IS NULL", record.UserID).
			Update("used_at", now).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return failure(msgInvalidResetToken), nil
	}
	if err != nil {
		return nil, fmt.Errorf("backend: reset password: %w", err)
	}

	return success(msgResetSuccess), nil
}

func (s *Simulated) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Simulated) observe(operation string, started time.Time, res **Result, err *error) {
	outcome := "error"
	switch {
	case *err != nil:
	case *res != nil && (*res).Success:
		outcome = "success"
	default:
		outcome = "failure"
	}
	metrics.BackendLatency.WithLabelValues(operation, outcome).Observe(time.Since(started).Seconds())
}

func (s *Simulated) findUser(ctx context.Context, email string) (*models.User, error) {
	email = normaliseEmail(email)
	if email == "" {
		return nil, nil
	}
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("backend: find user: %w", err)
	}
	return &user, nil
}

// issueCode drops pending codes for the user and stores a new one.
func (s *Simulated) issueCode(tx *gorm.DB, userID string) (string, error) {
	code := s.fixedCode
	if code == "" {
		var err error
		code, err = crypto.NewNumericCode(codeDigits)
		if err != nil {
			return "", fmt.Errorf("backend: generate code: %w", err)
		}
	}

	if err := tx.Where("user_id = ? AND verified_at IS NULL", userID).
		Delete(&models.EmailVerification{}).Error; err != nil {
		return "", fmt.Errorf("backend: clear pending codes: %w", err)
	}

	verification := models.EmailVerification{
		UserID:    userID,
		CodeHash:  codeHash(userID, code),
		ExpiresAt: s.now().Add(s.codeTTL),
	}
	if err := tx.Create(&verification).Error; err != nil {
		return "", fmt.Errorf("backend: store code: %w", err)
	}
	return code, nil
}

// deliver sends mail. Delivery failures are logged; the account state is already committed.
func (s *Simulated) deliver(ctx context.Context, to, subject, body string) {
	err := s.mailer.Send(ctx, mail.Message{To: []string{to}, Subject: subject, Body: body})
	if err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		s.log.Warn("mail delivery failed", zap.String("subject", subject), zap.Error(err))
	}
}

func (s *Simulated) resetLink(token string) string {
	return s.baseURL + "/auth/reset-password?token=" + url.QueryEscape(token)
}

// sanitizeName strips markup from names passed by callers that skip form validation.
func (s *Simulated) sanitizeName(name string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(strings.TrimSpace(name)))
}

func codeHash(userID, code string) string {
	return crypto.HashToken(userID + ":" + strings.TrimSpace(code))
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func profileOf(user *models.User) *UserProfile {
	return &UserProfile{
		ID:                   user.ID,
		FirstName:            user.FirstName,
		LastName:             user.LastName,
		Email:                user.Email,
		EmailVerified:        user.EmailVerified(),
		ReceiveNotifications: user.ReceiveNotifications,
	}
}

func verificationBody(code string) string {
	return fmt.Sprintf("رمز التحقق الخاص بك هو: %s\n\nإذا لم تقم بإنشاء حساب، يمكنك تجاهل هذه الرسالة.\n", code)
}

func resetBody(link string) string {
	return fmt.Sprintf("لإعادة تعيين كلمة المرور، يرجى زيارة الرابط التالي:\n%s\n\nإذا لم تطلب ذلك، يمكنك تجاهل هذه الرسالة.\n", link)
}
