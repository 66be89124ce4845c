package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.EqualError(t, err, "jwt: secret must be provided")
}

func TestIssueAndValidate(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	svc, err := NewJWTService(JWTConfig{
		Secret:   "super-secret",
		Issuer:   "authflow",
		TokenTTL: time.Hour,
		Clock:    now,
	})
	require.NoError(t, err)

	token, err := svc.Issue(TokenInput{UserID: "user-123", Email: " Sara@Example.com "})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
	require.Equal(t, "sara@example.com", claims.Email)
	require.False(t, claims.EmailVerified)
	require.Equal(t, "authflow", claims.Issuer)
	require.True(t, claims.ExpiresAt.Time.Equal(current.Add(time.Hour)))
}

func TestIssueRememberUsesLongerTTL(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewJWTService(JWTConfig{Secret: "s", Clock: func() time.Time { return current }})
	require.NoError(t, err)

	token, err := svc.Issue(TokenInput{UserID: "u", Remember: true})
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	require.True(t, claims.ExpiresAt.Time.Equal(current.Add(DefaultRememberTTL)))
	require.Equal(t, DefaultTokenTTL, svc.TTL(false))
}

func TestIssueRequiresUserID(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "s"})
	require.NoError(t, err)

	_, err = svc.Issue(TokenInput{})
	require.Error(t, err)
}

func TestValidateInvalidSignature(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC) }

	issuer, err := NewJWTService(JWTConfig{Secret: "issuer-secret", Clock: now})
	require.NoError(t, err)

	token, err := issuer.Issue(TokenInput{UserID: "user-123"})
	require.NoError(t, err)

	verifier, err := NewJWTService(JWTConfig{Secret: "other-secret", Clock: now})
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))
}

func TestValidateExpired(t *testing.T) {
	current := time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	svc, err := NewJWTService(JWTConfig{Secret: "secret", TokenTTL: time.Minute, Clock: now})
	require.NoError(t, err)

	token, err := svc.Issue(TokenInput{UserID: "user-123"})
	require.NoError(t, err)

	current = current.Add(2 * time.Minute)

	_, err = svc.Validate(token)
	require.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestValidateWrongIssuer(t *testing.T) {
	a, err := NewJWTService(JWTConfig{Secret: "s", Issuer: "a"})
	require.NoError(t, err)
	b, err := NewJWTService(JWTConfig{Secret: "s", Issuer: "b"})
	require.NoError(t, err)

	token, err := a.Issue(TokenInput{UserID: "u"})
	require.NoError(t, err)

	_, err = b.Validate(token)
	require.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}
