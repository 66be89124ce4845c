package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultTokenTTL is the validity period of tokens issued without remember-me.
	DefaultTokenTTL = 24 * time.Hour
	// DefaultRememberTTL is the validity period of tokens issued with remember-me.
	DefaultRememberTTL = 30 * 24 * time.Hour
)

// JWTConfig bundles the configuration required to build a JWTService.
type JWTConfig struct {
	Secret      string
	Issuer      string
	TokenTTL    time.Duration
	RememberTTL time.Duration
	Clock       func() time.Time
}

// Claims are embedded in tokens handed to clients after sign-in or sign-up.
type Claims struct {
	UserID        string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"ev"`
	jwt.RegisteredClaims
}

// TokenInput holds the parameters used when issuing a token.
type TokenInput struct {
	UserID        string
	Email         string
	EmailVerified bool
	Remember      bool
}

// JWTService issues and validates the opaque client tokens.
type JWTService struct {
	secret      []byte
	issuer      string
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

// NewJWTService constructs a JWTService instance when provided with the required configuration.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: secret must be provided")
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	rememberTTL := cfg.RememberTTL
	if rememberTTL <= 0 {
		rememberTTL = DefaultRememberTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &JWTService{
		secret:      []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		ttl:         ttl,
		rememberTTL: rememberTTL,
		now:         now,
	}, nil
}

// TTL reports the lifetime a token issued with the given remember flag receives.
func (s *JWTService) TTL(remember bool) time.Duration {
	if remember {
		return s.rememberTTL
	}
	return s.ttl
}

// Issue signs a token for the supplied user.
func (s *JWTService) Issue(input TokenInput) (string, error) {
	if input.UserID == "" {
		return "", errors.New("jwt: user id is required")
	}

	now := s.now()
	claims := &Claims{
		UserID:        input.UserID,
		Email:         strings.ToLower(strings.TrimSpace(input.Email)),
		EmailVerified: input.EmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   input.UserID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL(input.Remember))),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// Validate parses and validates a signed token, returning its claims.
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("jwt: token string is empty")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims Claims
	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt: parse token: %w", err)
	}

	if claims.UserID == "" || claims.UserID != claims.Subject {
		return nil, errors.New("jwt: missing user id claim")
	}

	return &claims, nil
}
