package app

import "github.com/charlesng35/authflow/internal/auth"

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultTokenTTL
	}
	rememberTTL := c.JWT.RememberTTL
	if rememberTTL <= 0 {
		rememberTTL = auth.DefaultRememberTTL
	}

	return auth.JWTConfig{
		Secret:      c.JWT.Secret,
		Issuer:      c.JWT.Issuer,
		TokenTTL:    ttl,
		RememberTTL: rememberTTL,
	}
}
