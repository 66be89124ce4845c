package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charlesng35/authflow/pkg/crypto"
)

const jwtSecretBytes = 48

// runtimeDefault fills one setting that has no static default.
type runtimeDefault struct {
	key   string
	unset func(*Config) bool
	fill  func(*Config) error
}

var runtimeDefaults = []runtimeDefault{
	{
		key:   "auth.jwt.secret",
		unset: func(c *Config) bool { return strings.TrimSpace(c.Auth.JWT.Secret) == "" },
		fill: func(c *Config) error {
			secret, err := crypto.GenerateToken(jwtSecretBytes)
			if err != nil {
				return fmt.Errorf("generate jwt secret: %w", err)
			}
			c.Auth.JWT.Secret = secret
			return nil
		},
	},
	{
		key:   "server.base_url",
		unset: func(c *Config) bool { return strings.TrimSpace(c.Server.BaseURL) == "" },
		fill: func(c *Config) error {
			port := c.Server.Port
			if port <= 0 {
				port = 8000
			}
			c.Server.BaseURL = fmt.Sprintf("http://localhost:%d", port)
			return nil
		},
	},
}

// ApplyRuntimeDefaults fills settings that must exist even when no configuration file is supplied.
// The returned map names the generated keys so callers can log them without exposing values.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	generated := make(map[string]bool)
	for _, d := range runtimeDefaults {
		if !d.unset(cfg) {
			continue
		}
		if err := d.fill(cfg); err != nil {
			return nil, err
		}
		generated[d.key] = true
	}
	return generated, nil
}
