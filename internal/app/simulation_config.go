package app

import (
	"strings"

	"github.com/charlesng35/authflow/internal/backend"
)

// BackendOptions converts the simulation section into simulated backend options.
// Zero TTLs and attempts keep the backend defaults. A zero latency disables the delay.
func (c Config) BackendOptions() []backend.Option {
	sim := c.Simulation
	opts := []backend.Option{
		backend.WithLatency(sim.Latency),
		backend.WithCodeTTL(sim.CodeTTL),
		backend.WithResetTTL(sim.ResetTTL),
		backend.WithMaxAttempts(sim.MaxAttempts),
		backend.WithBaseURL(strings.TrimSpace(c.Server.BaseURL)),
	}
	if code := strings.TrimSpace(sim.FixedCode); code != "" {
		opts = append(opts, backend.WithFixedCode(code))
	}
	return opts
}

// DemoAccount converts the demo section into the account seeded at start-up.
func (c SimulationConfig) DemoAccount() backend.DemoAccount {
	return backend.DemoAccount{
		Email:     strings.TrimSpace(c.Demo.Email),
		Password:  c.Demo.Password,
		FirstName: strings.TrimSpace(c.Demo.FirstName),
		LastName:  strings.TrimSpace(c.Demo.LastName),
	}
}
