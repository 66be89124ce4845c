package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Config represents the runtime configuration for the authflow server.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Simulation  SimulationConfig  `mapstructure:"simulation"`
	Email       EmailConfig       `mapstructure:"email"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int             `mapstructure:"port"`
	BaseURL     string          `mapstructure:"base_url"`
	LogLevel    string          `mapstructure:"log_level"`
	LogEncoding string          `mapstructure:"log_encoding"`
	RememberFor time.Duration   `mapstructure:"remember_for"`
	CORSOrigins []string        `mapstructure:"cors_origins"`
	CSRF        CSRFConfig      `mapstructure:"csrf"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

// CSRFConfig controls CSRF protection middleware.
type CSRFConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// RateLimitConfig bounds form submissions per client IP and route.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// StorageConfig selects where per-client storage and rate limit counters live.
type StorageConfig struct {
	// Backend is one of database, redis or memory.
	Backend  string        `mapstructure:"backend"`
	EntryTTL time.Duration `mapstructure:"entry_ttl"`
	Redis    RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds Redis connection options.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// AuthConfig captures token settings.
type AuthConfig struct {
	JWT JWTSettings `mapstructure:"jwt"`
}

// JWTSettings configures the tokens the simulated backend issues.
type JWTSettings struct {
	Secret      string        `mapstructure:"secret"`
	Issuer      string        `mapstructure:"issuer"`
	TTL         time.Duration `mapstructure:"ttl"`
	RememberTTL time.Duration `mapstructure:"remember_ttl"`
}

// SimulationConfig tunes the simulated backend.
type SimulationConfig struct {
	Latency        time.Duration     `mapstructure:"latency"`
	CodeTTL        time.Duration     `mapstructure:"code_ttl"`
	ResetTTL       time.Duration     `mapstructure:"reset_ttl"`
	MaxAttempts    int               `mapstructure:"max_attempts"`
	ResendCooldown time.Duration     `mapstructure:"resend_cooldown"`
	FixedCode      string            `mapstructure:"fixed_code"`
	Demo           DemoAccountConfig `mapstructure:"demo"`
}

// DemoAccountConfig describes the verified account seeded at start-up.
type DemoAccountConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Email     string `mapstructure:"email"`
	Password  string `mapstructure:"password"`
	FirstName string `mapstructure:"first_name"`
	LastName  string `mapstructure:"last_name"`
}

// EmailConfig captures outbound email settings.
type EmailConfig struct {
	SMTP SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig defines SMTP dialer settings for sending email.
type SMTPConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	UseTLS   bool          `mapstructure:"use_tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MaintenanceConfig schedules the purge of expired records.
type MaintenanceConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// Storage backends.
const (
	StorageDatabase = "database"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("AUTHFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

// Validate reports every setting that prevents the server from starting.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	var err error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if strings.TrimSpace(c.Auth.JWT.Secret) == "" {
		err = multierr.Append(err, errors.New("auth.jwt.secret must be configured"))
	}
	switch c.StorageBackend() {
	case StorageDatabase, StorageMemory:
	case StorageRedis:
		if strings.TrimSpace(c.Storage.Redis.Address) == "" {
			err = multierr.Append(err, errors.New("storage.redis.address is required for the redis backend"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("storage.backend %q is not supported", c.Storage.Backend))
	}
	if code := strings.TrimSpace(c.Simulation.FixedCode); code != "" && !isSixDigits(code) {
		err = multierr.Append(err, errors.New("simulation.fixed_code must be six digits"))
	}
	if c.Simulation.Demo.Enabled && (c.Simulation.Demo.Email == "" || c.Simulation.Demo.Password == "") {
		err = multierr.Append(err, errors.New("simulation.demo requires email and password"))
	}
	return err
}

// StorageBackend returns the normalised storage backend name.
func (c *Config) StorageBackend() string {
	backend := strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if backend == "" {
		return StorageDatabase
	}
	return backend
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_encoding", "json")
	v.SetDefault("server.remember_for", "720h") // 30 days
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.csrf.enabled", true)
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.requests", 20)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/authflow.sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.postgres.host", "")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "")
	v.SetDefault("database.postgres.username", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.mysql.host", "")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.database", "")
	v.SetDefault("database.mysql.username", "")
	v.SetDefault("database.mysql.password", "")

	v.SetDefault("storage.backend", StorageDatabase)
	v.SetDefault("storage.entry_ttl", "720h")
	v.SetDefault("storage.redis.address", "127.0.0.1:6379")
	v.SetDefault("storage.redis.username", "")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.tls", false)
	v.SetDefault("storage.redis.timeout", "5s")

	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.issuer", "authflow")
	v.SetDefault("auth.jwt.ttl", "24h")
	v.SetDefault("auth.jwt.remember_ttl", "720h")

	v.SetDefault("simulation.latency", "1s")
	v.SetDefault("simulation.code_ttl", "15m")
	v.SetDefault("simulation.reset_ttl", "1h")
	v.SetDefault("simulation.max_attempts", 5)
	v.SetDefault("simulation.resend_cooldown", "60s")
	v.SetDefault("simulation.fixed_code", "")
	v.SetDefault("simulation.demo.enabled", true)
	v.SetDefault("simulation.demo.email", "demo@example.com")
	v.SetDefault("simulation.demo.password", "Demo@1234")
	v.SetDefault("simulation.demo.first_name", "Demo")
	v.SetDefault("simulation.demo.last_name", "User")

	v.SetDefault("email.smtp.enabled", false)
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.from", "")
	v.SetDefault("email.smtp.use_tls", false)
	v.SetDefault("email.smtp.timeout", "10s")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.schedule", "@every 15m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

func isSixDigits(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
