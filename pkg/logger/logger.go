package logger

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	current atomic.Pointer[zap.Logger]
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	current.Store(zap.NewNop())
}

// Options controls how the global logger is built.
type Options struct {
	// Level is a zap level name; unknown names fall back to info.
	Level string
	// Encoding is "json" (default) or "console".
	Encoding string
}

// Init configures the global JSON logger at the given level.
func Init(lvl string) error {
	return InitWithOptions(Options{Level: lvl})
}

// InitWithOptions builds a production logger from opts and installs it globally.
func InitWithOptions(opts Options) error {
	SetLevel(opts.Level)

	cfg := zap.NewProductionConfig()
	cfg.Level = level
	if strings.EqualFold(strings.TrimSpace(opts.Encoding), "console") {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	built, err := cfg.Build()
	if err != nil {
		return err
	}
	Replace(built)
	return nil
}

// SetLevel changes the level of loggers built by Init without rebuilding them.
func SetLevel(lvl string) {
	parsed, err := zapcore.ParseLevel(strings.TrimSpace(lvl))
	if err != nil {
		parsed = zapcore.InfoLevel
	}
	level.SetLevel(parsed)
}

// Replace swaps the global logger. A nil logger installs a no-op logger.
func Replace(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(l)
}

// Logger returns the configured global logger.
func Logger() *zap.Logger {
	return current.Load()
}

// Sync flushes buffered log entries.
func Sync() error {
	return Logger().Sync()
}

// WithModule returns a child logger annotated with the module name.
func WithModule(module string) *zap.Logger {
	return Logger().With(zap.String("module", module))
}

// WithFlow returns a child logger for one auth flow.
func WithFlow(flow string) *zap.Logger {
	return Logger().With(zap.String("module", "flow"), zap.String("flow", flow))
}
