package app

import (
	"strings"

	"github.com/charlesng35/authflow/pkg/logger"
)

// ConfigureLogging initialises the global logger with the provided level, defaulting to info.
func ConfigureLogging(level, encoding string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	return logger.InitWithOptions(logger.Options{
		Level:    level,
		Encoding: strings.ToLower(strings.TrimSpace(encoding)),
	})
}
