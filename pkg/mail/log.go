package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/charlesng35/authflow/pkg/logger"
)

// LogMailer writes outbound messages to the structured log instead of delivering them.
type LogMailer struct {
	log *zap.Logger
}

// NewLogMailer builds a LogMailer bound to the "mail" module logger.
func NewLogMailer() *LogMailer {
	return &LogMailer{log: logger.WithModule("mail")}
}

// Send logs the message. Bodies are logged at debug level only.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	to := recipients(msg.To)
	if len(to) == 0 {
		return ErrNoRecipients
	}

	m.log.Info("mail delivery skipped; smtp disabled",
		zap.Strings("to", to),
		zap.String("subject", msg.Subject),
	)
	m.log.Debug("mail body", zap.Strings("to", to), zap.String("body", msg.Body))
	return nil
}
