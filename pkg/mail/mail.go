package mail

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"time"
)

var (
	// ErrSMTPDisabled signals that SMTP delivery is disabled via configuration.
	ErrSMTPDisabled = errors.New("mail: smtp delivery disabled")
	// ErrNoRecipients is returned for messages without a usable recipient.
	ErrNoRecipients = errors.New("mail: at least one recipient is required")
	// ErrNoSender is returned when neither the message nor the settings name a sender.
	ErrNoSender = errors.New("mail: sender address is required")
)

// Message represents an outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer delivers verification codes and reset links.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer returns an SMTP mailer when delivery is enabled and a logging mailer otherwise.
func NewMailer(settings SMTPSettings) (Mailer, error) {
	if !settings.Enabled {
		return NewLogMailer(), nil
	}
	m, err := NewSMTPMailer(settings)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// envelope is a message resolved against the default sender, with addresses checked.
type envelope struct {
	from    string
	to      []string
	subject string
	body    string
}

func newEnvelope(msg Message, defaultFrom string) (envelope, error) {
	to := recipients(msg.To)
	if len(to) == 0 {
		return envelope{}, ErrNoRecipients
	}

	from := strings.TrimSpace(msg.From)
	if from == "" {
		from = strings.TrimSpace(defaultFrom)
	}
	if from == "" {
		return envelope{}, ErrNoSender
	}
	if _, err := mail.ParseAddress(from); err != nil {
		return envelope{}, fmt.Errorf("mail: invalid from address: %w", err)
	}
	for _, addr := range to {
		if _, err := mail.ParseAddress(addr); err != nil {
			return envelope{}, fmt.Errorf("mail: invalid recipient address %q: %w", addr, err)
		}
	}

	return envelope{from: from, to: to, subject: msg.Subject, body: msg.Body}, nil
}

// render produces the RFC 5322 text sent after DATA.
func (e envelope) render(now time.Time) string {
	var b strings.Builder
	header := func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	header("From", e.from)
	header("To", strings.Join(e.to, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", singleLine(e.subject)))
	header("Date", now.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")
	b.WriteString(e.body)
	return b.String()
}

// recipients trims and de-duplicates addresses, keeping first-seen order.
func recipients(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	out := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}

func singleLine(value string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
}
