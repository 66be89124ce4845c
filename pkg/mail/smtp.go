package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

const defaultSMTPTimeout = 10 * time.Second

// SMTPSettings capture the runtime configuration required by the SMTP mailer.
type SMTPSettings struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
	Timeout  time.Duration
}

func (s SMTPSettings) validate() error {
	if !s.Enabled {
		return nil
	}
	if strings.TrimSpace(s.Host) == "" {
		return errors.New("smtp: host is required when enabled")
	}
	if s.Port <= 0 {
		return errors.New("smtp: port is required when enabled")
	}
	return nil
}

func (s SMTPSettings) address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// session is the part of an SMTP conversation the mailer drives after connecting.
type session interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

type connectFunc func(ctx context.Context, settings SMTPSettings) (session, error)

// SMTPMailer delivers messages through an SMTP relay, one connection per message.
type SMTPMailer struct {
	settings SMTPSettings
	connect  connectFunc
	now      func() time.Time
}

// NewSMTPMailer builds a mailer that delivers through the configured SMTP relay.
func NewSMTPMailer(settings SMTPSettings) (*SMTPMailer, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}
	if settings.Timeout <= 0 {
		settings.Timeout = defaultSMTPTimeout
	}
	return &SMTPMailer{settings: settings, connect: dialSMTP, now: time.Now}, nil
}

// Send validates msg and runs one MAIL/RCPT/DATA transaction.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.settings.Enabled {
		return ErrSMTPDisabled
	}

	env, err := newEnvelope(msg, m.settings.From)
	if err != nil {
		return err
	}

	sess, err := m.connect(ctx, m.settings)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := transmit(sess, env, m.now()); err != nil {
		return err
	}
	return sess.Quit()
}

func transmit(sess session, env envelope, now time.Time) error {
	if err := sess.Mail(env.from); err != nil {
		return fmt.Errorf("smtp: mail from: %w", err)
	}
	for _, rcpt := range env.to {
		if err := sess.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp: rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := sess.Data()
	if err != nil {
		return fmt.Errorf("smtp: data: %w", err)
	}
	if _, err := io.WriteString(w, env.render(now)); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp: write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp: finish data: %w", err)
	}
	return nil
}

// dialSMTP connects (implicit TLS or STARTTLS when offered) and authenticates when a username is set.
func dialSMTP(ctx context.Context, settings SMTPSettings) (session, error) {
	dialer := &net.Dialer{Timeout: settings.Timeout}
	tlsConfig := &tls.Config{ServerName: settings.Host, MinVersion: tls.VersionTLS12}

	var (
		conn net.Conn
		err  error
	)
	if settings.UseTLS {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", settings.address())
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", settings.address())
	}
	if err != nil {
		return nil, fmt.Errorf("smtp: dial %s: %w", settings.address(), err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(settings.Timeout))
	}

	client, err := smtp.NewClient(conn, settings.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp: handshake: %w", err)
	}

	if !settings.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("smtp: starttls: %w", err)
			}
		}
	}

	if strings.TrimSpace(settings.Username) != "" {
		auth := smtp.PlainAuth("", settings.Username, settings.Password, settings.Host)
		if err := client.Auth(auth); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("smtp: auth: %w", err)
		}
	}

	return client, nil
}
