package app

import (
	"net"
	"net/url"
	"strings"

	"github.com/charlesng35/authflow/pkg/mail"
)

// MailSettings returns the mail package settings for the configured SMTP relay. Without an explicit
// sender, messages come from no-reply at the public host of the server.
func (c *Config) MailSettings() mail.SMTPSettings {
	smtp := c.Email.SMTP
	from := strings.TrimSpace(smtp.From)
	if from == "" {
		if host := publicHost(c.Server.BaseURL); host != "" {
			from = "no-reply@" + host
		}
	}
	return mail.SMTPSettings{
		Enabled:  smtp.Enabled,
		Host:     strings.TrimSpace(smtp.Host),
		Port:     smtp.Port,
		Username: smtp.Username,
		Password: smtp.Password,
		From:     from,
		UseTLS:   smtp.UseTLS,
		Timeout:  smtp.Timeout,
	}
}

func publicHost(baseURL string) string {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Host == "" {
		return ""
	}
	host := u.Hostname()
	if ip := net.ParseIP(host); ip != nil {
		return ""
	}
	if !strings.Contains(host, ".") {
		return ""
	}
	return host
}
