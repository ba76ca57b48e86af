package service

import (
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"homeguard/internal/logger"
)

// Mailer delivers one notification message. Implementations report
// success or failure; no retry is performed by callers.
type Mailer interface {
	Send(subject, body, to string) error
}

// SMTPConfig carries SMTP transport credentials.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
}

// SMTPMailer sends mail over SMTP with STARTTLS.
type SMTPMailer struct {
	cfg SMTPConfig
	log *logger.Logger
}

func NewSMTPMailer(cfg SMTPConfig, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log}
}

var errMailConfigIncomplete = errors.New("email config incomplete")

const maxSubjectLen = 200

func (m *SMTPMailer) Send(subject, body, to string) error {
	if m.cfg.Host == "" || m.cfg.User == "" || m.cfg.Pass == "" || to == "" {
		if m.log != nil {
			m.log.Warnw("email config incomplete; skipping send", "to", to)
		}
		return errMailConfigIncomplete
	}

	if len(subject) > maxSubjectLen {
		subject = subject[:maxSubjectLen]
	}

	msg := buildMessage(m.cfg.User, to, subject, body)
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)

	// smtp.SendMail upgrades to STARTTLS when the server offers it.
	if err := smtp.SendMail(addr, auth, m.cfg.User, []string{to}, msg); err != nil {
		if m.log != nil {
			m.log.Errorw("email send failed", "to", to, "err", err)
		}
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	if m.log != nil {
		m.log.Infow("email sent", "to", to)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
