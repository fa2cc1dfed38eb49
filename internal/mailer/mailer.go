// Package mailer delivers transactional email.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"kobo-inventory/internal/config"

	"github.com/rs/zerolog"
)

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpMailer struct {
	cfg    config.SMTPConfig
	send   sendFunc
	logger zerolog.Logger
}

// New returns an SMTP mailer, or a mailer that only logs when no SMTP host
// is configured.
func New(cfg config.SMTPConfig, logger zerolog.Logger) Mailer {
	logger = logger.With().Str("component", "mailer").Logger()
	if cfg.Host == "" {
		logger.Info().Msg("SMTP not configured, outgoing mail will be logged only")
		return &logMailer{logger: logger}
	}
	return &smtpMailer{cfg: cfg, send: smtp.SendMail, logger: logger}
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(m.cfg.Address(), auth, m.cfg.From, []string{msg.To}, buildMessage(m.cfg.From, msg)); err != nil {
		m.logger.Error().Err(err).Str("subject", msg.Subject).Msg("failed to send mail")
		return fmt.Errorf("failed to send mail: %w", err)
	}

	m.logger.Info().Str("subject", msg.Subject).Msg("mail sent")
	return nil
}

func buildMessage(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

type logMailer struct {
	logger zerolog.Logger
}

func (m *logMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.HTML).
		Msg("mail delivery disabled, message logged")
	return nil
}
