// Package mail provides the outbound email collaborator used by the
// notification pipeline. The transport is deliberately thin: one Send call,
// no templating, no queueing — retry policy belongs to the job runner that
// calls it.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/dcastillo/tasktrail-api/internal/platform/logger"
)

// ErrNoRecipients is returned when Send is called with an empty recipient list.
var ErrNoRecipients = errors.New("no recipients")

// Mailer sends a single email to a list of recipients.
// Version: 1.0
type Mailer interface {
	// Send delivers one message. Implementations must not retry; the caller
	// owns retry policy. Returns an error if the transport rejects the
	// message.
	Send(ctx context.Context, subject, body string, to []string) error
}

// SMTPConfig holds the settings for the SMTP mailer.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
}

// SMTPMailer sends mail through a plain SMTP relay using net/smtp.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

// NewSMTPMailer creates a Mailer that delivers through the configured relay.
func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPMailer{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "smtp_mailer")),
	}
}

// Ensure SMTPMailer implements Mailer
var _ Mailer = (*SMTPMailer)(nil)

// Send implements Mailer.Send.
func (m *SMTPMailer) Send(ctx context.Context, subject, body string, to []string) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	if len(to) == 0 {
		return ErrNoRecipients
	}

	msg := buildMessage(m.cfg.FromAddress, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.FromAddress, to, msg); err != nil {
		log.Error("failed to send mail",
			slog.String("error", err.Error()),
			slog.String("subject", subject),
			slog.Int("recipient_count", len(to)))
		return fmt.Errorf("failed to send mail: %w", err)
	}

	log.Info("mail sent",
		slog.String("subject", subject),
		slog.Int("recipient_count", len(to)))
	return nil
}

// buildMessage assembles a minimal RFC 5322 message.
func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// LogMailer is a Mailer that only logs messages. Used in development and as
// the default when no SMTP relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a Mailer that writes messages to the log instead of
// delivering them.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger.With(slog.String("component", "log_mailer"))}
}

// Ensure LogMailer implements Mailer
var _ Mailer = (*LogMailer)(nil)

// Send implements Mailer.Send by logging the message.
func (m *LogMailer) Send(ctx context.Context, subject, body string, to []string) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}

	logger.FromContextOrDefault(ctx, m.logger).Info("mail (not delivered, log transport)",
		slog.String("subject", subject),
		slog.String("body", body),
		slog.Any("to", to))
	return nil
}
