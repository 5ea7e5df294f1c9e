package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/dajohi/goemail"
	"github.com/resend/resend-go/v2"
	"github.com/wanderwise/account-service/config"
	"github.com/wanderwise/account-service/internal/metrics"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ConsoleSender logs emails instead of sending them — used in ENV=local.
// Config validation guarantees it is never selected in staging/production.
type ConsoleSender struct {
	logger *slog.Logger
}

func NewConsoleSender(logger *slog.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger.With("component", "email_console")}
}

func (s *ConsoleSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.InfoContext(ctx, "outgoing email (console backend)",
		"to", to, "subject", subject, "body", body)
	return nil
}

// SMTPSender delivers over authenticated SMTPS. Delivery errors propagate to
// the caller; nothing is dropped silently.
type SMTPSender struct {
	smtp *goemail.SMTP
	from string
}

func NewSMTPSender(host string, port int, user, password, from string, skipVerify bool) (*SMTPSender, error) {
	addr := fmt.Sprintf("smtps://%s:%s@%s:%d",
		url.QueryEscape(user), url.QueryEscape(password), host, port)

	smtp, err := goemail.NewSMTP(addr, &tls.Config{InsecureSkipVerify: skipVerify})
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{smtp: smtp, from: from}, nil
}

func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	msg := goemail.NewMessage(s.from, subject, body)
	msg.AddTo(to)
	if err := s.smtp.Send(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// ResendSender sends through the Resend API — the hosted-service backend.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// MeteredSender counts every dispatch in accounts_emails_sent_total, keyed
// by the transport name and the outcome.
type MeteredSender struct {
	inner     Sender
	transport string
}

func NewMeteredSender(inner Sender, transport string) *MeteredSender {
	return &MeteredSender{inner: inner, transport: transport}
}

// Transport reports which backend this sender dispatches through.
func (s *MeteredSender) Transport() string {
	return s.transport
}

func (s *MeteredSender) Send(ctx context.Context, to, subject, body string) error {
	if err := s.inner.Send(ctx, to, subject, body); err != nil {
		metrics.EmailsSentTotal.WithLabelValues(s.transport, "error").Inc()
		return err
	}
	metrics.EmailsSentTotal.WithLabelValues(s.transport, "ok").Inc()
	return nil
}

// NewSender picks the transport selected by EMAIL_BACKEND and wraps it with
// dispatch metrics. Credential presence was already checked by config.Load.
func NewSender(cfg *config.Config, logger *slog.Logger) (Sender, error) {
	switch cfg.EmailBackend {
	case config.BackendSMTP:
		smtp, err := NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser,
			cfg.SMTPPassword, cfg.EmailFrom, cfg.SMTPSkipVerify)
		if err != nil {
			return nil, err
		}
		return NewMeteredSender(smtp, config.BackendSMTP), nil
	case config.BackendResend:
		return NewMeteredSender(NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom), config.BackendResend), nil
	case config.BackendConsole:
		return NewMeteredSender(NewConsoleSender(logger), config.BackendConsole), nil
	default:
		return nil, fmt.Errorf("unknown email backend %q", cfg.EmailBackend)
	}
}
