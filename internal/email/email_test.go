package email_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/wanderwise/account-service/config"
	"github.com/wanderwise/account-service/internal/email"
	"github.com/wanderwise/account-service/internal/metrics"
)

func TestConsoleSender_LogsRecipientAndSubject(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s := email.NewConsoleSender(logger)
	if err := s.Send(context.Background(), "guest@example.com", "Confirm your WanderWise account", "body"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "guest@example.com") {
		t.Errorf("log output %q missing recipient", out)
	}
	if !strings.Contains(out, "Confirm your WanderWise account") {
		t.Errorf("log output %q missing subject", out)
	}
}

func TestComposer_ConfirmationURLShape(t *testing.T) {
	c := email.NewComposer("https://www.wanderwise.example/")

	got := c.ConfirmationURL("user-1", "deadbeef")
	want := "https://www.wanderwise.example/accounts/confirm-email/user-1/deadbeef/"
	if got != want {
		t.Errorf("ConfirmationURL = %q, want %q", got, want)
	}
}

func TestComposer_ConfirmationBodyEmbedsLink(t *testing.T) {
	c := email.NewComposer("http://localhost:8080")

	subject, body := c.Confirmation("Ada", "user-1", "tok")
	if subject != "Confirm your WanderWise account" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(body, "Hi Ada") {
		t.Errorf("body %q missing greeting", body)
	}
	if !strings.Contains(body, "http://localhost:8080/accounts/confirm-email/user-1/tok/") {
		t.Errorf("body %q missing confirmation link", body)
	}
}

func TestComposer_ConfirmationWithoutName(t *testing.T) {
	c := email.NewComposer("http://localhost:8080")

	_, body := c.Confirmation("", "user-1", "tok")
	if !strings.HasPrefix(body, "Hi,") {
		t.Errorf("body %q should open with a plain greeting", body)
	}
}

func TestNewSender_SelectsBackend(t *testing.T) {
	logger := slog.Default()

	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{
			name: config.BackendConsole,
			cfg:  &config.Config{EmailBackend: config.BackendConsole},
		},
		{
			name: config.BackendResend,
			cfg: &config.Config{
				EmailBackend: config.BackendResend,
				ResendAPIKey: "re_test",
				EmailFrom:    "no-reply@wanderwise.example",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := email.NewSender(tc.cfg, logger)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			metered, ok := s.(*email.MeteredSender)
			if !ok {
				t.Fatalf("sender type = %T, want *email.MeteredSender", s)
			}
			if metered.Transport() != tc.name {
				t.Errorf("transport = %q, want %q", metered.Transport(), tc.name)
			}
		})
	}
}

type sendFunc func(ctx context.Context, to, subject, body string) error

func (f sendFunc) Send(ctx context.Context, to, subject, body string) error {
	return f(ctx, to, subject, body)
}

func TestMeteredSender_CountsByTransportAndOutcome(t *testing.T) {
	okCounter := metrics.EmailsSentTotal.WithLabelValues("smtp", "ok")
	errCounter := metrics.EmailsSentTotal.WithLabelValues("smtp", "error")
	okBefore := testutil.ToFloat64(okCounter)
	errBefore := testutil.ToFloat64(errCounter)

	sendErr := errors.New("smtp unavailable")
	fail := false
	s := email.NewMeteredSender(sendFunc(func(_ context.Context, _, _, _ string) error {
		if fail {
			return sendErr
		}
		return nil
	}), "smtp")

	if err := s.Send(context.Background(), "guest@example.com", "subject", "body"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fail = true
	if err := s.Send(context.Background(), "guest@example.com", "subject", "body"); !errors.Is(err, sendErr) {
		t.Fatalf("want send error to propagate, got %v", err)
	}

	if got := testutil.ToFloat64(okCounter) - okBefore; got != 1 {
		t.Errorf("ok dispatches counted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(errCounter) - errBefore; got != 1 {
		t.Errorf("error dispatches counted = %v, want 1", got)
	}
}
