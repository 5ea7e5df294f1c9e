package config_test

import (
	"strings"
	"testing"

	"github.com/wanderwise/account-service/config"
)

// baseEnv returns the minimal environment for a loadable local config.
func baseEnv() map[string]string {
	return map[string]string{
		"ENV":          "local",
		"DATABASE_URL": "postgres://localhost:5432/wanderwise",
		"JWT_SECRET":   "test-jwt-secret-at-least-32-chars!!",
	}
}

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, baseEnv())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Env != "local" {
		t.Errorf("Env = %q, want local", cfg.Env)
	}
	if cfg.EmailBackend != config.BackendConsole {
		t.Errorf("EmailBackend = %q, want console", cfg.EmailBackend)
	}
	if cfg.ConfirmTokenTTLHours != 48 {
		t.Errorf("ConfirmTokenTTLHours = %d, want 48", cfg.ConfirmTokenTTLHours)
	}
}

func TestLoad_MissingDatabaseURL_Fails(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL": "",
		"JWT_SECRET":   "test-jwt-secret-at-least-32-chars!!",
	})

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestLoad_ShortJWTSecret_Fails(t *testing.T) {
	vars := baseEnv()
	vars["JWT_SECRET"] = "too-short"
	setEnv(t, vars)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for short JWT_SECRET")
	}
}

func TestLoad_ProductionConsoleBackend_Fails(t *testing.T) {
	vars := baseEnv()
	vars["ENV"] = "production"
	vars["EMAIL_BACKEND"] = "console"
	setEnv(t, vars)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error: console backend must be rejected in production")
	}
	if !strings.Contains(err.Error(), "console") {
		t.Errorf("error %q does not mention the console backend", err)
	}
}

func TestLoad_SMTPBackendMissingCredentials_Fails(t *testing.T) {
	vars := baseEnv()
	vars["EMAIL_BACKEND"] = "smtp"
	vars["SMTP_HOST"] = "mail.example.com"
	setEnv(t, vars)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for missing SMTP credentials")
	}
	if !strings.Contains(err.Error(), "SMTP_USER") || !strings.Contains(err.Error(), "SMTP_PASSWORD") {
		t.Errorf("error %q does not name the missing settings", err)
	}
}

func TestLoad_SMTPBackendComplete_Succeeds(t *testing.T) {
	vars := baseEnv()
	vars["EMAIL_BACKEND"] = "smtp"
	vars["SMTP_HOST"] = "mail.example.com"
	vars["SMTP_USER"] = "mailer"
	vars["SMTP_PASSWORD"] = "hunter2"
	vars["EMAIL_FROM"] = "no-reply@wanderwise.example"
	setEnv(t, vars)

	if _, err := config.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_ResendBackendWithoutKey_Fails(t *testing.T) {
	vars := baseEnv()
	vars["EMAIL_BACKEND"] = "resend"
	setEnv(t, vars)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for missing RESEND_API_KEY")
	}
}

func TestLoad_ProductionPlaceholderSender_Fails(t *testing.T) {
	vars := baseEnv()
	vars["ENV"] = "production"
	vars["EMAIL_BACKEND"] = "resend"
	vars["RESEND_API_KEY"] = "re_test_key"
	setEnv(t, vars)

	// EMAIL_FROM defaults to the wanderwise.local placeholder.
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for placeholder EMAIL_FROM in production")
	}
}
