package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Email backend selectors. Console is for local development only and is
// rejected at startup when ENV is staging or production.
const (
	BackendConsole = "console"
	BackendSMTP    = "smtp"
	BackendResend  = "resend"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret string `env:"JWT_SECRET,required" validate:"required,min=32"`

	// BaseURL is the absolute prefix for confirmation links embedded in
	// outgoing emails, e.g. https://www.wanderwise.example.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080" validate:"required,url"`

	// ConfirmTokenTTLHours bounds how long a confirmation link stays valid.
	ConfirmTokenTTLHours int `env:"CONFIRM_TOKEN_TTL_HOURS" envDefault:"48" validate:"min=1,max=336"`

	EmailBackend string `env:"EMAIL_BACKEND" envDefault:"console" validate:"required,oneof=console smtp resend"`
	EmailFrom    string `env:"EMAIL_FROM" envDefault:"no-reply@wanderwise.local"`

	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPUser       string `env:"SMTP_USER"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
	SMTPSkipVerify bool   `env:"SMTP_SKIP_VERIFY" envDefault:"false"`

	ResendAPIKey string `env:"RESEND_API_KEY"`

	// TokenPurgeCron controls how often expired confirmation tokens are
	// swept from the database. Standard 5-field cron expression or @every.
	TokenPurgeCron string `env:"TOKEN_PURGE_CRON" envDefault:"@hourly"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.validateEmail(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateEmail enforces transport requirements up front so a misconfigured
// deployment refuses to start instead of failing on the first registration.
func (c *Config) validateEmail() error {
	deployed := c.Env == "staging" || c.Env == "production"

	if deployed && c.EmailBackend == BackendConsole {
		return fmt.Errorf("invalid config: EMAIL_BACKEND=console is not allowed when ENV=%s", c.Env)
	}

	switch c.EmailBackend {
	case BackendSMTP:
		var missing []string
		if c.SMTPHost == "" {
			missing = append(missing, "SMTP_HOST")
		}
		if c.SMTPUser == "" {
			missing = append(missing, "SMTP_USER")
		}
		if c.SMTPPassword == "" {
			missing = append(missing, "SMTP_PASSWORD")
		}
		if len(missing) > 0 {
			return fmt.Errorf("invalid config: EMAIL_BACKEND=smtp but missing: %s", strings.Join(missing, ", "))
		}
	case BackendResend:
		if c.ResendAPIKey == "" {
			return fmt.Errorf("invalid config: EMAIL_BACKEND=resend but RESEND_API_KEY is not set")
		}
	}

	if c.EmailBackend != BackendConsole && c.EmailFrom == "" {
		return fmt.Errorf("invalid config: EMAIL_FROM is required for EMAIL_BACKEND=%s", c.EmailBackend)
	}
	if deployed && strings.HasSuffix(c.EmailFrom, "wanderwise.local") {
		return fmt.Errorf("invalid config: EMAIL_FROM still uses the local placeholder address")
	}

	return nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
