package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("an account with this email already exists")
	ErrTokenInvalid       = errors.New("confirmation token is invalid or expired")
	ErrAlreadyVerified    = errors.New("email is already verified")
	ErrNotVerified        = errors.New("email is not verified")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type User struct {
	ID              string
	Email           string
	PasswordHash    string
	FirstName       string
	LastName        string
	PhoneNumber     string
	MarketingOptIn  bool
	EmailVerified   bool
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ConfirmationToken is the stored side of an email confirmation link. Only
// the SHA-256 hash of the raw token is persisted; the raw value exists only
// inside the email. A token is live while ConsumedAt and SupersededAt are
// nil and ExpiresAt is in the future — at most one live token exists per
// user at any time.
type ConfirmationToken struct {
	ID           string
	UserID       string
	TokenHash    string
	ExpiresAt    time.Time
	ConsumedAt   *time.Time
	SupersededAt *time.Time
	CreatedAt    time.Time
}
