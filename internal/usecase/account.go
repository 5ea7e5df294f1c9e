package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wanderwise/account-service/internal/domain"
	"github.com/wanderwise/account-service/internal/email"
	"github.com/wanderwise/account-service/internal/metrics"
	"github.com/wanderwise/account-service/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL = 48 * time.Hour
	defaultJWTTTL   = 24 * time.Hour
)

type AccountUsecase struct {
	users    repository.UserRepository
	sender   email.Sender
	composer *email.Composer
	jwtKey   []byte
	tokenTTL time.Duration
	jwtTTL   time.Duration
}

func NewAccountUsecase(users repository.UserRepository, sender email.Sender, composer *email.Composer, jwtKey []byte, tokenTTL time.Duration) *AccountUsecase {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AccountUsecase{
		users:    users,
		sender:   sender,
		composer: composer,
		jwtKey:   jwtKey,
		tokenTTL: tokenTTL,
		jwtTTL:   defaultJWTTTL,
	}
}

type RegisterInput struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	PhoneNumber    string
	MarketingOptIn bool
}

// Register creates an unverified user, issues a confirmation token, and
// emails the confirmation link. The email is sent strictly after the user
// row and token are committed, so the link can never reference a row a
// rollback would undo.
func (u *AccountUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, &domain.User{
		Email:          normalizeEmail(input.Email),
		PasswordHash:   string(hash),
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		PhoneNumber:    strings.TrimSpace(input.PhoneNumber),
		MarketingOptIn: input.MarketingOptIn,
	})
	if err != nil {
		return nil, err
	}

	if err := u.issueAndSend(ctx, user); err != nil {
		// The account exists; the user can recover via resend.
		return user, fmt.Errorf("send confirmation: %w", err)
	}
	return user, nil
}

// ConfirmEmail validates the token from the confirmation link and marks the
// user verified. Outcomes are distinct: unknown user, already verified
// (idempotent success), and invalid/expired/consumed token.
func (u *AccountUsecase) ConfirmEmail(ctx context.Context, userID, rawToken string) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return domain.ErrAlreadyVerified
	}

	if _, err := u.users.ClaimConfirmationToken(ctx, user.ID, hashToken(rawToken)); err != nil {
		metrics.ConfirmationsTotal.WithLabelValues("invalid_token").Inc()
		return err
	}

	if _, err := u.users.MarkVerified(ctx, user.ID, time.Now()); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	metrics.ConfirmationsTotal.WithLabelValues("confirmed").Inc()
	return nil
}

// ResendConfirmation re-issues a token for an unverified account and
// re-sends the confirmation email. Unknown and already-verified addresses
// are a silent no-op so the endpoint never reveals whether an account
// exists.
func (u *AccountUsecase) ResendConfirmation(ctx context.Context, emailAddr string) error {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}
	if user.EmailVerified {
		return nil
	}
	return u.issueAndSend(ctx, user)
}

// Login checks credentials and returns a signed session JWT. Unverified
// accounts are rejected with domain.ErrNotVerified.
func (u *AccountUsecase) Login(ctx context.Context, emailAddr, password string) (string, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return "", domain.ErrNotVerified
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(u.jwtTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(u.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func (u *AccountUsecase) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return u.users.FindByID(ctx, id)
}

func (u *AccountUsecase) issueAndSend(ctx context.Context, user *domain.User) error {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	rawToken := hex.EncodeToString(raw)

	expiresAt := time.Now().Add(u.tokenTTL)
	if err := u.users.IssueConfirmationToken(ctx, user.ID, hashToken(rawToken), expiresAt); err != nil {
		return fmt.Errorf("store confirmation token: %w", err)
	}
	metrics.TokensIssuedTotal.Inc()

	subject, body := u.composer.Confirmation(user.FirstName, user.ID, rawToken)
	return u.sender.Send(ctx, user.Email, subject, body)
}

func hashToken(rawToken string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
