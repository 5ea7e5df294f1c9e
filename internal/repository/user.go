package repository

import (
	"context"
	"time"

	"github.com/wanderwise/account-service/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// MarkVerified flips email_verified for the user. It is idempotent:
	// the returned bool is true if this call changed the flag, false if
	// the user was already verified.
	MarkVerified(ctx context.Context, id string, at time.Time) (bool, error)

	// ListUnverified returns users with email_verified=false ordered by
	// join time ascending.
	ListUnverified(ctx context.Context) ([]domain.User, error)

	// IssueConfirmationToken stores a new token hash for the user and
	// atomically supersedes any prior live tokens.
	IssueConfirmationToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// ClaimConfirmationToken consumes the live token matching tokenHash,
	// scoped to the given user so a mismatched request cannot consume
	// another account's token. Returns domain.ErrTokenInvalid if no live
	// token matches.
	ClaimConfirmationToken(ctx context.Context, userID, tokenHash string) (*domain.ConfirmationToken, error)

	// PurgeStaleTokens deletes expired, consumed, and superseded tokens
	// created before the cutoff. Returns the number of rows removed.
	PurgeStaleTokens(ctx context.Context, cutoff time.Time) (int64, error)
}
