package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wanderwise/account-service/internal/domain"
	"github.com/wanderwise/account-service/internal/repository"
)

// Activation outcomes reported per address by ActivateUsers.
const (
	ActivationActivated       = "activated"
	ActivationAlreadyVerified = "already_verified"
	ActivationNotFound        = "not_found"
)

type ActivationResult struct {
	Email   string
	Outcome string
}

// ActivationUsecase backs the activate-users CLI. It bypasses the token
// flow entirely: it flips email_verified directly and never touches
// confirmation token state.
type ActivationUsecase struct {
	users repository.UserRepository
}

func NewActivationUsecase(users repository.UserRepository) *ActivationUsecase {
	return &ActivationUsecase{users: users}
}

func (u *ActivationUsecase) ListUnverified(ctx context.Context) ([]domain.User, error) {
	return u.users.ListUnverified(ctx)
}

// ActivateUsers force-verifies each address. Unknown addresses are reported
// and skipped; the batch continues. Already-verified users are reported as
// success without any state change.
func (u *ActivationUsecase) ActivateUsers(ctx context.Context, emails []string) ([]ActivationResult, error) {
	results := make([]ActivationResult, 0, len(emails))

	for _, addr := range emails {
		user, err := u.users.FindByEmail(ctx, normalizeEmail(addr))
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				results = append(results, ActivationResult{Email: addr, Outcome: ActivationNotFound})
				continue
			}
			return results, fmt.Errorf("find user %s: %w", addr, err)
		}

		changed, err := u.users.MarkVerified(ctx, user.ID, time.Now())
		if err != nil {
			return results, fmt.Errorf("activate %s: %w", addr, err)
		}

		outcome := ActivationActivated
		if !changed {
			outcome = ActivationAlreadyVerified
		}
		results = append(results, ActivationResult{Email: addr, Outcome: outcome})
	}

	return results, nil
}
