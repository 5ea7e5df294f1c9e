package main

import (
	"context"
	"testing"
	"time"

	"github.com/wanderwise/account-service/internal/domain"
	"github.com/wanderwise/account-service/internal/usecase"
)

type stubRepo struct {
	findByEmail  func(ctx context.Context, email string) (*domain.User, error)
	markVerified func(ctx context.Context, id string, at time.Time) (bool, error)
	listUnverif  func(ctx context.Context) ([]domain.User, error)
}

func (r *stubRepo) Create(context.Context, *domain.User) (*domain.User, error) {
	panic("not used")
}
func (r *stubRepo) FindByID(context.Context, string) (*domain.User, error) {
	panic("not used")
}
func (r *stubRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}
func (r *stubRepo) MarkVerified(ctx context.Context, id string, at time.Time) (bool, error) {
	return r.markVerified(ctx, id, at)
}
func (r *stubRepo) ListUnverified(ctx context.Context) ([]domain.User, error) {
	return r.listUnverif(ctx)
}
func (r *stubRepo) IssueConfirmationToken(context.Context, string, string, time.Time) error {
	panic("not used")
}
func (r *stubRepo) ClaimConfirmationToken(context.Context, string, string) (*domain.ConfirmationToken, error) {
	panic("not used")
}
func (r *stubRepo) PurgeStaleTokens(context.Context, time.Time) (int64, error) {
	panic("not used")
}

// run must report failures through its return value so main can close the
// pool before exiting.
func TestRun_MissingDatabaseURL_ReturnsFailure(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	var opts options
	opts.Args.Emails = []string{"alice@example.com"}

	if code := run(context.Background(), opts); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func TestActivate_ExitCodes(t *testing.T) {
	repo := &stubRepo{
		findByEmail: func(_ context.Context, email string) (*domain.User, error) {
			if email == "ghost@example.com" {
				return nil, domain.ErrUserNotFound
			}
			return &domain.User{ID: "user-1", Email: email}, nil
		},
		markVerified: func(_ context.Context, _ string, _ time.Time) (bool, error) {
			return true, nil
		},
	}
	activation := usecase.NewActivationUsecase(repo)

	if code := activate(context.Background(), activation, []string{"alice@example.com"}); code != 0 {
		t.Errorf("all activated: exit code = %d, want 0", code)
	}
	if code := activate(context.Background(), activation, []string{"ghost@example.com"}); code != 1 {
		t.Errorf("user not found: exit code = %d, want 1", code)
	}
}

func TestListUnverified_ExitCode(t *testing.T) {
	repo := &stubRepo{
		listUnverif: func(_ context.Context) ([]domain.User, error) {
			return []domain.User{{Email: "alice@example.com", CreatedAt: time.Now()}}, nil
		},
	}

	if code := listUnverified(context.Background(), usecase.NewActivationUsecase(repo)); code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
}
