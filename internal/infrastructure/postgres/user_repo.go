package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wanderwise/account-service/internal/domain"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, phone_number,
	marketing_opt_in, email_verified, email_verified_at, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, phone_number, marketing_opt_in)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.PhoneNumber, user.MarketingOptIn,
	)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

func (r *UserRepository) MarkVerified(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email_verified = TRUE, email_verified_at = $2, updated_at = now()
		WHERE id = $1 AND email_verified = FALSE`,
		id, at,
	)
	if err != nil {
		return false, fmt.Errorf("mark verified: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepository) ListUnverified(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_verified = FALSE ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list unverified: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// IssueConfirmationToken supersedes every live token for the user and
// inserts the new one in a single transaction, so concurrent resends can
// never leave two live tokens outstanding.
func (r *UserRepository) IssueConfirmationToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE confirmation_tokens
		SET superseded_at = now()
		WHERE user_id = $1 AND consumed_at IS NULL AND superseded_at IS NULL`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("supersede prior tokens: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO confirmation_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)`,
		userID, tokenHash, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit token issue: %w", err)
	}
	return nil
}

// ClaimConfirmationToken is a single conditional UPDATE so only one caller
// can ever consume a given token. The user_id predicate keeps a request
// carrying someone else's token from burning it.
func (r *UserRepository) ClaimConfirmationToken(ctx context.Context, userID, tokenHash string) (*domain.ConfirmationToken, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE confirmation_tokens
		SET consumed_at = now()
		WHERE token_hash = $1
		  AND user_id = $2
		  AND consumed_at IS NULL
		  AND superseded_at IS NULL
		  AND expires_at > now()
		RETURNING id, user_id, token_hash, expires_at, consumed_at, superseded_at, created_at`,
		tokenHash, userID,
	)

	var t domain.ConfirmationToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.ConsumedAt, &t.SupersededAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("claim token: %w", err)
	}
	return &t, nil
}

func (r *UserRepository) PurgeStaleTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM confirmation_tokens
		WHERE created_at < $1
		  AND (expires_at <= now() OR consumed_at IS NOT NULL OR superseded_at IS NOT NULL)`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("purge stale tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.PhoneNumber, &u.MarketingOptIn, &u.EmailVerified, &u.EmailVerifiedAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
