package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/ErlanBelekov/secure-login/internal/domain"
)

const (
	insertCredentialSQL = `INSERT INTO credentials (email, password_hash) VALUES ($1, $2) RETURNING id::text`

	findCredentialByEmailSQL = `SELECT id::text, email, password_hash, created_at FROM credentials WHERE lower(email) = $1`

	countCredentialsSQL = `SELECT count(*) FROM credentials`
)

type CredentialRepository struct {
	db      Querier
	backoff func() retry.Backoff
}

func NewCredentialRepository(db Querier) *CredentialRepository {
	return &CredentialRepository{db: db, backoff: defaultBackoff}
}

func defaultBackoff() retry.Backoff {
	return retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
}

// Create inserts a credential and returns its ID. A second credential with
// the same normalized email fails with domain.ErrDuplicateEmail.
func (r *CredentialRepository) Create(ctx context.Context, email string, passwordHash []byte) (string, error) {
	email = domain.NormalizeEmail(email)

	var id string
	err := r.withRetry(ctx, pgconn.SafeToRetry, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, insertCredentialSQL, email, passwordHash).Scan(&id)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", domain.ErrDuplicateEmail
		}
		return "", unavailable("create credential", err)
	}
	return id, nil
}

func (r *CredentialRepository) FindByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	email = domain.NormalizeEmail(email)

	var c domain.Credential
	err := r.withRetry(ctx, retryableRead, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, findCredentialByEmailSQL, email).
			Scan(&c.ID, &c.Email, &c.PasswordHash, &c.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, unavailable("find credential", err)
	}
	return &c, nil
}

func (r *CredentialRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.withRetry(ctx, retryableRead, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, countCredentialsSQL).Scan(&n)
	})
	if err != nil {
		return 0, unavailable("count credentials", err)
	}
	return n, nil
}

func (r *CredentialRepository) withRetry(ctx context.Context, retryable func(error) bool, fn func(context.Context) error) error {
	return retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// retryableRead reports whether a read failed for a reason a fresh
// connection might not hit.
func retryableRead(err error) bool {
	if pgconn.SafeToRetry(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code) ||
			pgErr.Code == pgerrcode.AdminShutdown ||
			pgErr.Code == pgerrcode.CannotConnectNow
	}
	return false
}

func unavailable(operation string, err error) error {
	return oops.
		Code("CREDENTIAL_STORE_UNAVAILABLE").
		With("operation", operation).
		Wrap(fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err))
}
