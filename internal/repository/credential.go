package repository

import (
	"context"

	"github.com/ErlanBelekov/secure-login/internal/domain"
)

// CredentialRepository is the only path to persisted credentials. Implementations
// bind every value as a query parameter.
type CredentialRepository interface {
	// Create inserts a credential and returns its store-assigned ID.
	// Returns domain.ErrDuplicateEmail when the normalized email is taken.
	Create(ctx context.Context, email string, passwordHash []byte) (string, error)

	// FindByEmail returns domain.ErrCredentialNotFound when no credential
	// matches the normalized email.
	FindByEmail(ctx context.Context, email string) (*domain.Credential, error)

	Count(ctx context.Context) (int64, error)
}
