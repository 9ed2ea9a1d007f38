package repository

import (
	"context"
	"time"
)

// SessionStore is the key-value collaborator behind session issuance.
// Get returns domain.ErrSessionNotFound on a miss. Delete of a missing key is not an error.
type SessionStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// AttemptCounter tracks failed logins per key within a sliding window.
type AttemptCounter interface {
	Failures(ctx context.Context, key string) (int, error)
	RecordFailure(ctx context.Context, key string, window time.Duration) (int, error)
	Reset(ctx context.Context, key string) error
}
