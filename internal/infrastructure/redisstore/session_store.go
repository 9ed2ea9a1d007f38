package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/ErlanBelekov/secure-login/internal/domain"
)

const sessionPrefix = "session:"

// SessionStore keeps opaque session records under session:<key>. Redis
// expires them with the TTL given on Set.
type SessionStore struct {
	rdb redis.UniversalClient
}

func NewSessionStore(rdb redis.UniversalClient) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, sessionPrefix+key, value, ttl).Err(); err != nil {
		return oops.Code("SESSION_STORE_FAILED").With("operation", "set").Wrap(err)
	}
	return nil
}

// Get returns domain.ErrSessionNotFound for a missing or expired key.
func (s *SessionStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.rdb.Get(ctx, sessionPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, oops.Code("SESSION_STORE_FAILED").With("operation", "get").Wrap(err)
	}
	return value, nil
}

// Delete is a no-op for a missing key.
func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, sessionPrefix+key).Err(); err != nil {
		return oops.Code("SESSION_STORE_FAILED").With("operation", "delete").Wrap(err)
	}
	return nil
}
