package redisstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

const attemptPrefix = "login_failures:"

// AttemptCounter counts failed logins per key inside a fixed window that
// restarts with every failure. Keys are hashed so emails never appear in
// Redis.
type AttemptCounter struct {
	rdb redis.UniversalClient
}

func NewAttemptCounter(rdb redis.UniversalClient) *AttemptCounter {
	return &AttemptCounter{rdb: rdb}
}

func (a *AttemptCounter) Failures(ctx context.Context, key string) (int, error) {
	n, err := a.rdb.Get(ctx, attemptKey(key)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, oops.Code("ATTEMPT_COUNTER_FAILED").With("operation", "get").Wrap(err)
	}
	return n, nil
}

// RecordFailure increments the counter and pushes its expiry out to window.
// It returns the count after the increment.
func (a *AttemptCounter) RecordFailure(ctx context.Context, key string, window time.Duration) (int, error) {
	k := attemptKey(key)

	pipe := a.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, oops.Code("ATTEMPT_COUNTER_FAILED").With("operation", "incr").Wrap(err)
	}
	return int(incr.Val()), nil
}

func (a *AttemptCounter) Reset(ctx context.Context, key string) error {
	if err := a.rdb.Del(ctx, attemptKey(key)).Err(); err != nil {
		return oops.Code("ATTEMPT_COUNTER_FAILED").With("operation", "reset").Wrap(err)
	}
	return nil
}

func attemptKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return attemptPrefix + hex.EncodeToString(sum[:])
}
