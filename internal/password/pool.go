package password

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ErlanBelekov/secure-login/internal/metrics"
)

// Pool bounds the number of concurrent argon2id computations. Each one holds
// Params.Memory KiB, so an unbounded burst of logins could exhaust memory.
type Pool struct {
	hasher *Argon2idHasher
	sem    *semaphore.Weighted
}

func NewPool(h *Argon2idHasher, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{hasher: h, sem: semaphore.NewWeighted(int64(workers))}
}

// Hash waits for a free slot, then hashes. It returns ctx.Err() if the
// context ends while waiting.
func (p *Pool) Hash(ctx context.Context, password string) ([]byte, error) {
	var (
		hash []byte
		err  error
	)
	if runErr := p.run(ctx, "hash", func() { hash, err = p.hasher.Hash(password) }); runErr != nil {
		return nil, runErr
	}
	return hash, err
}

func (p *Pool) Verify(ctx context.Context, password string, hash []byte) (bool, error) {
	var (
		ok  bool
		err error
	)
	if runErr := p.run(ctx, "verify", func() { ok, err = p.hasher.Verify(password, hash) }); runErr != nil {
		return false, runErr
	}
	return ok, err
}

func (p *Pool) DummyHash() []byte {
	return p.hasher.DummyHash()
}

func (p *Pool) run(ctx context.Context, op string, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	metrics.HashWorkersBusy.Inc()
	defer metrics.HashWorkersBusy.Dec()

	start := time.Now()
	fn()
	metrics.PasswordHashDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return nil
}
