package usecase_test

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ErlanBelekov/secure-login/internal/domain"
)

// ---- credentials ----

// memCredentials enforces normalized-email uniqueness the way the
// database's unique index does.
type memCredentials struct {
	mu      sync.Mutex
	byEmail map[string]*domain.Credential
	nextID  int

	createErr error
	findErr   error
}

func newMemCredentials() *memCredentials {
	return &memCredentials{byEmail: make(map[string]*domain.Credential)}
}

func (m *memCredentials) Create(_ context.Context, email string, passwordHash []byte) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := domain.NormalizeEmail(email)
	if _, ok := m.byEmail[key]; ok {
		return "", domain.ErrDuplicateEmail
	}
	m.nextID++
	id := "cred-" + strconv.Itoa(m.nextID)
	m.byEmail[key] = &domain.Credential{ID: id, Email: key, PasswordHash: passwordHash, CreatedAt: time.Now()}
	return id, nil
}

func (m *memCredentials) FindByEmail(_ context.Context, email string) (*domain.Credential, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCredentials) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byEmail)), nil
}

type fakeCredentialRepo struct {
	create      func(ctx context.Context, email string, passwordHash []byte) (string, error)
	findByEmail func(ctx context.Context, email string) (*domain.Credential, error)
}

func (r *fakeCredentialRepo) Create(ctx context.Context, email string, passwordHash []byte) (string, error) {
	return r.create(ctx, email, passwordHash)
}

func (r *fakeCredentialRepo) FindByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeCredentialRepo) Count(_ context.Context) (int64, error) { return 0, nil }

// ---- hasher ----

type fakeHasher struct {
	hash      func(ctx context.Context, password string) ([]byte, error)
	verify    func(ctx context.Context, password string, hash []byte) (bool, error)
	dummyHash []byte
}

func (h *fakeHasher) Hash(ctx context.Context, password string) ([]byte, error) {
	return h.hash(ctx, password)
}

func (h *fakeHasher) Verify(ctx context.Context, password string, hash []byte) (bool, error) {
	return h.verify(ctx, password, hash)
}

func (h *fakeHasher) DummyHash() []byte { return h.dummyHash }

// ---- sessions ----

type memSessions struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration

	setErr, getErr, deleteErr error
}

func newMemSessions() *memSessions {
	return &memSessions{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (s *memSessions) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *memSessions) Get(_ context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return v, nil
}

func (s *memSessions) Delete(_ context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	delete(s.ttls, key)
	return nil
}

func (s *memSessions) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// ---- attempt counter ----

type memCounter struct {
	mu     sync.Mutex
	counts map[string]int
	writes int
	err    error
}

func newMemCounter() *memCounter {
	return &memCounter{counts: make(map[string]int)}
}

func (c *memCounter) Failures(_ context.Context, key string) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[key], nil
}

func (c *memCounter) RecordFailure(_ context.Context, key string, _ time.Duration) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	c.counts[key]++
	return c.counts[key], nil
}

func (c *memCounter) Reset(_ context.Context, key string) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	delete(c.counts, key)
	return nil
}

func (c *memCounter) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}
