package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/secure-login/internal/domain"
	"github.com/ErlanBelekov/secure-login/internal/metrics"
	"github.com/ErlanBelekov/secure-login/internal/repository"
)

const (
	tokenBytes     = 32
	tokenHexLength = tokenBytes * 2
)

type sessionRecord struct {
	CredentialID string    `json:"credential_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SessionIssuer creates and resolves opaque session tokens. Only the
// SHA-256 of a token is used as the store key, so a leaked store dump
// cannot be replayed.
type SessionIssuer struct {
	store  repository.SessionStore
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
	rand   io.Reader
}

func NewSessionIssuer(store repository.SessionStore, ttl time.Duration, logger *slog.Logger) *SessionIssuer {
	return &SessionIssuer{
		store:  store,
		ttl:    ttl,
		logger: logger.With("component", "sessions"),
		now:    time.Now,
		rand:   rand.Reader,
	}
}

func (s *SessionIssuer) Issue(ctx context.Context, credentialID string) (*domain.Session, error) {
	raw := make([]byte, tokenBytes)
	if _, err := io.ReadFull(s.rand, raw); err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(raw)

	session := &domain.Session{
		Token:        token,
		CredentialID: credentialID,
		ExpiresAt:    s.now().Add(s.ttl).UTC(),
	}

	record, err := json.Marshal(sessionRecord{CredentialID: credentialID, ExpiresAt: session.ExpiresAt})
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	if err := s.store.Set(ctx, sessionKey(token), record, s.ttl); err != nil {
		return nil, fmt.Errorf("%w: store session: %w", domain.ErrStoreUnavailable, err)
	}

	metrics.SessionsIssuedTotal.Inc()
	return session, nil
}

// Validate returns the credential ID a live token belongs to. Every failure,
// including store errors, is reported as domain.ErrSessionInvalid.
func (s *SessionIssuer) Validate(ctx context.Context, token string) (string, error) {
	if !wellFormedToken(token) {
		return "", domain.ErrSessionInvalid
	}

	value, err := s.store.Get(ctx, sessionKey(token))
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			s.logger.ErrorContext(ctx, "session lookup failed", "error", err)
		}
		return "", domain.ErrSessionInvalid
	}

	var rec sessionRecord
	if err := json.Unmarshal(value, &rec); err != nil || rec.CredentialID == "" {
		s.logger.WarnContext(ctx, "discarding unreadable session record")
		return "", domain.ErrSessionInvalid
	}

	session := domain.Session{CredentialID: rec.CredentialID, ExpiresAt: rec.ExpiresAt}
	if session.ExpiredAt(s.now()) {
		return "", domain.ErrSessionInvalid
	}
	return rec.CredentialID, nil
}

// Revoke deletes the session. Revoking an unknown or malformed token succeeds.
func (s *SessionIssuer) Revoke(ctx context.Context, token string) error {
	if !wellFormedToken(token) {
		return nil
	}
	if err := s.store.Delete(ctx, sessionKey(token)); err != nil {
		return fmt.Errorf("%w: revoke session: %w", domain.ErrStoreUnavailable, err)
	}
	metrics.SessionsRevokedTotal.Inc()
	return nil
}

// Refresh replaces a live session with a new one and revokes the old token.
func (s *SessionIssuer) Refresh(ctx context.Context, token string) (*domain.Session, error) {
	credentialID, err := s.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	session, err := s.Issue(ctx, credentialID)
	if err != nil {
		return nil, err
	}

	if err := s.Revoke(ctx, token); err != nil {
		s.logger.ErrorContext(ctx, "revoke refreshed session failed", "error", err)
	}
	return session, nil
}

func sessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func wellFormedToken(token string) bool {
	if len(token) != tokenHexLength {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}
