package domain

import (
	"errors"
	"log/slog"
	"strings"
	"time"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrHashingFailure     = errors.New("password hashing failed")
	ErrStoreUnavailable   = errors.New("store unavailable")

	ErrDuplicateEmail     = errors.New("email already registered")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionInvalid     = errors.New("session is invalid or expired")
)

// NormalizeEmail returns the uniqueness key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Credential struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// LogValue keeps the password hash out of every log record.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", c.ID),
		slog.String("email", c.Email),
	)
}

type RegistrationRequest struct {
	Email    string
	Password string
}

func (r RegistrationRequest) LogValue() slog.Value {
	return slog.GroupValue(slog.String("email", r.Email))
}

type Session struct {
	Token        string
	CredentialID string
	ExpiresAt    time.Time
}

// ExpiredAt reports whether the session is no longer valid at t.
func (s *Session) ExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

func (s Session) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("credential_id", s.CredentialID),
		slog.Time("expires_at", s.ExpiresAt),
	)
}

type RejectReason string

const (
	ReasonInvalidInput       RejectReason = "invalid_input"
	ReasonInvalidCredentials RejectReason = "invalid_credentials"
	ReasonTooManyAttempts    RejectReason = "too_many_attempts"
)

// AuthResult is the outcome of a login attempt. Exactly one of Session or
// Reason is set.
type AuthResult struct {
	CredentialID string
	Session      *Session
	Reason       RejectReason
}

func Authenticated(s *Session) AuthResult {
	return AuthResult{CredentialID: s.CredentialID, Session: s}
}

func Rejected(reason RejectReason) AuthResult {
	return AuthResult{Reason: reason}
}

func (r AuthResult) OK() bool {
	return r.Session != nil
}
