package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/ErlanBelekov/secure-login/internal/domain"
	"github.com/ErlanBelekov/secure-login/internal/metrics"
	"github.com/ErlanBelekov/secure-login/internal/repository"
)

const (
	defaultMinPasswordLength = 8
	maxPasswordLength        = 1024
)

// PasswordHasher is satisfied by *password.Pool.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) ([]byte, error)
	Verify(ctx context.Context, password string, hash []byte) (bool, error)
	DummyHash() []byte
}

type AuthConfig struct {
	MinPasswordLength int
	// MaxFailures failed logins within LockoutWindow lock the email out
	// until the window passes without a new failure.
	MaxFailures   int
	LockoutWindow time.Duration
}

type AuthUsecase struct {
	credentials repository.CredentialRepository
	hasher      PasswordHasher
	sessions    *SessionIssuer
	limiter     repository.AttemptCounter
	cfg         AuthConfig
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewAuthUsecase wires the login and registration flow. limiter may be nil,
// which disables lockout.
func NewAuthUsecase(
	credentials repository.CredentialRepository,
	hasher PasswordHasher,
	sessions *SessionIssuer,
	limiter repository.AttemptCounter,
	cfg AuthConfig,
	logger *slog.Logger,
) *AuthUsecase {
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = defaultMinPasswordLength
	}
	return &AuthUsecase{
		credentials: credentials,
		hasher:      hasher,
		sessions:    sessions,
		limiter:     limiter,
		cfg:         cfg,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.With("component", "auth"),
	}
}

// Register stores a new credential and returns its ID. A taken email yields
// the generic domain.ErrRegistrationFailed.
func (u *AuthUsecase) Register(ctx context.Context, req domain.RegistrationRequest) (string, error) {
	email := domain.NormalizeEmail(req.Email)
	if err := u.checkRegistration(email, req.Password); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid_input").Inc()
		return "", err
	}

	hash, err := u.hasher.Hash(ctx, req.Password)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %w", domain.ErrHashingFailure, err)
	}

	id, err := u.credentials.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
			u.logger.InfoContext(ctx, "registration rejected", "reason", "duplicate")
			return "", domain.ErrRegistrationFailed
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("create credential: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	u.logger.InfoContext(ctx, "credential registered", "credential_id", id)
	return id, nil
}

func (u *AuthUsecase) checkRegistration(email, password string) error {
	if err := u.validate.Var(email, "required,email,max=254"); err != nil {
		return fmt.Errorf("%w: email", domain.ErrInvalidInput)
	}
	n := utf8.RuneCountInString(password)
	if n < u.cfg.MinPasswordLength || n > maxPasswordLength {
		return fmt.Errorf("%w: password length", domain.ErrInvalidInput)
	}
	return nil
}

// Login checks a password and issues a session. Rejections are returned in
// the AuthResult; the error is reserved for infrastructure failures.
//
// Unknown emails are verified against a dummy hash and count toward lockout
// like known ones, so neither timing nor rejection reason reveals whether an
// email is registered.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (domain.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" || utf8.RuneCountInString(password) > maxPasswordLength {
		metrics.LoginsTotal.WithLabelValues("invalid_input").Inc()
		return domain.Rejected(domain.ReasonInvalidInput), nil
	}

	cred, err := u.credentials.FindByEmail(ctx, email)
	found := err == nil
	if err != nil && !errors.Is(err, domain.ErrCredentialNotFound) {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return domain.AuthResult{}, fmt.Errorf("find credential: %w", err)
	}

	hash := u.hasher.DummyHash()
	if found {
		hash = cred.PasswordHash
	}

	match, err := u.hasher.Verify(ctx, password, hash)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.AuthResult{}, ctxErr
		}
		if found {
			u.logger.ErrorContext(ctx, "stored password hash unusable", "credential_id", cred.ID, "error", err)
		}
		match = false
	}
	match = match && found

	// Every attempt during lockout counts as a failure, matched or not.
	if u.lockedOut(ctx, email) {
		metrics.LoginsTotal.WithLabelValues("too_many_attempts").Inc()
		u.recordFailure(ctx, email)
		return domain.Rejected(domain.ReasonTooManyAttempts), nil
	}

	if !match {
		u.recordFailure(ctx, email)
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return domain.Rejected(domain.ReasonInvalidCredentials), nil
	}

	u.resetFailures(ctx, email)

	session, err := u.sessions.Issue(ctx, cred.ID)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return domain.AuthResult{}, fmt.Errorf("issue session: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	u.logger.InfoContext(ctx, "login succeeded", "credential_id", cred.ID)
	return domain.Authenticated(session), nil
}

// Logout revokes the session behind token. Unknown tokens are not an error.
func (u *AuthUsecase) Logout(ctx context.Context, token string) error {
	return u.sessions.Revoke(ctx, token)
}

func (u *AuthUsecase) ValidateSession(ctx context.Context, token string) (string, error) {
	return u.sessions.Validate(ctx, token)
}

func (u *AuthUsecase) RefreshSession(ctx context.Context, token string) (*domain.Session, error) {
	return u.sessions.Refresh(ctx, token)
}

// lockedOut reports whether email has reached MaxFailures. Attempt counter
// errors are logged and never fail a login.
func (u *AuthUsecase) lockedOut(ctx context.Context, email string) bool {
	if u.limiter == nil || u.cfg.MaxFailures <= 0 {
		return false
	}
	n, err := u.limiter.Failures(ctx, email)
	if err != nil {
		u.logger.WarnContext(ctx, "attempt counter read failed", "error", err)
		return false
	}
	return n >= u.cfg.MaxFailures
}

func (u *AuthUsecase) recordFailure(ctx context.Context, email string) {
	if u.limiter == nil || u.cfg.MaxFailures <= 0 {
		return
	}
	if _, err := u.limiter.RecordFailure(ctx, email, u.cfg.LockoutWindow); err != nil {
		u.logger.WarnContext(ctx, "attempt counter write failed", "error", err)
	}
}

func (u *AuthUsecase) resetFailures(ctx context.Context, email string) {
	if u.limiter == nil || u.cfg.MaxFailures <= 0 {
		return
	}
	if err := u.limiter.Reset(ctx, email); err != nil {
		u.logger.WarnContext(ctx, "attempt counter reset failed", "error", err)
	}
}
