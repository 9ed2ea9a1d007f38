package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/secure-login/internal/domain"
	"github.com/ErlanBelekov/secure-login/internal/transport/http/middleware"
	"github.com/ErlanBelekov/secure-login/internal/transport/http/response"
)

const maxBodyBytes = 16 << 10

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, req domain.RegistrationRequest) (string, error)
	Login(ctx context.Context, email, password string) (domain.AuthResult, error)
	Logout(ctx context.Context, token string) error
	RefreshSession(ctx context.Context, token string) (*domain.Session, error)
}

type CookieConfig struct {
	Secure bool
}

type AuthHandler struct {
	authUsecase authUsecaser
	cookie      CookieConfig
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, cookie CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		cookie:      cookie,
		logger:      logger.With("component", "auth_handler"),
	}
}

// credentialsRequest accepts JSON or form bodies.
type credentialsRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) bind(c *gin.Context) (credentialsRequest, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeInvalidInput)
		return req, false
	}
	return req, true
}

// POST /api/register
// Returns 201 {"status":"success"}; a taken email is indistinguishable from
// any other registration failure.
func (h *AuthHandler) Register(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	_, err := h.authUsecase.Register(c.Request.Context(), domain.RegistrationRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, "register", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success"})
}

// POST /api/login
// Returns {"status":"success","sessionToken":"..."} and sets the session
// cookie. Unknown email and wrong password produce the same 401 body.
func (h *AuthHandler) Login(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, "login", err)
		return
	}

	switch result.Reason {
	case domain.ReasonInvalidInput:
		response.Fail(c, http.StatusBadRequest, response.CodeInvalidInput)
		return
	case domain.ReasonTooManyAttempts:
		response.Fail(c, http.StatusTooManyRequests, response.CodeTooManyAttempts)
		return
	}
	if !result.OK() {
		response.Fail(c, http.StatusUnauthorized, response.CodeInvalidCredentials)
		return
	}

	h.respondWithSession(c, result.Session)
}

// POST /api/logout
// Always 204; logging out twice or without a session is not an error.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.SessionTokenKey)
	if token != "" {
		if err := h.authUsecase.Logout(c.Request.Context(), token); err != nil {
			h.respondError(c, "logout", err)
			return
		}
	}

	h.clearCookie(c)
	c.Status(http.StatusNoContent)
}

// GET /api/session
// Runs behind RequireSession.
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"credentialId": c.GetString(middleware.CredentialIDKey),
	})
}

// POST /api/session/refresh
// Replaces the caller's session; the old token stops working.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := c.GetString(middleware.SessionTokenKey)
	if token == "" {
		response.Fail(c, http.StatusUnauthorized, response.CodeInvalidSession)
		return
	}

	session, err := h.authUsecase.RefreshSession(c.Request.Context(), token)
	if err != nil {
		h.respondError(c, "refresh session", err)
		return
	}

	h.respondWithSession(c, session)
}

func (h *AuthHandler) respondWithSession(c *gin.Context, s *domain.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, s.Token, maxAge, "/", "", h.cookie.Secure, true)

	c.JSON(http.StatusOK, gin.H{"status": "success", "sessionToken": s.Token})
}

func (h *AuthHandler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.cookie.Secure, true)
}

// respondError maps usecase errors onto failure codes and logs what the
// client does not get to see.
func (h *AuthHandler) respondError(c *gin.Context, op string, err error) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		response.Fail(c, http.StatusBadRequest, response.CodeInvalidInput)
	case errors.Is(err, domain.ErrRegistrationFailed):
		response.Fail(c, http.StatusBadRequest, response.CodeRegistrationFailed)
	case errors.Is(err, domain.ErrSessionInvalid):
		response.Fail(c, http.StatusUnauthorized, response.CodeInvalidSession)
	case errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		h.logger.ErrorContext(ctx, op, "error", err)
		response.Fail(c, http.StatusServiceUnavailable, response.CodeUnavailable)
	default:
		h.logger.ErrorContext(ctx, op, "error", err)
		response.Fail(c, http.StatusInternalServerError, response.CodeInternal)
	}
}
