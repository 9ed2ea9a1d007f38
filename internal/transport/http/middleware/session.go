package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/secure-login/internal/reqctx"
	"github.com/ErlanBelekov/secure-login/internal/transport/http/response"
)

const (
	// SessionCookie is the cookie login sets and the API reads back.
	SessionCookie = "session_token"

	SessionTokenKey = "sessionToken"
	CredentialIDKey = "credentialID"
)

// SessionValidator is satisfied by *usecase.AuthUsecase.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (string, error)
}

// SessionToken copies the caller's session token into the gin context under
// SessionTokenKey. A Bearer header wins over the cookie.
func SessionToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearer(c.GetHeader("Authorization")); token != "" {
			c.Set(SessionTokenKey, token)
		} else if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
			c.Set(SessionTokenKey, cookie)
		}
		c.Next()
	}
}

// RequireSession rejects requests without a live session and sets
// CredentialIDKey for the handlers behind it. Run SessionToken first.
func RequireSession(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetString(SessionTokenKey)
		if token == "" {
			response.Fail(c, http.StatusUnauthorized, response.CodeInvalidSession)
			return
		}

		credentialID, err := sessions.ValidateSession(c.Request.Context(), token)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, response.CodeInvalidSession)
			return
		}

		c.Set(CredentialIDKey, credentialID)
		c.Request = c.Request.WithContext(reqctx.WithCredentialID(c.Request.Context(), credentialID))
		c.Next()
	}
}

func bearer(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
