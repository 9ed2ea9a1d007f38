package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/secure-login/internal/domain"
	"github.com/ErlanBelekov/secure-login/internal/reqctx"
	"github.com/ErlanBelekov/secure-login/internal/transport/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeValidator struct {
	validate func(ctx context.Context, token string) (string, error)
}

func (f *fakeValidator) ValidateSession(ctx context.Context, token string) (string, error) {
	return f.validate(ctx, token)
}

// newEngine protects GET /protected with SessionToken + RequireSession.
// The handler writes the credential ID from both gin and request context.
func newEngine(v *fakeValidator) *gin.Engine {
	r := gin.New()
	r.GET("/protected", middleware.SessionToken(), middleware.RequireSession(v), func(c *gin.Context) {
		c.String(http.StatusOK, "%s|%s", c.GetString(middleware.CredentialIDKey), reqctx.CredentialID(c.Request.Context()))
	})
	return r
}

func acceptToken(want string) *fakeValidator {
	return &fakeValidator{
		validate: func(_ context.Context, token string) (string, error) {
			if token != want {
				return "", domain.ErrSessionInvalid
			}
			return "cred-1", nil
		},
	}
}

func TestRequireSession_MissingToken_Returns401(t *testing.T) {
	v := &fakeValidator{
		validate: func(_ context.Context, _ string) (string, error) {
			t.Fatal("validator must not run without a token")
			return "", nil
		},
	}
	w := httptest.NewRecorder()
	newEngine(v).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireSession_NonBearerScheme_Returns401(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	newEngine(acceptToken("tok")).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireSession_InvalidToken_Returns401(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	newEngine(acceptToken("tok")).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if got := w.Body.String(); got != `{"error":"invalid_session","status":"fail"}` {
		t.Errorf("body = %s", got)
	}
}

func TestRequireSession_ValidatorError_Returns401(t *testing.T) {
	v := &fakeValidator{
		validate: func(_ context.Context, _ string) (string, error) {
			return "", errors.New("redis down")
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tok")
	newEngine(v).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireSession_BearerToken_SetsCredentialID(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tok")
	newEngine(acceptToken("tok")).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "cred-1|cred-1" {
		t.Errorf("body = %q, want cred-1|cred-1", got)
	}
}

func TestRequireSession_Cookie(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "tok"})
	newEngine(acceptToken("tok")).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestSessionToken_BearerWinsOverCookie(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer header-tok")
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "cookie-tok"})
	newEngine(acceptToken("header-tok")).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
