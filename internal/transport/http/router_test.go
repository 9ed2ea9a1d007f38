package httptransport_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/secure-login/internal/domain"
	httptransport "github.com/ErlanBelekov/secure-login/internal/transport/http"
	"github.com/ErlanBelekov/secure-login/internal/transport/http/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct{}

func (stubAuth) Register(context.Context, domain.RegistrationRequest) (string, error) {
	return "cred-1", nil
}

func (stubAuth) Login(context.Context, string, string) (domain.AuthResult, error) {
	return domain.Rejected(domain.ReasonInvalidCredentials), nil
}

func (stubAuth) Logout(context.Context, string) error { return nil }

func (stubAuth) RefreshSession(context.Context, string) (*domain.Session, error) {
	return nil, domain.ErrSessionInvalid
}

func (stubAuth) ValidateSession(_ context.Context, token string) (string, error) {
	if token != "good-token" {
		return "", domain.ErrSessionInvalid
	}
	return "cred-1", nil
}

func newRouter() *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewAuthHandler(stubAuth{}, handler.CookieConfig{}, logger)
	return httptransport.NewRouter(logger, h, stubAuth{})
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	r.ServeHTTP(w, req)
	return w
}

func failCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	if body["status"] != "fail" {
		t.Errorf("status = %q, want fail", body["status"])
	}
	return body["error"]
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := newRouter()
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/login"},
		{http.MethodGet, "/api/register"},
		{http.MethodDelete, "/api/session"},
		{http.MethodPut, "/api/logout"},
	} {
		w := serve(r, tc.method, tc.path, nil)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status = %d, want 405", tc.method, tc.path, w.Code)
		}
		if code := failCode(t, w); code != "method_not_allowed" {
			t.Errorf("%s %s: error = %q, want method_not_allowed", tc.method, tc.path, code)
		}
	}
}

func TestRouter_NotFound(t *testing.T) {
	w := serve(newRouter(), http.MethodGet, "/admin", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if code := failCode(t, w); code != "not_found" {
		t.Errorf("error = %q, want not_found", code)
	}
}

func TestRouter_TrailingSlashRedirects(t *testing.T) {
	w := serve(newRouter(), http.MethodPost, "/api/login/", nil)
	if w.Code != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want 307", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/api/login" {
		t.Errorf("Location = %q, want /api/login", loc)
	}
}

func TestRouter_SessionRequiresToken(t *testing.T) {
	r := newRouter()

	w := serve(r, http.MethodGet, "/api/session", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if code := failCode(t, w); code != "invalid_session" {
		t.Errorf("error = %q, want invalid_session", code)
	}

	w = serve(r, http.MethodGet, "/api/session", http.Header{"Authorization": {"Bearer good-token"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "success" || body["credentialId"] != "cred-1" {
		t.Errorf("body = %v, want success for cred-1", body)
	}
}

func TestRouter_CommonHeaders(t *testing.T) {
	w := serve(newRouter(), http.MethodPost, "/api/login", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"Cache-Control":          "no-store",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}
