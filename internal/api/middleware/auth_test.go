package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/gigmarket/account-security/internal/api/handler"
	"github.com/gigmarket/account-security/internal/core/domain"
	"github.com/gigmarket/account-security/internal/core/ports"
)

type stubResolver struct {
	res   *ports.SessionResult
	err   error
	token string
}

func (s *stubResolver) Session(_ context.Context, token string) (*ports.SessionResult, error) {
	s.token = token
	return s.res, s.err
}

func runAuth(t *testing.T, resolver SessionResolver, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth(resolver)(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	resolver := &stubResolver{res: &ports.SessionResult{View: domain.SessionView{
		UserID: "u1", Email: "a@x.com", Role: domain.RoleAdmin, Provider: domain.ProviderGoogle,
	}}}

	called := false
	rec := runAuth(t, resolver, "Bearer tok", func(c echo.Context) error {
		called = true
		view, ok := c.Get(handler.SessionKey).(domain.SessionView)
		if !ok || view.Email != "a@x.com" {
			t.Fatalf("session not set: %+v", c.Get(handler.SessionKey))
		}
		if c.Get("role") != domain.RoleAdmin {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected next to run with 200, called=%v code=%d", called, rec.Code)
	}
	if resolver.token != "tok" {
		t.Fatalf("resolver got %q", resolver.token)
	}
	if rec.Header().Get(RefreshedTokenHeader) != "" {
		t.Fatalf("no refreshed token expected")
	}
}

func TestAuthMiddleware_RefreshedTokenHeader(t *testing.T) {
	resolver := &stubResolver{res: &ports.SessionResult{
		View:           domain.SessionView{Email: "a@x.com", Role: domain.RoleClient},
		RefreshedToken: "new-token",
	}}

	rec := runAuth(t, resolver, "Bearer old", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if rec.Header().Get(RefreshedTokenHeader) != "new-token" {
		t.Fatalf("expected refreshed token header, got %q", rec.Header().Get(RefreshedTokenHeader))
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		resolver *stubResolver
		wantCode int
	}{
		{name: "missing header", header: "", resolver: &stubResolver{}, wantCode: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Token abc", resolver: &stubResolver{}, wantCode: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", resolver: &stubResolver{err: domain.ErrInvalidToken}, wantCode: http.StatusUnauthorized},
		{name: "store failure", header: "Bearer tok", resolver: &stubResolver{err: errors.New("boom")}, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := runAuth(t, tt.resolver, tt.header, func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}
