package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/gigmarket/account-security/internal/api/handler"
	"github.com/gigmarket/account-security/internal/api/middleware"
	"github.com/gigmarket/account-security/internal/core/domain"
	"github.com/gigmarket/account-security/internal/core/ports"
)

// stubService embeds the interface so each test only implements what it hits.
type stubService struct {
	ports.AccountSecurityService
	resetErr  error
	signInErr error
	sessions  map[string]*ports.SessionResult
}

func (s *stubService) RequestPasswordReset(_ context.Context, email string) (*ports.ActionResult, error) {
	if s.resetErr != nil {
		return nil, s.resetErr
	}
	return &ports.ActionResult{Message: "Password reset link sent to your email"}, nil
}

func (s *stubService) SignInCredentials(context.Context, string, string) (*ports.SignInResult, error) {
	return nil, s.signInErr
}

func (s *stubService) Session(_ context.Context, token string) (*ports.SessionResult, error) {
	res, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return res, nil
}

func (s *stubService) LookupIdentity(_ context.Context, email string) (*domain.Identity, error) {
	return &domain.Identity{Email: email, Role: domain.RoleFreelancer}, nil
}

func newTestRouter(svc ports.AccountSecurityService) http.Handler {
	return NewRouter(RouterDeps{
		Service:  svc,
		Log:      zerolog.Nop(),
		Registry: prometheus.NewRegistry(),
		Checks: map[string]handler.PingFunc{
			"mongo": func(context.Context) error { return nil },
		},
	})
}

func do(t *testing.T, h http.Handler, method, target, body string, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
		}
	}
	return rec, resp
}

func TestRouter_RateLimitedResponse(t *testing.T) {
	h := newTestRouter(&stubService{
		resetErr: &domain.RateLimitedError{Action: domain.ActionPasswordReset, RetryAfterSeconds: 570},
	})

	rec, resp := do(t, h, http.MethodPost, "/auth/password-reset", `{"email":"a@x.com"}`, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "570" {
		t.Fatalf("expected Retry-After 570, got %q", rec.Header().Get("Retry-After"))
	}
	if resp["cooldownActive"] != true || resp["remainingTime"] != float64(570) {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestRouter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		svc      *stubService
		target   string
		body     string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "missing email",
			svc:      &stubService{resetErr: domain.NewValidationError("Email Id not found")},
			target:   "/auth/password-reset",
			body:     `{}`,
			wantCode: http.StatusBadRequest,
			wantMsg:  "Email Id not found",
		},
		{
			name:     "unknown email",
			svc:      &stubService{resetErr: domain.ErrUserNotFound},
			target:   "/auth/password-reset",
			body:     `{"email":"ghost@x.com"}`,
			wantCode: http.StatusNotFound,
			wantMsg:  "User not found with this email",
		},
		{
			name:     "already verified",
			svc:      &stubService{resetErr: domain.ErrAlreadyVerified},
			target:   "/auth/password-reset",
			body:     `{"email":"a@x.com"}`,
			wantCode: http.StatusConflict,
		},
		{
			name:     "provider conflict",
			svc:      &stubService{signInErr: &domain.DenyError{Reason: domain.ErrProviderConflict, Message: "use GitHub sign-in"}},
			target:   "/auth/login",
			body:     `{"email":"a@x.com","password":"secret123"}`,
			wantCode: http.StatusUnauthorized,
			wantMsg:  "use GitHub sign-in",
		},
		{
			name:     "banned",
			svc:      &stubService{signInErr: &domain.DenyError{Reason: domain.ErrAccountBanned, Message: "this account has been suspended"}},
			target:   "/auth/login",
			body:     `{"email":"a@x.com","password":"secret123"}`,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "no account",
			svc:      &stubService{signInErr: &domain.DenyError{Reason: domain.ErrUserNotFound}},
			target:   "/auth/login",
			body:     `{"email":"a@x.com","password":"secret123"}`,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "unexpected",
			svc:      &stubService{signInErr: errors.New("mongo: socket closed")},
			target:   "/auth/login",
			body:     `{"email":"a@x.com","password":"secret123"}`,
			wantCode: http.StatusInternalServerError,
			wantMsg:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := do(t, newTestRouter(tt.svc), http.MethodPost, tt.target, tt.body, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d (%s)", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantMsg != "" && resp["message"] != tt.wantMsg {
				t.Fatalf("expected message %q, got %v", tt.wantMsg, resp["message"])
			}
		})
	}
}

func TestRouter_SessionAndAdmin(t *testing.T) {
	svc := &stubService{sessions: map[string]*ports.SessionResult{
		"client-token": {View: domain.SessionView{Email: "c@x.com", Role: domain.RoleClient}},
		"admin-token":  {View: domain.SessionView{Email: "admin@x.com", Role: domain.RoleAdmin}, RefreshedToken: "fresh"},
	}}
	h := newTestRouter(svc)

	if rec, _ := do(t, h, http.MethodGet, "/auth/session", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodGet, "/auth/session", "", map[string]string{"Authorization": "Bearer bogus"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", rec.Code)
	}

	rec, resp := do(t, h, http.MethodGet, "/auth/session", "", map[string]string{"Authorization": "Bearer client-token"})
	if rec.Code != http.StatusOK || resp["role"] != domain.RoleClient {
		t.Fatalf("session: %d %v", rec.Code, resp)
	}

	if rec, _ := do(t, h, http.MethodGet, "/admin/identities/a@x.com", "", map[string]string{"Authorization": "Bearer client-token"}); rec.Code != http.StatusForbidden {
		t.Fatalf("client on admin route: expected 403, got %d", rec.Code)
	}

	rec, resp = do(t, h, http.MethodGet, "/admin/identities/a@x.com", "", map[string]string{"Authorization": "Bearer admin-token"})
	if rec.Code != http.StatusOK || resp["email"] != "a@x.com" {
		t.Fatalf("admin lookup: %d %v", rec.Code, resp)
	}
	if rec.Header().Get(middleware.RefreshedTokenHeader) != "fresh" {
		t.Fatalf("expected refreshed token header")
	}
}

func TestRouter_OpsEndpoints(t *testing.T) {
	h := newTestRouter(&stubService{})

	if rec, resp := do(t, h, http.MethodGet, "/health/ready", "", nil); rec.Code != http.StatusOK || resp["status"] != "ok" {
		t.Fatalf("readiness: %d %v", rec.Code, resp)
	}
	do(t, h, http.MethodPost, "/auth/password-reset", `{"email":"a@x.com"}`, nil)
	rec, _ := do(t, h, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "gigmarket_requests_total") {
		t.Fatalf("expected request metrics, got %s", rec.Body.String())
	}
	if rec, _ := do(t, h, http.MethodGet, "/nope", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route: expected 404, got %d", rec.Code)
	}
}
