package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gigmarket/account-security/internal/core/domain"
	"github.com/gigmarket/account-security/internal/core/ports"
)

var errNotStubbed = errors.New("not stubbed")

// stubAccountService implements ports.AccountSecurityService; unset funcs
// return errNotStubbed.
type stubAccountService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*ports.SignInResult, error)
	signInFn         func(ctx context.Context, email, password string) (*ports.SignInResult, error)
	oauthURLFn       func(provider domain.Provider, state string) (string, error)
	oauthSignInFn    func(ctx context.Context, provider domain.Provider, code string) (*ports.SignInResult, error)
	sessionFn        func(ctx context.Context, token string) (*ports.SessionResult, error)
	resetFn          func(ctx context.Context, email string) (*ports.ActionResult, error)
	confirmResetFn   func(ctx context.Context, token, password string) error
	resendFn         func(ctx context.Context, email string) (*ports.ActionResult, error)
	confirmVerifyFn  func(ctx context.Context, email, code string) error
	lookupIdentityFn func(ctx context.Context, email string) (*domain.Identity, error)
}

func (s *stubAccountService) Register(ctx context.Context, in ports.RegisterInput) (*ports.SignInResult, error) {
	if s.registerFn == nil {
		return nil, errNotStubbed
	}
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) SignInCredentials(ctx context.Context, email, password string) (*ports.SignInResult, error) {
	if s.signInFn == nil {
		return nil, errNotStubbed
	}
	return s.signInFn(ctx, email, password)
}

func (s *stubAccountService) OAuthLoginURL(provider domain.Provider, state string) (string, error) {
	if s.oauthURLFn == nil {
		return "", errNotStubbed
	}
	return s.oauthURLFn(provider, state)
}

func (s *stubAccountService) SignInOAuth(ctx context.Context, provider domain.Provider, code string) (*ports.SignInResult, error) {
	if s.oauthSignInFn == nil {
		return nil, errNotStubbed
	}
	return s.oauthSignInFn(ctx, provider, code)
}

func (s *stubAccountService) Session(ctx context.Context, token string) (*ports.SessionResult, error) {
	if s.sessionFn == nil {
		return nil, errNotStubbed
	}
	return s.sessionFn(ctx, token)
}

func (s *stubAccountService) RequestPasswordReset(ctx context.Context, email string) (*ports.ActionResult, error) {
	if s.resetFn == nil {
		return nil, errNotStubbed
	}
	return s.resetFn(ctx, email)
}

func (s *stubAccountService) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	if s.confirmResetFn == nil {
		return errNotStubbed
	}
	return s.confirmResetFn(ctx, token, password)
}

func (s *stubAccountService) ResendVerification(ctx context.Context, email string) (*ports.ActionResult, error) {
	if s.resendFn == nil {
		return nil, errNotStubbed
	}
	return s.resendFn(ctx, email)
}

func (s *stubAccountService) ConfirmVerification(ctx context.Context, email, code string) error {
	if s.confirmVerifyFn == nil {
		return errNotStubbed
	}
	return s.confirmVerifyFn(ctx, email, code)
}

func (s *stubAccountService) LookupIdentity(ctx context.Context, email string) (*domain.Identity, error) {
	if s.lookupIdentityFn == nil {
		return nil, errNotStubbed
	}
	return s.lookupIdentityFn(ctx, email)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

var _ ports.AccountSecurityService = (*stubAccountService)(nil)
