package ports

import (
	"context"

	"github.com/gigmarket/account-security/internal/core/domain"
)

// RegisterInput carries a credentials registration request.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// SignInResult is returned by every successful sign-in path.
type SignInResult struct {
	Token    string
	Identity *domain.Identity
}

// ActionResult is the outcome of a guarded email action.
type ActionResult struct {
	Message        string
	CooldownActive bool
	// RemainingTime is the cooldown length in seconds, set only when CooldownActive.
	RemainingTime int
}

// SessionResult is the resolved session plus a re-signed token when the
// claims had to be backfilled.
type SessionResult struct {
	View           domain.SessionView
	RefreshedToken string
}

// AccountSecurityService is the only surface the HTTP layer calls.
type AccountSecurityService interface {
	Register(ctx context.Context, in RegisterInput) (*SignInResult, error)
	SignInCredentials(ctx context.Context, email, password string) (*SignInResult, error)
	OAuthLoginURL(provider domain.Provider, state string) (string, error)
	SignInOAuth(ctx context.Context, provider domain.Provider, code string) (*SignInResult, error)
	Session(ctx context.Context, token string) (*SessionResult, error)

	RequestPasswordReset(ctx context.Context, email string) (*ActionResult, error)
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	ResendVerification(ctx context.Context, email string) (*ActionResult, error)
	ConfirmVerification(ctx context.Context, email, code string) error

	LookupIdentity(ctx context.Context, email string) (*domain.Identity, error)
}
