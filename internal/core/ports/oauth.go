package ports

import (
	"context"

	"github.com/gigmarket/account-security/internal/core/domain"
)

// OAuthProvider wraps one external sign-in provider. Implementations return
// identity facts only; reconciliation happens in the core.
type OAuthProvider interface {
	Name() domain.Provider
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.OAuthProfile, error)
}
