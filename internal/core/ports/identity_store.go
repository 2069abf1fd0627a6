package ports

import (
	"context"

	"github.com/gigmarket/account-security/internal/core/domain"
)

// ProfileUpdate lists the mutable profile fields refreshed on OAuth sign-in.
type ProfileUpdate struct {
	Name  string
	Image string
}

// IdentityStore defines persistence for identity records. Implementations
// must enforce email uniqueness and return domain.ErrUserExists on conflict.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	UpdateProfile(ctx context.Context, email string, update ProfileUpdate) (*domain.Identity, error)
	SetPasswordHash(ctx context.Context, email, hash string) error
	MarkEmailVerified(ctx context.Context, email string) error
}

// PasswordHasher hashes and verifies credential passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}
