package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigmarket/account-security/internal/api/metrics"
	"github.com/gigmarket/account-security/internal/core/domain"
	"github.com/gigmarket/account-security/internal/core/ports"
)

const minPasswordLength = 8

// IdentityReconciler is the persistence wrapper around Decide.
type IdentityReconciler struct {
	store  ports.IdentityStore
	hasher ports.PasswordHasher
	rules  ReconcileRules
	log    zerolog.Logger
	now    func() time.Time
}

func NewIdentityReconciler(store ports.IdentityStore, hasher ports.PasswordHasher, rules ReconcileRules, log zerolog.Logger) *IdentityReconciler {
	return &IdentityReconciler{
		store:  store,
		hasher: hasher,
		rules:  rules,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Reconcile looks up the identity for the attempt's email, decides, and
// applies the resulting store action. A deny is returned as *domain.DenyError.
func (r *IdentityReconciler) Reconcile(ctx context.Context, attempt SignInAttempt) (*domain.Identity, error) {
	attempt.Email = domain.NormalizeEmail(attempt.Email)
	if attempt.Email == "" {
		return nil, domain.NewValidationError("email is required")
	}
	if !attempt.Provider.Valid() {
		return nil, fmt.Errorf("reconcile: %w: %s", domain.ErrUnknownProvider, attempt.Provider)
	}

	existing, err := r.store.FindByEmail(ctx, attempt.Email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("reconcile: lookup: %w", err)
	}

	out := Decide(attempt, existing, r.hasher, r.rules)
	if !out.Allowed() {
		metrics.SignInTotal.WithLabelValues(string(attempt.Provider), "denied").Inc()
		r.log.Info().
			Str("provider", string(attempt.Provider)).
			Str("reason", out.Deny.Reason.Error()).
			Msg("sign-in denied")
		return nil, out.Deny
	}

	identity, err := r.apply(ctx, out)
	if err != nil {
		return nil, err
	}
	metrics.SignInTotal.WithLabelValues(string(attempt.Provider), "allowed").Inc()
	return identity, nil
}

func (r *IdentityReconciler) apply(ctx context.Context, out Outcome) (*domain.Identity, error) {
	switch out.Action {
	case ActionCreate:
		now := r.now()
		out.Identity.CreatedAt = now
		out.Identity.UpdatedAt = now
		created, err := r.store.Create(ctx, out.Identity)
		if errors.Is(err, domain.ErrUserExists) {
			// A concurrent first sign-in won the insert; decide again against it.
			return r.retryAfterRace(ctx, out.Identity)
		}
		if err != nil {
			return nil, fmt.Errorf("reconcile: create: %w", err)
		}
		r.log.Info().Str("provider", string(created.Provider)).Str("id", created.ID).Msg("identity created")
		return created, nil
	case ActionUpdateProfile:
		updated, err := r.store.UpdateProfile(ctx, out.Identity.Email, ports.ProfileUpdate{
			Name:  out.Identity.Name,
			Image: out.Identity.Image,
		})
		if err != nil {
			return nil, fmt.Errorf("reconcile: update profile: %w", err)
		}
		return updated, nil
	default:
		return out.Identity, nil
	}
}

func (r *IdentityReconciler) retryAfterRace(ctx context.Context, wanted *domain.Identity) (*domain.Identity, error) {
	existing, err := r.store.FindByEmail(ctx, wanted.Email)
	if err != nil {
		return nil, fmt.Errorf("reconcile: lookup after conflict: %w", err)
	}
	out := Decide(SignInAttempt{
		Email:    wanted.Email,
		Provider: wanted.Provider,
		Profile:  &domain.OAuthProfile{Provider: wanted.Provider, Name: wanted.Name, Image: wanted.Image},
	}, existing, r.hasher, r.rules)
	if !out.Allowed() {
		return nil, out.Deny
	}
	if out.Action == ActionCreate {
		return nil, fmt.Errorf("reconcile: %w", domain.ErrUserExists)
	}
	return r.apply(ctx, out)
}

// Register creates a credentials identity. Any existing record for the
// email, whatever its provider, is a conflict.
func (r *IdentityReconciler) Register(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return nil, domain.NewValidationError("email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	role := in.Role
	if role == "" {
		role = domain.RoleFreelancer
	}
	if role != domain.RoleFreelancer && role != domain.RoleClient {
		return nil, domain.NewValidationError("role must be one of: freelancer client")
	}

	hash, err := r.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := r.now()
	created, err := r.store.Create(ctx, &domain.Identity{
		Email:        email,
		Name:         in.Name,
		PasswordHash: hash,
		Provider:     domain.ProviderCredentials,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	r.log.Info().Str("id", created.ID).Msg("credentials identity registered")
	return created, nil
}

// SetPassword replaces the password of a credentials identity.
func (r *IdentityReconciler) SetPassword(ctx context.Context, email, password string) error {
	if len(password) < minPasswordLength {
		return domain.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	identity, err := r.store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if identity.Provider != domain.ProviderCredentials {
		return &domain.DenyError{Reason: domain.ErrProviderConflict, Message: signInHint(identity.Provider)}
	}
	hash, err := r.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("set password: hash: %w", err)
	}
	return r.store.SetPasswordHash(ctx, identity.Email, hash)
}
