package service

import (
	"fmt"

	"github.com/gigmarket/account-security/internal/core/domain"
	"github.com/gigmarket/account-security/internal/core/ports"
)

// SignInAttempt is one sign-in request, from any provider.
type SignInAttempt struct {
	Email    string
	Provider domain.Provider
	Password string               // credentials only
	Profile  *domain.OAuthProfile // OAuth only
}

// StoreAction tells the persistence wrapper what to do with an allowed outcome.
type StoreAction int

const (
	ActionNone StoreAction = iota
	ActionCreate
	ActionUpdateProfile
)

// Outcome is the tagged result of Decide: either Allow (Identity set, Deny nil)
// or Deny (Deny set, Identity nil).
type Outcome struct {
	Identity *domain.Identity
	Action   StoreAction
	Deny     *domain.DenyError
}

// Allowed reports whether the outcome is Allow.
func (o Outcome) Allowed() bool { return o.Deny == nil }

// ReconcileRules tunes Decide.
type ReconcileRules struct {
	// AllowOAuthProviderSwitch lets an email created through one OAuth provider
	// sign in through the other. When false such attempts are a provider conflict.
	AllowOAuthProviderSwitch bool
}

func allow(identity *domain.Identity, action StoreAction) Outcome {
	return Outcome{Identity: identity, Action: action}
}

func deny(reason error, msg string) Outcome {
	return Outcome{Deny: &domain.DenyError{Reason: reason, Message: msg}}
}

// Decide applies the one-provider-per-email rules. existing is the stored
// record for attempt.Email, or nil. It performs no I/O.
func Decide(attempt SignInAttempt, existing *domain.Identity, hasher ports.PasswordHasher, rules ReconcileRules) Outcome {
	if existing != nil && existing.Banned {
		return deny(domain.ErrAccountBanned, "this account has been suspended")
	}

	if attempt.Provider == domain.ProviderCredentials {
		return decideCredentials(attempt, existing, hasher)
	}
	return decideOAuth(attempt, existing, rules)
}

func decideCredentials(attempt SignInAttempt, existing *domain.Identity, hasher ports.PasswordHasher) Outcome {
	if existing == nil {
		return deny(domain.ErrUserNotFound, "no account found for this email")
	}
	if existing.Provider != domain.ProviderCredentials {
		return deny(domain.ErrProviderConflict, signInHint(existing.Provider))
	}
	if attempt.Password == "" || !hasher.Verify(existing.PasswordHash, attempt.Password) {
		return deny(domain.ErrInvalidCredentials, "")
	}
	return allow(existing, ActionNone)
}

func decideOAuth(attempt SignInAttempt, existing *domain.Identity, rules ReconcileRules) Outcome {
	profile := attempt.Profile
	if profile == nil {
		profile = &domain.OAuthProfile{Provider: attempt.Provider, Email: attempt.Email}
	}

	if existing == nil {
		return allow(&domain.Identity{
			Email:         attempt.Email,
			Name:          profile.Name,
			Image:         profile.Image,
			Provider:      attempt.Provider,
			Role:          domain.RoleFreelancer,
			EmailVerified: profile.EmailVerified,
		}, ActionCreate)
	}

	if existing.Provider == domain.ProviderCredentials {
		return deny(domain.ErrProviderConflict, "registered with password; use password login")
	}
	if existing.Provider != attempt.Provider && !rules.AllowOAuthProviderSwitch {
		return deny(domain.ErrProviderConflict, signInHint(existing.Provider))
	}

	// Empty provider fields never blank out what is stored.
	updated := *existing
	if profile.Name != "" {
		updated.Name = profile.Name
	}
	if profile.Image != "" {
		updated.Image = profile.Image
	}
	return allow(&updated, ActionUpdateProfile)
}

func signInHint(p domain.Provider) string {
	if p == domain.ProviderCredentials {
		return "registered with password; use password login"
	}
	return fmt.Sprintf("use %s sign-in", p.DisplayName())
}
