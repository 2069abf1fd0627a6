package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gigmarket/account-security/internal/core/domain"
	"github.com/gigmarket/account-security/internal/core/ports"
)

const (
	resetTokenTTL       = time.Hour
	verificationCodeTTL = 15 * time.Minute

	resetTokenPrefix       = "password-reset-token:"
	verificationCodePrefix = "verification-code:"

	msgEmailMissing = "Email Id not found"
)

// Policies holds the abuse-gate policy for each guarded action.
type Policies struct {
	PasswordReset      domain.CooldownPolicy
	VerificationResend domain.CooldownPolicy
}

// DefaultPolicies allows three emails per ten-minute sliding window, then
// blocks for ten minutes.
func DefaultPolicies() Policies {
	return Policies{
		PasswordReset: domain.CooldownPolicy{
			Action:      domain.ActionPasswordReset,
			Window:      10 * time.Minute,
			MaxAttempts: 3,
			Cooldown:    10 * time.Minute,
		},
		VerificationResend: domain.CooldownPolicy{
			Action:      domain.ActionVerificationResend,
			Window:      10 * time.Minute,
			MaxAttempts: 3,
			Cooldown:    10 * time.Minute,
		},
	}
}

// AccountSecurityDeps groups the collaborators of AccountSecurity.
type AccountSecurityDeps struct {
	Reconciler *IdentityReconciler
	Sessions   *SessionEnricher
	Gate       *AbuseGate
	Identities ports.IdentityStore
	Tokens     ports.TokenStore
	Mailer     ports.EmailDispatcher
	Providers  map[domain.Provider]ports.OAuthProvider
	Policies   Policies
	BaseURL    string
}

// AccountSecurity composes reconciliation, sessions and the abuse gate.
type AccountSecurity struct {
	deps AccountSecurityDeps
	log  zerolog.Logger
}

func NewAccountSecurity(deps AccountSecurityDeps, log zerolog.Logger) *AccountSecurity {
	if deps.Providers == nil {
		deps.Providers = map[domain.Provider]ports.OAuthProvider{}
	}
	return &AccountSecurity{deps: deps, log: log}
}

// --- Sign-in ---

func (s *AccountSecurity) Register(ctx context.Context, in ports.RegisterInput) (*ports.SignInResult, error) {
	identity, err := s.deps.Reconciler.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(identity)
}

func (s *AccountSecurity) SignInCredentials(ctx context.Context, email, password string) (*ports.SignInResult, error) {
	identity, err := s.deps.Reconciler.Reconcile(ctx, SignInAttempt{
		Email:    email,
		Provider: domain.ProviderCredentials,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	return s.issue(identity)
}

func (s *AccountSecurity) OAuthLoginURL(provider domain.Provider, state string) (string, error) {
	p, ok := s.deps.Providers[provider]
	if !ok {
		return "", domain.ErrUnknownProvider
	}
	return p.AuthCodeURL(state), nil
}

func (s *AccountSecurity) SignInOAuth(ctx context.Context, provider domain.Provider, code string) (*ports.SignInResult, error) {
	p, ok := s.deps.Providers[provider]
	if !ok {
		return nil, domain.ErrUnknownProvider
	}
	profile, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrOAuthFailed, provider, err)
	}
	identity, err := s.deps.Reconciler.Reconcile(ctx, SignInAttempt{
		Email:    profile.Email,
		Provider: provider,
		Profile:  profile,
	})
	if err != nil {
		return nil, err
	}
	return s.issue(identity)
}

func (s *AccountSecurity) Session(ctx context.Context, token string) (*ports.SessionResult, error) {
	return s.deps.Sessions.Resolve(ctx, token)
}

func (s *AccountSecurity) LookupIdentity(ctx context.Context, email string) (*domain.Identity, error) {
	return s.deps.Identities.FindByEmail(ctx, domain.NormalizeEmail(email))
}

func (s *AccountSecurity) issue(identity *domain.Identity) (*ports.SignInResult, error) {
	token, err := s.deps.Sessions.Issue(identity)
	if err != nil {
		return nil, err
	}
	return &ports.SignInResult{Token: token, Identity: identity}, nil
}

// --- Guarded email actions ---

// RequestPasswordReset sends a reset link, subject to the password-reset policy.
func (s *AccountSecurity) RequestPasswordReset(ctx context.Context, email string) (*ports.ActionResult, error) {
	return s.guardAndSend(ctx, email, s.deps.Policies.PasswordReset, func(identity *domain.Identity) (ports.EmailMessage, error) {
		if identity.Provider != domain.ProviderCredentials {
			return ports.EmailMessage{}, &domain.DenyError{Reason: domain.ErrProviderConflict, Message: signInHint(identity.Provider)}
		}
		token := uuid.NewString()
		if err := s.deps.Tokens.Put(ctx, resetTokenPrefix+token, identity.Email, resetTokenTTL); err != nil {
			return ports.EmailMessage{}, fmt.Errorf("store reset token: %w", err)
		}
		return passwordResetEmail(identity, s.deps.BaseURL, token), nil
	}, "Password reset link sent to your email")
}

// ResendVerification sends a fresh verification code, subject to the
// verification-resend policy.
func (s *AccountSecurity) ResendVerification(ctx context.Context, email string) (*ports.ActionResult, error) {
	return s.guardAndSend(ctx, email, s.deps.Policies.VerificationResend, func(identity *domain.Identity) (ports.EmailMessage, error) {
		if identity.EmailVerified {
			return ports.EmailMessage{}, domain.ErrAlreadyVerified
		}
		code, err := verificationCode()
		if err != nil {
			return ports.EmailMessage{}, err
		}
		if err := s.deps.Tokens.Put(ctx, verificationCodePrefix+identity.Email, code, verificationCodeTTL); err != nil {
			return ports.EmailMessage{}, fmt.Errorf("store verification code: %w", err)
		}
		return verificationEmail(identity, code), nil
	}, "Verification code sent to your email")
}

// guardAndSend runs gate → identity lookup → compose → dispatch. Attempts
// that end without an email leaving (missing identity excepted) are refunded.
func (s *AccountSecurity) guardAndSend(
	ctx context.Context,
	rawEmail string,
	policy domain.CooldownPolicy,
	compose func(*domain.Identity) (ports.EmailMessage, error),
	successMsg string,
) (*ports.ActionResult, error) {
	email := domain.NormalizeEmail(rawEmail)
	if email == "" {
		return nil, domain.NewValidationError(msgEmailMissing)
	}

	decision, err := s.deps.Gate.GuardAction(ctx, email, policy)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &domain.RateLimitedError{Action: policy.Action, RetryAfterSeconds: decision.RetryAfterSeconds}
	}

	identity, err := s.deps.Identities.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	msg, err := compose(identity)
	if err != nil {
		s.refund(ctx, email, policy, decision)
		return nil, err
	}

	channel, err := s.deps.Mailer.Dispatch(ctx, msg)
	if err != nil {
		s.log.Error().Err(err).Str("action", policy.Action).Msg("all email channels failed")
		s.refund(ctx, email, policy, decision)
		return &ports.ActionResult{Message: successMsg}, nil
	}
	s.log.Info().Str("action", policy.Action).Str("channel", channel).Msg("guarded email sent")

	res := &ports.ActionResult{Message: successMsg}
	if decision.CooldownJustActivated {
		res.CooldownActive = true
		res.RemainingTime = decision.RetryAfterSeconds
	}
	return res, nil
}

func (s *AccountSecurity) refund(ctx context.Context, subject string, policy domain.CooldownPolicy, d domain.Decision) {
	if err := s.deps.Gate.Refund(ctx, subject, policy, d); err != nil {
		s.log.Warn().Err(err).Str("action", policy.Action).Msg("attempt refund failed")
	}
}

// --- Confirmation ---

func (s *AccountSecurity) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return domain.NewValidationError("token is required")
	}
	email, ok, err := s.deps.Tokens.Take(ctx, resetTokenPrefix+token)
	if err != nil {
		return fmt.Errorf("confirm reset: %w", err)
	}
	if !ok {
		return domain.ErrInvalidToken
	}
	return s.deps.Reconciler.SetPassword(ctx, email, newPassword)
}

func (s *AccountSecurity) ConfirmVerification(ctx context.Context, rawEmail, code string) error {
	email := domain.NormalizeEmail(rawEmail)
	if email == "" || code == "" {
		return domain.NewValidationError("email and code are required")
	}
	stored, ok, err := s.deps.Tokens.Take(ctx, verificationCodePrefix+email)
	if err != nil {
		return fmt.Errorf("confirm verification: %w", err)
	}
	if !ok || stored != code {
		return domain.ErrInvalidToken
	}
	if err := s.deps.Identities.MarkEmailVerified(ctx, email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("confirm verification: %w", err)
	}
	return nil
}

func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
