package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/gigmarket/account-security/internal/api/metrics"
	"github.com/gigmarket/account-security/internal/core/domain"
	"github.com/gigmarket/account-security/internal/core/ports"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// SessionEnricher issues session tokens and keeps their claims consistent
// with the identity store, backfilling lazily when role is missing.
type SessionEnricher struct {
	identities ports.IdentityStore
	secret     []byte
	ttl        time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

func NewSessionEnricher(identities ports.IdentityStore, jwtSecret string, ttl time.Duration, log zerolog.Logger) *SessionEnricher {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionEnricher{
		identities: identities,
		secret:     []byte(jwtSecret),
		ttl:        ttl,
		log:        log,
		now:        time.Now,
	}
}

// Issue signs a token whose claims come straight from the reconciled identity.
func (e *SessionEnricher) Issue(identity *domain.Identity) (string, error) {
	return e.sign(domain.SessionClaims{
		UserID:   identity.ID,
		Email:    identity.Email,
		Role:     identity.Role,
		Provider: identity.Provider,
	})
}

// sign keeps an existing expiry so a backfilled token never outlives the original.
func (e *SessionEnricher) sign(claims domain.SessionClaims) (string, error) {
	now := e.now()
	claims.Subject = claims.UserID
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(e.ttl))
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(e.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Parse verifies the token signature and expiry and returns its claims.
func (e *SessionEnricher) Parse(token string) (*domain.SessionClaims, error) {
	claims := &domain.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return e.secret, nil
	}, jwt.WithTimeFunc(e.now))
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.Email == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// Resolve turns a token into a session view. Tokens that already carry a
// role never touch the store. Tokens without one are backfilled by email and
// re-signed; if that lookup fails the view falls back to the freelancer role
// and no refreshed token is returned.
func (e *SessionEnricher) Resolve(ctx context.Context, token string) (*ports.SessionResult, error) {
	claims, err := e.Parse(token)
	if err != nil {
		return nil, err
	}

	if claims.Role != "" {
		return &ports.SessionResult{View: viewOf(claims)}, nil
	}

	identity, err := e.identities.FindByEmail(ctx, claims.Email)
	if err != nil {
		metrics.SessionBackfillTotal.WithLabelValues("failed").Inc()
		e.log.Warn().Err(err).Msg("session backfill lookup failed, defaulting role")
		view := viewOf(claims)
		view.Role = domain.RoleFreelancer
		return &ports.SessionResult{View: view}, nil
	}

	claims.UserID = identity.ID
	claims.Role = identity.Role
	claims.Provider = identity.Provider
	refreshed, err := e.sign(*claims)
	if err != nil {
		return nil, err
	}
	metrics.SessionBackfillTotal.WithLabelValues("ok").Inc()
	return &ports.SessionResult{View: viewOf(claims), RefreshedToken: refreshed}, nil
}

func viewOf(c *domain.SessionClaims) domain.SessionView {
	return domain.SessionView{
		UserID:   c.UserID,
		Email:    c.Email,
		Role:     c.Role,
		Provider: c.Provider,
	}
}
