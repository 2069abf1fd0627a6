package domain

import (
	"strings"
	"time"
)

// Provider identifies the login mechanism that owns an identity.
type Provider string

const (
	ProviderCredentials Provider = "credentials"
	ProviderGoogle      Provider = "google"
	ProviderGitHub      Provider = "github"
)

// IsOAuth reports whether p is one of the OAuth providers.
func (p Provider) IsOAuth() bool {
	return p == ProviderGoogle || p == ProviderGitHub
}

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	return p == ProviderCredentials || p.IsOAuth()
}

// DisplayName is the human-facing provider label used in sign-in messages.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderGoogle:
		return "Google"
	case ProviderGitHub:
		return "GitHub"
	default:
		return "password"
	}
}

const (
	RoleFreelancer = "freelancer"
	RoleClient     = "client"
	RoleAdmin      = "admin"
)

// Identity is the durable account record. Exactly one exists per email.
type Identity struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Image         string    `json:"image,omitempty"`
	PasswordHash  string    `json:"-"`
	Provider      Provider  `json:"provider"`
	Role          string    `json:"role"`
	Banned        bool      `json:"banned"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OAuthProfile holds the identity facts returned by an OAuth provider.
type OAuthProfile struct {
	Provider      Provider
	Subject       string
	Email         string
	Name          string
	Image         string
	EmailVerified bool
}

// NormalizeEmail is the canonical form used as the identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
