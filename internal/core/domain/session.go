package domain

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the identity subset embedded in the signed session token.
// Role may be empty on tokens issued before a record was fully populated;
// readers backfill it from the identity store.
type SessionClaims struct {
	UserID   string   `json:"uid,omitempty"`
	Email    string   `json:"email"`
	Role     string   `json:"role,omitempty"`
	Provider Provider `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

// SessionView is what handlers see about the current caller.
type SessionView struct {
	UserID   string   `json:"id"`
	Email    string   `json:"email"`
	Role     string   `json:"role"`
	Provider Provider `json:"provider,omitempty"`
}
