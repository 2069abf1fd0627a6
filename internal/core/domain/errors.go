package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrProviderConflict   = errors.New("provider conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountBanned      = errors.New("account banned")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrRateLimited        = errors.New("rate limited")
	ErrUnknownProvider    = errors.New("unknown provider")
	ErrOAuthFailed        = errors.New("oauth sign-in failed")
	ErrForbidden          = errors.New("access forbidden")
)

// ValidationError carries the user-facing message for a rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError returns a ValidationError matching ErrValidation.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// DenyError is the reason a sign-in attempt was refused. Reason is one of
// ErrUserNotFound, ErrProviderConflict, ErrInvalidCredentials or
// ErrAccountBanned.
type DenyError struct {
	Reason  error
	Message string
}

func (e *DenyError) Error() string {
	if e.Message == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *DenyError) Unwrap() error { return e.Reason }

// RateLimitedError is returned while a cooldown is active for a subject.
type RateLimitedError struct {
	Action            string
	RetryAfterSeconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s rate limited, retry after %ds", e.Action, e.RetryAfterSeconds)
}

func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }
