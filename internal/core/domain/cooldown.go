package domain

import (
	"fmt"
	"time"
)

const (
	ActionPasswordReset      = "password-reset"
	ActionVerificationResend = "verification-resend"
)

// CooldownPolicy configures the abuse gate for one sensitive action.
type CooldownPolicy struct {
	Action      string
	Window      time.Duration
	MaxAttempts int
	Cooldown    time.Duration
}

// Validate rejects policies that could never trigger or never expire.
func (p CooldownPolicy) Validate() error {
	if p.Action == "" {
		return fmt.Errorf("cooldown policy: action is required")
	}
	if p.Window < time.Second || p.Cooldown < time.Second {
		return fmt.Errorf("cooldown policy %s: window and cooldown must be at least 1s", p.Action)
	}
	if p.MaxAttempts <= 0 {
		return fmt.Errorf("cooldown policy %s: max attempts must be positive", p.Action)
	}
	return nil
}

// CountKey is the sliding-window attempt counter key.
// Key format: <action>-count:<subject>
func (p CooldownPolicy) CountKey(subject string) string {
	return fmt.Sprintf("%s-count:%s", p.Action, subject)
}

// CooldownKey marks an active cooldown by existence.
// Key format: <action>-cooldown:<subject>
func (p CooldownPolicy) CooldownKey(subject string) string {
	return fmt.Sprintf("%s-cooldown:%s", p.Action, subject)
}

// Decision is the outcome of one guarded attempt.
type Decision struct {
	Allowed               bool
	RetryAfterSeconds     int
	CooldownJustActivated bool
	// Attempt is the counter value after this attempt; zero when denied.
	Attempt int64
}
