package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigmarket/account-security/internal/api/metrics"
	"github.com/gigmarket/account-security/internal/core/domain"
	"github.com/gigmarket/account-security/internal/core/ports"
)

// AbuseGate decides whether a sensitive action may proceed for a subject,
// using a sliding-window attempt counter and an escalating cooldown key.
// All coordination happens in the CounterStore; there is no in-process state.
type AbuseGate struct {
	store ports.CounterStore
	log   zerolog.Logger
}

func NewAbuseGate(store ports.CounterStore, log zerolog.Logger) *AbuseGate {
	return &AbuseGate{store: store, log: log}
}

// GuardAction records one attempt for subject under policy.
//
// A subject in cooldown is denied with the remaining cooldown. Otherwise the
// counter is incremented with its expiry re-based to now+Window; reaching
// MaxAttempts starts the cooldown while still allowing this attempt.
func (g *AbuseGate) GuardAction(ctx context.Context, subject string, policy domain.CooldownPolicy) (domain.Decision, error) {
	remaining, active, err := g.store.TTL(ctx, policy.CooldownKey(subject))
	if err != nil {
		return domain.Decision{}, fmt.Errorf("guard %s: cooldown lookup: %w", policy.Action, err)
	}
	if active {
		metrics.AbuseGateDecisionsTotal.WithLabelValues(policy.Action, "denied").Inc()
		return domain.Decision{Allowed: false, RetryAfterSeconds: ceilSeconds(remaining)}, nil
	}

	count, err := g.store.Incr(ctx, policy.CountKey(subject), policy.Window)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("guard %s: increment: %w", policy.Action, err)
	}

	if count >= int64(policy.MaxAttempts) {
		if err := g.store.SetFlag(ctx, policy.CooldownKey(subject), policy.Cooldown); err != nil {
			return domain.Decision{}, fmt.Errorf("guard %s: start cooldown: %w", policy.Action, err)
		}
		metrics.AbuseGateDecisionsTotal.WithLabelValues(policy.Action, "escalated").Inc()
		g.log.Info().
			Str("action", policy.Action).
			Int64("attempt", count).
			Dur("cooldown", policy.Cooldown).
			Msg("cooldown activated")
		return domain.Decision{
			Allowed:               true,
			CooldownJustActivated: true,
			RetryAfterSeconds:     ceilSeconds(policy.Cooldown),
			Attempt:               count,
		}, nil
	}

	metrics.AbuseGateDecisionsTotal.WithLabelValues(policy.Action, "allowed").Inc()
	return domain.Decision{Allowed: true, Attempt: count}, nil
}

// Refund gives back the attempt recorded by an allowed decision. If that
// decision started the cooldown, the cooldown is lifted too.
func (g *AbuseGate) Refund(ctx context.Context, subject string, policy domain.CooldownPolicy, d domain.Decision) error {
	if !d.Allowed {
		return nil
	}
	if err := g.store.Decr(ctx, policy.CountKey(subject)); err != nil {
		return fmt.Errorf("refund %s: decrement: %w", policy.Action, err)
	}
	if d.CooldownJustActivated {
		if err := g.store.Delete(ctx, policy.CooldownKey(subject)); err != nil {
			return fmt.Errorf("refund %s: clear cooldown: %w", policy.Action, err)
		}
	}
	return nil
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
