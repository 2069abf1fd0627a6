// Package metrics defines and registers all custom Prometheus metrics for the
// gigmarket account-security service. It is the single source of truth for
// metric names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto); the /metrics route exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gigmarket"

// ── Abuse gate ────────────────────────────────────────────────────────────────

// AbuseGateDecisionsTotal counts guarded attempts.
// Labels:
//   - action: the guarded action (e.g. "password-reset")
//   - result: "allowed", "escalated" (allowed and cooldown started) or "denied"
var AbuseGateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "abuse_gate_decisions_total",
		Help:      "Total number of abuse gate decisions, by action and result.",
	},
	[]string{"action", "result"},
)

// ── Identity ──────────────────────────────────────────────────────────────────

// SignInTotal counts reconciled sign-in attempts.
// Labels:
//   - provider: "credentials", "google" or "github"
//   - result: "allowed" or "denied"
var SignInTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signin_total",
		Help:      "Total number of sign-in attempts, by provider and result.",
	},
	[]string{"provider", "result"},
)

// SessionBackfillTotal counts session tokens that needed a store lookup.
// Label:
//   - result: "ok" or "failed" (role defaulted)
var SessionBackfillTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_backfill_total",
		Help:      "Total number of session claim backfills, by result.",
	},
	[]string{"result"},
)

// ── Email ─────────────────────────────────────────────────────────────────────

// EmailDispatchTotal counts delivery attempts per channel.
// Labels:
//   - channel: sender name (e.g. "api", "smtp")
//   - result: "sent" or "failed"
var EmailDispatchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_dispatch_total",
		Help:      "Total number of email delivery attempts, by channel and result.",
	},
	[]string{"channel", "result"},
)
