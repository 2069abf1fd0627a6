package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gigmarket/account-security/internal/api/metrics"
	"github.com/gigmarket/account-security/internal/core/ports"
)

// Dispatcher sends through the primary channel and, on failure, tries the
// fallback channel exactly once. Both attempts run synchronously.
type Dispatcher struct {
	primary  ports.EmailSender
	fallback ports.EmailSender
	log      zerolog.Logger
}

// NewDispatcher returns a Dispatcher. fallback may be nil.
func NewDispatcher(primary, fallback ports.EmailSender, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{primary: primary, fallback: fallback, log: log}
}

func (d *Dispatcher) Dispatch(ctx context.Context, msg ports.EmailMessage) (string, error) {
	primaryErr := d.send(ctx, d.primary, msg)
	if primaryErr == nil {
		return d.primary.Name(), nil
	}
	if d.fallback == nil {
		return "", fmt.Errorf("dispatch email: %w", primaryErr)
	}

	d.log.Warn().Err(primaryErr).
		Str("primary", d.primary.Name()).
		Str("fallback", d.fallback.Name()).
		Msg("primary email channel failed, trying fallback")

	if err := d.send(ctx, d.fallback, msg); err != nil {
		return "", fmt.Errorf("dispatch email: %w", errors.Join(primaryErr, err))
	}
	return d.fallback.Name(), nil
}

func (d *Dispatcher) send(ctx context.Context, s ports.EmailSender, msg ports.EmailMessage) error {
	if err := s.Send(ctx, msg); err != nil {
		metrics.EmailDispatchTotal.WithLabelValues(s.Name(), "failed").Inc()
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	metrics.EmailDispatchTotal.WithLabelValues(s.Name(), "sent").Inc()
	return nil
}
