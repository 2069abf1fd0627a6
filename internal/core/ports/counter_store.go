package ports

import (
	"context"
	"time"
)

// CounterStore is the shared expiring key/value store behind the abuse gate.
type CounterStore interface {
	// TTL returns the remaining lifetime of key and whether it exists.
	TTL(ctx context.Context, key string) (time.Duration, bool, error)
	// Incr atomically increments key and re-bases its expiry to now+ttl.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Decr decrements key without touching its expiry. Missing keys are left alone.
	Decr(ctx context.Context, key string) error
	// SetFlag creates key with the given ttl.
	SetFlag(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// TokenStore holds one-time values such as reset tokens and verification codes.
type TokenStore interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Take returns and removes the value. ok is false when key is absent or expired.
	Take(ctx context.Context, key string) (value string, ok bool, err error)
}
