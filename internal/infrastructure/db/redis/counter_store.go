package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// decrIfExists decrements an existing counter, keeping its TTL, and deletes
// it once it reaches zero. Missing keys are not created.
var decrIfExists = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  local n = redis.call('DECR', KEYS[1])
  if n <= 0 then
    redis.call('DEL', KEYS[1])
  end
  return n
end
return 0
`)

// CounterStore implements ports.CounterStore on Redis.
// Keys are namespaced by the caller (see domain.CooldownPolicy).
type CounterStore struct {
	client *redis.Client
}

// NewCounterStore wraps an existing client; it does not own the connection.
func NewCounterStore(client *redis.Client) *CounterStore {
	return &CounterStore{client: client}
}

// TTL reports the remaining lifetime of key. A key without expiry reports
// exists with a zero duration.
func (s *CounterStore) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	d, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, false, fmt.Errorf("redis pttl %s: %w", key, err)
	}
	switch {
	case d == -2:
		return 0, false, nil
	case d < 0:
		return 0, true, nil
	default:
		return d, true, nil
	}
}

// Incr runs INCR and PEXPIRE in one MULTI/EXEC so the increment and the
// sliding expiry are applied atomically.
func (s *CounterStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.PExpire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return incr.Val(), nil
}

func (s *CounterStore) Decr(ctx context.Context, key string) error {
	if err := decrIfExists.Run(ctx, s.client, []string{key}).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis decr %s: %w", key, err)
	}
	return nil
}

func (s *CounterStore) SetFlag(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *CounterStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
