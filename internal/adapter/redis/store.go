package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "idem:order:"
	reservedValue = "in-flight"

	// inFlightTTL bounds how long a reservation survives a crash before
	// the key can be claimed again. Complete extends it to the full ttl.
	inFlightTTL = time.Minute
)

// Client is the subset of redis.Cmdable used by Store.
type Client interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store keeps create-order idempotency keys in Redis.
type Store struct {
	client Client
	ttl    time.Duration
}

func NewStore(client Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(key string) string {
	return keyPrefix + key
}

// Reserve claims key with SETNX. When the key exists it returns the stored
// order reference, or an empty reference while the first request runs.
func (s *Store) Reserve(ctx context.Context, key string) (string, bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(key), reservedValue, s.reservationTTL()).Result()
	if err != nil {
		return "", false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if ok {
		return "", true, nil
	}

	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// expired between SETNX and GET
			return s.Reserve(ctx, key)
		}
		return "", false, fmt.Errorf("read idempotency key: %w", err)
	}
	if value == reservedValue {
		return "", false, nil
	}
	return value, false, nil
}

func (s *Store) reservationTTL() time.Duration {
	if s.ttl > 0 && s.ttl < inFlightTTL {
		return s.ttl
	}
	return inFlightTTL
}

func (s *Store) Complete(ctx context.Context, key, reference string) error {
	if err := s.client.Set(ctx, s.key(key), reference, s.ttl).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

func (s *Store) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

// NopStore disables deduplication: every request owns its key.
type NopStore struct{}

func (NopStore) Reserve(context.Context, string) (string, bool, error) { return "", true, nil }
func (NopStore) Complete(context.Context, string, string) error        { return nil }
func (NopStore) Release(context.Context, string) error                 { return nil }
