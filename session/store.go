package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable wraps every Redis transport or connection failure.
// Callers classify with errors.Is; this layer never retries.
var ErrStoreUnavailable = errors.New("session store unavailable")

const scanBatchSize = 1000

// Store is the thin Redis access layer for session records. It owns key
// namespacing: an optional namespace prefix is applied to every key and
// stripped from scan results, so callers only ever see logical tokens.
type Store struct {
	redis     redis.UniversalClient
	namespace string
}

// NewStore creates a session [Store] backed by the given Redis client.
// namespace, when non-empty, is transparently prepended to every key.
func NewStore(redis redis.UniversalClient, namespace string) *Store {
	return &Store{
		redis:     redis,
		namespace: namespace,
	}
}

// Namespace returns the configured store-level key prefix.
func (s *Store) Namespace() string {
	return s.namespace
}

func (s *Store) key(token string) string {
	return s.namespace + token
}

// Write stores data under the token with a millisecond TTL (SET PX).
func (s *Store) Write(ctx context.Context, token string, data []byte, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Read returns the raw blob stored under the token. A miss is redis.Nil,
// passed through unchanged so callers can tell it from transport failure.
func (s *Store) Read(ctx context.Context, token string) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return data, nil
}

// Refresh resets the entry's TTL (second-granularity EXPIRE) without touching
// content. Refreshing an absent key is not an error.
func (s *Store) Refresh(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.redis.Expire(ctx, s.key(token), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes the entry. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ScanTokens returns the logical tokens whose keys match pattern (the
// namespace is applied to the pattern and stripped from results). SCAN is
// cursor-based; entries created or removed mid-scan may or may not appear.
func (s *Store) ScanTokens(ctx context.Context, pattern string) ([]string, error) {
	var (
		cursor uint64
		tokens []string
	)

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, s.namespace+pattern, scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		for _, key := range keys {
			tokens = append(tokens, strings.TrimPrefix(key, s.namespace))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return tokens, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}
