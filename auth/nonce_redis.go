package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisNonceStore is a NonceStore shared across verifier instances. SET NX
// is the atomic test-and-set.
type RedisNonceStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisNonceStore wraps an existing Redis client. keyPrefix namespaces
// nonce keys; it defaults to "anp:nonce:".
func NewRedisNonceStore(client redis.UniversalClient, keyPrefix string) *RedisNonceStore {
	if keyPrefix == "" {
		keyPrefix = "anp:nonce:"
	}
	return &RedisNonceStore{client: client, keyPrefix: keyPrefix}
}

// TestAndSet implements NonceStore.
func (s *RedisNonceStore) TestAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = DefaultNonceTTL
	}
	set, err := s.client.SetNX(ctx, s.keyPrefix+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis nonce store: %w", err)
	}
	return set, nil
}
