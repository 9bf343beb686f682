package auth

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// NonceStore provides replay defense. TestAndSet must be atomic: under
// concurrent calls with the same key, exactly one caller observes true. A
// has-then-set sequence is not an acceptable implementation — it opens a
// replay race.
type NonceStore interface {
	// TestAndSet records key for ttl and reports whether it was newly
	// set. False means the nonce was already seen.
	TestAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// MemoryNonceStore is a process-local NonceStore on a TTL cache. The
// check-and-record is a single GetOrSet under the cache lock.
type MemoryNonceStore struct {
	cache *ttlcache.Cache[string, struct{}]
}

// NewMemoryNonceStore creates a store whose entries live for ttl.
func NewMemoryNonceStore(ttl time.Duration) *MemoryNonceStore {
	if ttl <= 0 {
		ttl = DefaultNonceTTL
	}
	cache := ttlcache.New[string, struct{}](
		ttlcache.WithTTL[string, struct{}](ttl),
	)
	go cache.Start()
	return &MemoryNonceStore{cache: cache}
}

// TestAndSet implements NonceStore.
func (s *MemoryNonceStore) TestAndSet(_ context.Context, key string, ttl time.Duration) (bool, error) {
	opts := []ttlcache.Option[string, struct{}]{}
	if ttl > 0 {
		opts = append(opts, ttlcache.WithTTL[string, struct{}](ttl))
	}
	_, existed := s.cache.GetOrSet(key, struct{}{}, opts...)
	return !existed, nil
}

// Stop terminates the cache's eviction goroutine.
func (s *MemoryNonceStore) Stop() {
	s.cache.Stop()
}
