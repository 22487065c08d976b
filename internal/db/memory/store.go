// Package memory is an in-process cache store for single-instance deployments
// and local development.
package memory

import (
	"context"
	"path"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kailas-cloud/smartshopper/internal/db"
)

// Compile-time check: Store implements db.CacheStore.
var _ db.CacheStore = (*Store)(nil)

// Store implements db.CacheStore over go-cache.
type Store struct {
	cache *gocache.Cache
}

// NewStore creates a store that purges expired items every cleanupInterval.
// Entries without an explicit TTL never expire.
func NewStore(cleanupInterval time.Duration) *Store {
	return &Store{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close drops every entry.
func (s *Store) Close() { s.cache.Flush() }

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	x, found := s.cache.Get(key)
	if !found {
		return nil, db.ErrKeyNotFound
	}
	data, ok := x.([]byte)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// SetWithTTL stores a copy of value. A non-positive ttl stores without expiry.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	data := make([]byte, len(value))
	copy(data, value)
	s.cache.Set(key, data, ttl)
	return nil
}

// Del deletes a key.
func (s *Store) Del(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Scan returns the live keys matching a glob pattern. Keys are treated as
// flat strings, so '*' also spans ':' separators just like in Redis.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	var keys []string
	for key := range s.cache.Items() {
		if globMatch(pattern, key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// globMatch applies path.Match semantics; path.Match stops '*' at '/',
// which never appears in derived cache keys.
func globMatch(pattern, key string) bool {
	ok, err := path.Match(pattern, key)
	return err == nil && ok
}
