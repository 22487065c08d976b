// Package cache memoizes expensive lookups under content-derived keys with
// per-namespace expiry. A missing or failing store degrades every read to a
// miss and every write to false; callers never see cache errors.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/db"
)

// Namespace groups cache entries that share an expiry policy.
type Namespace string

// Known namespaces.
const (
	NamespaceSearch         Namespace = "search"
	NamespaceProduct        Namespace = "product"
	NamespaceChatContext    Namespace = "chat_context"
	NamespaceImageEmbedding Namespace = "image_embedding"
)

// ErrDisabled is returned by Ping when no store is configured.
var ErrDisabled = errors.New("cache disabled")

// DefaultPolicy returns the default TTL per namespace.
func DefaultPolicy() map[Namespace]time.Duration {
	return map[Namespace]time.Duration{
		NamespaceSearch:         300 * time.Second,
		NamespaceProduct:        3600 * time.Second,
		NamespaceChatContext:    1800 * time.Second,
		NamespaceImageEmbedding: 24 * time.Hour,
	}
}

// fallbackTTL applies to namespaces missing from the policy.
const fallbackTTL = 300 * time.Second

// store is the consumer interface for the backing key-value store (ISP).
type store interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Cache is safe for concurrent use. It holds no state besides its store handle.
type Cache struct {
	store    store
	prefix   string
	policy   map[Namespace]time.Duration
	requests *prometheus.CounterVec
	logger   *zap.Logger
}

// New creates a cache over s. A nil s yields a disabled cache.
// prefix is prepended to every derived key in the store.
// requests is a counter vec with labels "namespace" and "result"; it may be nil.
func New(
	s store,
	prefix string,
	policy map[Namespace]time.Duration,
	requests *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	merged := DefaultPolicy()
	for ns, ttl := range policy {
		if ttl > 0 {
			merged[ns] = ttl
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		store:    s,
		prefix:   prefix,
		policy:   merged,
		requests: requests,
		logger:   logger,
	}
}

// Enabled reports whether a backing store is configured.
func (c *Cache) Enabled() bool { return c != nil && c.store != nil }

// TTL returns the expiry policy of a namespace.
func (c *Cache) TTL(ns Namespace) time.Duration {
	if ttl, ok := c.policy[ns]; ok {
		return ttl
	}
	return fallbackTTL
}

// DeriveKey returns "{namespace}:{sha256 of the canonical JSON of payload}".
// Structurally equal payloads derive the same key regardless of field order.
func DeriveKey(ns Namespace, payload any) (string, error) {
	canon, err := canonicalJSON(payload)
	if err != nil {
		return "", fmt.Errorf("derive %s key: %w", ns, err)
	}
	return ContentKey(ns, canon), nil
}

// ProductKey is the product-detail key of one product ID.
func ProductKey(id string) string {
	key, _ := DeriveKey(NamespaceProduct, map[string]string{"product_id": id})
	return key
}

// ContentKey hashes raw bytes into a namespaced key.
func ContentKey(ns Namespace, data []byte) string {
	h := sha256.Sum256(data)
	return string(ns) + ":" + hex.EncodeToString(h[:])
}

// canonicalJSON round-trips payload through a generic value so that object
// keys come out sorted. Numbers keep their literal text.
func canonicalJSON(payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}

// Get returns the value stored under key. Any failure is a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	ns := namespaceOf(key)
	if !c.Enabled() {
		c.observe(ns, "miss")
		return nil, false
	}

	data, err := c.store.Get(ctx, c.prefix+key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			c.observe(ns, "miss")
		} else {
			c.observe(ns, "error")
			c.logger.Warn("Cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	c.observe(ns, "hit")
	return data, true
}

// Set stores value under key for ttl. A non-positive ttl uses the namespace policy.
// Nothing is written once ctx is done.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if !c.Enabled() || ctx.Err() != nil {
		return false
	}
	if ttl <= 0 {
		ttl = c.TTL(namespaceOf(key))
	}
	if err := c.store.SetWithTTL(ctx, c.prefix+key, value, ttl); err != nil {
		c.logger.Warn("Cache set failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Delete removes key. It reports false when the store is unavailable.
func (c *Cache) Delete(ctx context.Context, key string) bool {
	if !c.Enabled() {
		return false
	}
	if err := c.store.Del(ctx, c.prefix+key); err != nil {
		c.logger.Warn("Cache delete failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Clear removes every entry of a namespace and returns how many keys were deleted.
func (c *Cache) Clear(ctx context.Context, ns Namespace) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	keys, err := c.store.Scan(ctx, c.prefix+string(ns)+":*")
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", ns, err)
	}
	deleted := 0
	for _, k := range keys {
		if err := c.store.Del(ctx, k); err != nil {
			return deleted, fmt.Errorf("clear %s: %w", ns, err)
		}
		deleted++
	}
	return deleted, nil
}

// Ping checks the store. A disabled cache returns ErrDisabled.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	return c.store.Ping(ctx)
}

func (c *Cache) observe(ns Namespace, result string) {
	if c != nil && c.requests != nil {
		c.requests.WithLabelValues(string(ns), result).Inc()
	}
}

func namespaceOf(key string) Namespace {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return Namespace(key[:i])
	}
	return "unknown"
}
