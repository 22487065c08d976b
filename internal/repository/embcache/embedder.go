// Package embcache memoizes image and text embeddings in the cache layer.
package embcache

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/domain"
	"github.com/kailas-cloud/smartshopper/internal/repository/cache"
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
	TTL(ns cache.Namespace) time.Duration
}

// CachedEmbedder caches embeddings under a key derived from the embedder
// identity and the input content. Vectors of different models never share a key.
type CachedEmbedder struct {
	inner    domain.ImageEmbedder
	identity string
	store    store
	logger   *zap.Logger
}

var _ domain.ImageEmbedder = (*CachedEmbedder)(nil)

// New creates a caching decorator. identity names the provider, model and
// output dimensions of inner, e.g. "openai/clip/512".
func New(inner domain.ImageEmbedder, identity string, s store, logger *zap.Logger) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, identity: identity, store: s, logger: logger}
}

// Identity builds the identity string of an embedder configuration.
func Identity(provider, model string, dimensions int) string {
	return fmt.Sprintf("%s/%s/%d", provider, model, dimensions)
}

func (c *CachedEmbedder) key(kind string, data []byte) string {
	buf := make([]byte, 0, len(c.identity)+len(kind)+len(data)+2)
	buf = append(buf, c.identity...)
	buf = append(buf, 0)
	buf = append(buf, kind...)
	buf = append(buf, ':')
	buf = append(buf, data...)
	return cache.ContentKey(cache.NamespaceImageEmbedding, buf)
}

// EmbedImage returns a cached embedding for identical image bytes or calls the inner embedder.
func (c *CachedEmbedder) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	key := c.key("image", image)
	if vec, ok := c.getFromCache(ctx, key); ok {
		return vec, nil
	}

	vec, err := c.inner.EmbedImage(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("embed image: %w", err)
	}
	c.putToCache(ctx, key, vec)
	return vec, nil
}

// EmbedText returns a cached embedding for identical text or calls the inner embedder.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := c.key("text", []byte(text))
	if vec, ok := c.getFromCache(ctx, key); ok {
		return vec, nil
	}

	vec, err := c.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	c.putToCache(ctx, key, vec)
	return vec, nil
}

func (c *CachedEmbedder) getFromCache(ctx context.Context, key string) ([]float32, bool) {
	data, ok := c.store.Get(ctx, key)
	if !ok || len(data) == 0 {
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) putToCache(ctx context.Context, key string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	ttl := c.store.TTL(cache.NamespaceImageEmbedding)
	if !c.store.Set(ctx, key, vectorToCacheBytes(vec), ttl) {
		c.logger.Debug("Embedding not cached", zap.String("key", key))
	}
}

func vectorToCacheBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
