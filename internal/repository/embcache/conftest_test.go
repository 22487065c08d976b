package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/repository/cache"
)

type mockEmbedder struct {
	vec        []float32
	err        error
	imageCalls int
	textCalls  int
}

func (m *mockEmbedder) EmbedImage(_ context.Context, _ []byte) ([]float32, error) {
	m.imageCalls++
	return m.vec, m.err
}

func (m *mockEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	m.textCalls++
	return m.vec, m.err
}

// mockStore implements the consumer interface for tests.
type mockStore struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	refuse  bool
	setKeys []string
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mockStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) bool {
	if m.refuse {
		return false
	}
	m.data[key] = value
	m.ttls[key] = ttl
	m.setKeys = append(m.setKeys, key)
	return true
}

func (m *mockStore) TTL(_ cache.Namespace) time.Duration { return 24 * time.Hour }

func newTestCachedEmbedder(t *testing.T, inner *mockEmbedder) (*CachedEmbedder, *mockStore) {
	t.Helper()
	ms := &mockStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
	return New(inner, Identity("openai", "clip", 3), ms, zap.NewNop()), ms
}
