package chat

import (
	"context"
	"time"

	"github.com/kailas-cloud/smartshopper/internal/domain"
	"github.com/kailas-cloud/smartshopper/internal/domain/search/request"
	"github.com/kailas-cloud/smartshopper/internal/domain/search/result"
	"github.com/kailas-cloud/smartshopper/internal/usecase/generation"
)

// Searcher retrieves candidate products.
type Searcher interface {
	Search(ctx context.Context, d request.Descriptor) (result.Set, error)
}

// Generator produces the conversational answer.
type Generator interface {
	Generate(ctx context.Context, prompt domain.Prompt) (generation.Answer, error)
}

// SessionStore keeps per-session context between turns.
type SessionStore interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
}
