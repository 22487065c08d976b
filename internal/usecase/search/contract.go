package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/smartshopper/internal/domain/product"
	"github.com/kailas-cloud/smartshopper/internal/domain/search/query"
)

// Repository is the index oracle.
type Repository interface {
	Search(ctx context.Context, q query.Structured, offset, limit int) ([]product.Product, int, error)
	Get(ctx context.Context, id string) (product.Product, error)
}

// Cache memoizes result sets and product details.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
}
