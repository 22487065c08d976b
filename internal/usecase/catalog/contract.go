package catalog

import (
	"context"

	"github.com/kailas-cloud/smartshopper/internal/domain/product"
	"github.com/kailas-cloud/smartshopper/internal/repository/cache"
)

// Repository writes products to the index.
type Repository interface {
	EnsureIndex(ctx context.Context) (bool, error)
	Upsert(ctx context.Context, p *product.Product) (bool, error)
	UpsertMany(ctx context.Context, products []product.Product) error
	Delete(ctx context.Context, id string) error
}

// Invalidator drops cached reads made stale by a write.
type Invalidator interface {
	Clear(ctx context.Context, ns cache.Namespace) (int, error)
	Delete(ctx context.Context, key string) bool
}
