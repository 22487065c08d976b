package search

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/domain/product"
	"github.com/kailas-cloud/smartshopper/internal/domain/search/query"
	"github.com/kailas-cloud/smartshopper/internal/domain/search/request"
	"github.com/kailas-cloud/smartshopper/internal/domain/search/result"
	"github.com/kailas-cloud/smartshopper/internal/repository/cache"
)

// Service answers product searches and detail lookups, cache first.
type Service struct {
	repo   Repository
	cache  Cache
	logger *zap.Logger
}

// New creates a search service.
func New(repo Repository, c Cache, logger *zap.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

// Search plans the descriptor and runs it against the index. An index
// failure yields an empty set with total 0; the only error returned is the
// context error of a cancelled request.
func (s *Service) Search(ctx context.Context, d request.Descriptor) (result.Set, error) {
	key, err := cache.DeriveKey(cache.NamespaceSearch, d.KeyPayload())
	if err != nil {
		s.logger.Warn("Search cache key unavailable", zap.Error(err))
	}
	if key != "" {
		if set, ok := s.cachedSet(ctx, key); ok {
			return set, nil
		}
	}

	plan := query.Plan(d)
	products, total, err := s.repo.Search(ctx, plan, d.Offset(), d.PageSize())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result.Set{}, ctxErr
		}
		s.logger.Error("Product search failed",
			zap.String("query", d.Query()),
			zap.Int("page", d.Page()),
			zap.Error(err),
		)
		return result.Empty(d.Query(), d.Page(), d.PageSize()), nil
	}

	for i := range products {
		products[i] = products[i].WithoutEmbedding()
	}
	set := result.New(d.Query(), products, total, d.Page(), d.PageSize())

	if key != "" {
		s.store(ctx, key, set)
	}
	return set, nil
}

// Product returns one product by ID, fronted by the product-detail cache.
// A missing product yields domain.ErrProductNotFound.
func (s *Service) Product(ctx context.Context, id string) (product.Product, error) {
	key := cache.ProductKey(id)
	if data, ok := s.cache.Get(ctx, key); ok {
		var p product.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return p, nil
		}
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return product.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	p = p.WithoutEmbedding()
	s.store(ctx, key, p)
	return p, nil
}

func (s *Service) cachedSet(ctx context.Context, key string) (result.Set, bool) {
	data, ok := s.cache.Get(ctx, key)
	if !ok {
		return result.Set{}, false
	}
	var set result.Set
	if err := json.Unmarshal(data, &set); err != nil {
		s.logger.Warn("Discarding unreadable cached result", zap.String("key", key), zap.Error(err))
		return result.Set{}, false
	}
	if set.Products == nil {
		set.Products = []product.Product{}
	}
	return set, true
}

// store writes v with the namespace TTL. Failures are non-fatal.
func (s *Service) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("Result not cacheable", zap.String("key", key), zap.Error(err))
		return
	}
	s.cache.Set(ctx, key, data, 0)
}
