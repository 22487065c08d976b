// Package catalog ingests product records into the search index.
package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/domain"
	"github.com/kailas-cloud/smartshopper/internal/domain/product"
	"github.com/kailas-cloud/smartshopper/internal/repository/cache"
)

const defaultBatchSize = 500

// Service validates records, writes them and invalidates stale cache entries.
type Service struct {
	repo      Repository
	cache     Invalidator
	batchSize int
	now       func() time.Time
	logger    *zap.Logger
}

// New creates a catalog service. cache may be nil.
func New(repo Repository, c Invalidator, logger *zap.Logger) *Service {
	return &Service{repo: repo, cache: c, batchSize: defaultBatchSize, now: time.Now, logger: logger}
}

// WithBatchSize sets how many records one pipelined write carries.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// EnsureIndex creates the product index if needed. Returns true if created.
func (s *Service) EnsureIndex(ctx context.Context) (bool, error) {
	created, err := s.repo.EnsureIndex(ctx)
	if err != nil {
		return false, fmt.Errorf("ensure index: %w", err)
	}
	return created, nil
}

// Index validates and writes one product. Returns true if it was new.
func (s *Service) Index(ctx context.Context, p product.Product) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrInvalidRecord, err)
	}
	s.stamp(&p)

	created, err := s.repo.Upsert(ctx, &p)
	if err != nil {
		return false, fmt.Errorf("index product %s: %w", p.ID, err)
	}
	s.invalidate(ctx, p.ID)
	return created, nil
}

// IndexMany validates every record up front and writes them in batches.
// Nothing is written when any record is invalid.
func (s *Service) IndexMany(ctx context.Context, products []product.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}
	batch := make([]product.Product, len(products))
	ids := make([]string, len(products))
	for i := range products {
		if err := products[i].Validate(); err != nil {
			return 0, fmt.Errorf("%w: record %d: %w", domain.ErrInvalidRecord, i, err)
		}
		batch[i] = products[i]
		s.stamp(&batch[i])
		ids[i] = batch[i].ID
	}

	written := 0
	for start := 0; start < len(batch); start += s.batchSize {
		end := min(start+s.batchSize, len(batch))
		if err := s.repo.UpsertMany(ctx, batch[start:end]); err != nil {
			s.invalidate(ctx, ids[:written]...)
			return written, fmt.Errorf("index batch at %d: %w", start, err)
		}
		written = end
	}
	s.invalidate(ctx, ids...)
	s.logger.Info("Products indexed", zap.Int("count", written))
	return written, nil
}

// Delete removes a product and its cached detail.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) stamp(p *product.Product) {
	now := s.now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// invalidate drops every cached search page and the detail entries of ids.
// Cache failures are logged; the index write already succeeded.
func (s *Service) invalidate(ctx context.Context, ids ...string) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Clear(ctx, cache.NamespaceSearch); err != nil {
		s.logger.Warn("Search cache invalidation failed", zap.Error(err))
	}
	for _, id := range ids {
		s.cache.Delete(ctx, cache.ProductKey(id))
	}
}
