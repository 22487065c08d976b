package catalog

import (
	"context"
	"time"

	"github.com/kailas-cloud/smartshopper/internal/domain/product"
	"github.com/kailas-cloud/smartshopper/internal/repository/cache"
)

// --- Mocks ---

type mockRepo struct {
	ensureCreated bool
	ensureErr     error
	upserted      []product.Product
	batches       [][]product.Product
	upsertErr     error
	failBatch     int // 1-based batch that fails; 0 never
	deleteErr     error
	deleted       []string
}

func (m *mockRepo) EnsureIndex(_ context.Context) (bool, error) {
	return m.ensureCreated, m.ensureErr
}

func (m *mockRepo) Upsert(_ context.Context, p *product.Product) (bool, error) {
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	m.upserted = append(m.upserted, *p)
	return true, nil
}

func (m *mockRepo) UpsertMany(_ context.Context, ps []product.Product) error {
	if m.failBatch == len(m.batches)+1 {
		return m.upsertErr
	}
	m.batches = append(m.batches, append([]product.Product(nil), ps...))
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockInvalidator struct {
	cleared  []cache.Namespace
	clearErr error
	deleted  []string
}

func (m *mockInvalidator) Clear(_ context.Context, ns cache.Namespace) (int, error) {
	m.cleared = append(m.cleared, ns)
	return 0, m.clearErr
}

func (m *mockInvalidator) Delete(_ context.Context, key string) bool {
	m.deleted = append(m.deleted, key)
	return true
}

// --- Helpers ---

func ptr[T any](v T) *T { return &v }

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func validProduct(id string) product.Product {
	return product.Product{
		ID:            id,
		Name:          "Product " + id,
		Description:   "A product",
		Category:      product.Electronics,
		Price:         99.99,
		InStock:       true,
		StockQuantity: 3,
		Rating:        ptr(4.5),
	}
}
