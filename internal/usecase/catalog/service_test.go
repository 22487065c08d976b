package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/domain"
	"github.com/kailas-cloud/smartshopper/internal/domain/product"
	"github.com/kailas-cloud/smartshopper/internal/repository/cache"
)

func newTestService(repo *mockRepo, inv *mockInvalidator) *Service {
	var c Invalidator
	if inv != nil {
		c = inv
	}
	svc := New(repo, c, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestEnsureIndex(t *testing.T) {
	svc := newTestService(&mockRepo{ensureCreated: true}, nil)
	created, err := svc.EnsureIndex(context.Background())
	if err != nil || !created {
		t.Fatalf("expected created, got %v %v", created, err)
	}

	svc = newTestService(&mockRepo{ensureErr: errors.New("no search module")}, nil)
	if _, err := svc.EnsureIndex(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestIndex_ValidatesAndStamps(t *testing.T) {
	repo := &mockRepo{}
	inv := &mockInvalidator{}
	svc := newTestService(repo, inv)

	created, err := svc.Index(context.Background(), validProduct("p1"))
	if err != nil || !created {
		t.Fatalf("expected created, got %v %v", created, err)
	}
	got := repo.upserted[0]
	if !got.CreatedAt.Equal(fixedNow) || !got.UpdatedAt.Equal(fixedNow) {
		t.Errorf("expected timestamps stamped, got %v %v", got.CreatedAt, got.UpdatedAt)
	}
	if len(inv.cleared) != 1 || inv.cleared[0] != cache.NamespaceSearch {
		t.Errorf("expected search namespace cleared, got %v", inv.cleared)
	}
	if len(inv.deleted) != 1 || inv.deleted[0] != cache.ProductKey("p1") {
		t.Errorf("expected product detail invalidated, got %v", inv.deleted)
	}
}

func TestIndex_KeepsCreatedAt(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, nil)

	p := validProduct("p1")
	p.CreatedAt = fixedNow.Add(-48 * time.Hour)
	if _, err := svc.Index(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if !repo.upserted[0].CreatedAt.Equal(p.CreatedAt) {
		t.Error("existing created_at must be kept")
	}
}

func TestIndex_InvalidRecord(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *product.Product)
	}{
		{"negative price", func(p *product.Product) { p.Price = -1 }},
		{"rating above 5", func(p *product.Product) { p.Rating = ptr(6.0) }},
		{"unknown category", func(p *product.Product) { p.Category = "toys" }},
		{"missing id", func(p *product.Product) { p.ID = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockRepo{}
			svc := newTestService(repo, &mockInvalidator{})
			p := validProduct("p1")
			tc.mutate(&p)

			if _, err := svc.Index(context.Background(), p); !errors.Is(err, domain.ErrInvalidRecord) {
				t.Fatalf("expected ErrInvalidRecord, got %v", err)
			}
			if len(repo.upserted) != 0 {
				t.Error("invalid record must not be written")
			}
		})
	}
}

func TestIndex_CacheFailureIsNotFatal(t *testing.T) {
	inv := &mockInvalidator{clearErr: errors.New("cache down")}
	svc := newTestService(&mockRepo{}, inv)

	if _, err := svc.Index(context.Background(), validProduct("p1")); err != nil {
		t.Fatalf("cache failure must not fail the write: %v", err)
	}
}

func TestIndexMany_Batches(t *testing.T) {
	repo := &mockRepo{}
	inv := &mockInvalidator{}
	svc := newTestService(repo, inv).WithBatchSize(2)

	products := []product.Product{validProduct("a"), validProduct("b"), validProduct("c")}
	n, err := svc.IndexMany(context.Background(), products)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected 3 written, got %d", n)
	}
	if len(repo.batches) != 2 || len(repo.batches[0]) != 2 || len(repo.batches[1]) != 1 {
		t.Errorf("unexpected batching %v", repo.batches)
	}
	if len(inv.deleted) != 3 {
		t.Errorf("expected 3 detail invalidations, got %d", len(inv.deleted))
	}
	if !products[0].UpdatedAt.IsZero() {
		t.Error("input slice must not be modified")
	}
}

func TestIndexMany_RejectsBeforeWriting(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, nil)

	bad := validProduct("b")
	bad.StockQuantity = -1
	_, err := svc.IndexMany(context.Background(), []product.Product{validProduct("a"), bad})
	if !errors.Is(err, domain.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	if len(repo.batches) != 0 {
		t.Error("nothing may be written when a record is invalid")
	}
}

func TestIndexMany_PartialFailure(t *testing.T) {
	repo := &mockRepo{failBatch: 2, upsertErr: errors.New("pipeline broken")}
	inv := &mockInvalidator{}
	svc := newTestService(repo, inv).WithBatchSize(2)

	n, err := svc.IndexMany(context.Background(),
		[]product.Product{validProduct("a"), validProduct("b"), validProduct("c")})
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 2 {
		t.Errorf("expected 2 written before failure, got %d", n)
	}
	if len(inv.deleted) != 2 {
		t.Errorf("written records must still be invalidated, got %v", inv.deleted)
	}
}

func TestIndexMany_Empty(t *testing.T) {
	n, err := newTestService(&mockRepo{}, nil).IndexMany(context.Background(), nil)
	if n != 0 || err != nil {
		t.Errorf("expected no-op, got %d %v", n, err)
	}
}

func TestDelete(t *testing.T) {
	repo := &mockRepo{}
	inv := &mockInvalidator{}
	if err := newTestService(repo, inv).Delete(context.Background(), "p1"); err != nil {
		t.Fatal(err)
	}
	if len(repo.deleted) != 1 || len(inv.deleted) != 1 {
		t.Errorf("expected delete and invalidation, got %v %v", repo.deleted, inv.deleted)
	}

	repo = &mockRepo{deleteErr: domain.ErrProductNotFound}
	if err := newTestService(repo, nil).Delete(context.Background(), "p1"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
