// Package product stores catalog records as Redis hashes and searches them
// through an FT index.
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/db"
	"github.com/kailas-cloud/smartshopper/internal/domain"
	domprod "github.com/kailas-cloud/smartshopper/internal/domain/product"
	"github.com/kailas-cloud/smartshopper/internal/domain/search/filter"
	"github.com/kailas-cloud/smartshopper/internal/domain/search/query"
)

// store is the consumer interface for the product index (ISP).
type store interface {
	Ping(ctx context.Context) error
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo implements the index oracle for the search, chat and visual use cases.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
	logger    *zap.Logger
}

// New creates a product repository. keyPrefix namespaces every hash key.
func New(s store, indexName, keyPrefix string, logger *zap.Logger) *Repo {
	return &Repo{store: s, indexName: indexName, keyPrefix: keyPrefix, logger: logger}
}

// IndexDefinition returns the FT schema of the product index.
func (r *Repo) IndexDefinition() *db.IndexDefinition {
	return db.NewIndex(r.indexName).
		Prefix(r.productPrefix()).
		Text(fieldName).
		Text(fieldDescription).
		Text(fieldBrand).
		Text(fieldFeatures).
		Text(fieldTags).
		Tag(fieldBrandTag).
		Tag(fieldCategory).
		Tag(fieldInStock).
		Tag(fieldHasEmbedding).
		SortableNumeric(fieldPrice).
		Numeric(fieldRating).
		MustBuild()
}

// EnsureIndex creates the product index when it does not exist yet.
// It reports whether the index was created by this call.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	exists, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", r.indexName, err)
	}
	if exists {
		return false, nil
	}

	if err := r.store.CreateIndex(ctx, r.IndexDefinition()); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", r.indexName, err)
	}
	r.logger.Info("Product index created", zap.String("index", r.indexName))
	return true, nil
}

// Upsert writes one product, replacing any previous version. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, p *domprod.Product) (bool, error) {
	fields, err := buildHashFields(p)
	if err != nil {
		return false, err
	}
	key := r.productKey(p.ID)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}
	// Optional fields of the old version must not survive the overwrite.
	if exists {
		if err := r.store.Del(ctx, key); err != nil {
			return false, fmt.Errorf("del %s: %w", key, err)
		}
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}
	return !exists, nil
}

// UpsertMany writes products in one pipelined round-trip.
func (r *Repo) UpsertMany(ctx context.Context, products []domprod.Product) error {
	items := make([]db.HashSetItem, 0, len(products))
	for i := range products {
		fields, err := buildHashFields(&products[i])
		if err != nil {
			return err
		}
		items = append(items, db.HashSetItem{Key: r.productKey(products[i].ID), Fields: fields})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("bulk hset: %w", err)
	}
	return nil
}

// Get returns a product by ID.
func (r *Repo) Get(ctx context.Context, id string) (domprod.Product, error) {
	key := r.productKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domprod.Product{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domprod.Product{}, domain.ErrProductNotFound
	}
	p, err := parseHashFields(m)
	if err != nil {
		return domprod.Product{}, fmt.Errorf("parse %s: %w", key, err)
	}
	return p, nil
}

// Delete removes a product.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.productKey(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrProductNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Search runs a structured query and returns one window of hits in relevance
// order plus the total match count. Returned products carry no embedding.
func (r *Repo) Search(
	ctx context.Context, q query.Structured, offset, limit int,
) ([]domprod.Product, int, error) {
	filters, err := indexFilters(q.Filters())
	if err != nil {
		return nil, 0, err
	}

	tq := &db.TextQuery{
		IndexName:    r.indexName,
		Filters:      filters,
		Offset:       offset,
		Limit:        limit,
		ReturnFields: []string{fieldDoc},
	}
	if rel := q.Relevance(); !rel.MatchAll() {
		tq.Text = rel.Text()
		for _, b := range rel.Boosts() {
			tq.Fields = append(tq.Fields, db.FieldWeight{Field: b.Field, Weight: b.Weight})
		}
	}

	sr, err := r.store.SearchText(ctx, tq)
	if err != nil {
		return nil, 0, fmt.Errorf("search %s: %w", r.indexName, err)
	}
	return r.parseEntries(sr), sr.Total, nil
}

// Candidates returns one window of products that carry an image embedding,
// optionally restricted to one category, and the total count of such products.
func (r *Repo) Candidates(
	ctx context.Context, category *domprod.Category, offset, limit int,
) ([]domprod.Product, int, error) {
	conds := []filter.Condition{mustMatch(fieldHasEmbedding, "true")}
	if category != nil {
		conds = append(conds, mustMatch(fieldCategory, string(*category)))
	}
	filters, err := filter.And(conds...)
	if err != nil {
		return nil, 0, err
	}

	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    r.indexName,
		Filters:      filters,
		Offset:       offset,
		Limit:        limit,
		ReturnFields: []string{fieldDoc, fieldEmbedding},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("candidates %s: %w", r.indexName, err)
	}
	return r.parseEntries(sr), sr.Total, nil
}

// Health reports down when the store is unreachable and degraded when the
// index is missing or cannot be inspected.
func (r *Repo) Health(ctx context.Context) domain.IndexStatus {
	if err := r.store.Ping(ctx); err != nil {
		return domain.IndexDown
	}
	exists, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil || !exists {
		return domain.IndexDegraded
	}
	return domain.IndexUp
}

func (r *Repo) parseEntries(sr *db.SearchResult) []domprod.Product {
	if sr == nil {
		return nil
	}
	out := make([]domprod.Product, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		p, err := parseHashFields(e.Fields)
		if err != nil {
			r.logger.Warn("Skipping unreadable product", zap.String("key", e.Key), zap.Error(err))
			continue
		}
		if p.ID == "" {
			p.ID = strings.TrimPrefix(e.Key, r.productPrefix())
		}
		out = append(out, p)
	}
	return out
}

func (r *Repo) productPrefix() string {
	return r.keyPrefix + "product:"
}

func (r *Repo) productKey(id string) string {
	return r.productPrefix() + id
}

// indexFilters maps planner filter keys onto index field names. Brand
// equality runs against the TAG copy of the brand.
func indexFilters(expr filter.Expression) (filter.Expression, error) {
	conds := make([]filter.Condition, 0, len(expr.Conditions()))
	for _, c := range expr.Conditions() {
		key := c.Key()
		if key == query.FilterBrand {
			key = fieldBrandTag
		}
		var (
			mapped filter.Condition
			err    error
		)
		if c.IsRange() {
			mapped, err = filter.NewRange(key, c.Range())
		} else {
			mapped, err = filter.NewMatch(key, c.Match())
		}
		if err != nil {
			return filter.Expression{}, fmt.Errorf("map filter %s: %w", c.Key(), err)
		}
		conds = append(conds, mapped)
	}
	return filter.And(conds...)
}

func mustMatch(key, value string) filter.Condition {
	c, err := filter.NewMatch(key, value)
	if err != nil {
		panic("product: " + err.Error())
	}
	return c
}
