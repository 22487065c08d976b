package request

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/smartshopper/internal/domain/product"
)

// Descriptor limits and defaults.
const (
	// MaxQueryLength is the maximum allowed query length in bytes.
	MaxQueryLength  = 1024
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Params is the raw, unvalidated input of a search.
// Nil pointers mean "not provided".
type Params struct {
	Query       string
	Category    *string
	Brand       *string
	MinPrice    *float64
	MaxPrice    *float64
	MinRating   *float64
	InStockOnly bool
	Page        int
	PageSize    int
}

// Descriptor is a validated, immutable search request.
type Descriptor struct {
	query       string
	category    *product.Category
	brand       *string
	minPrice    *float64
	maxPrice    *float64
	minRating   *float64
	inStockOnly bool
	page        int
	pageSize    int
}

// New validates the params and builds a Descriptor. Malformed input is
// rejected here so that query planning never sees it.
func New(p Params) (Descriptor, error) {
	if len(p.Query) > MaxQueryLength {
		return Descriptor{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if p.Page < 1 {
		return Descriptor{}, fmt.Errorf("page must be >= 1")
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return Descriptor{}, fmt.Errorf("page_size must be between 1 and %d", MaxPageSize)
	}

	d := Descriptor{
		query:       p.Query,
		inStockOnly: p.InStockOnly,
		page:        p.Page,
		pageSize:    p.PageSize,
	}

	if p.Category != nil {
		c, err := product.ParseCategory(*p.Category)
		if err != nil {
			return Descriptor{}, err
		}
		d.category = &c
	}
	if p.Brand != nil {
		b := strings.TrimSpace(*p.Brand)
		if b == "" {
			return Descriptor{}, fmt.Errorf("brand must not be blank")
		}
		d.brand = &b
	}

	var err error
	if d.minPrice, err = nonNegative("min_price", p.MinPrice); err != nil {
		return Descriptor{}, err
	}
	if d.maxPrice, err = nonNegative("max_price", p.MaxPrice); err != nil {
		return Descriptor{}, err
	}
	if d.minPrice != nil && d.maxPrice != nil && *d.minPrice > *d.maxPrice {
		return Descriptor{}, fmt.Errorf("min_price must not exceed max_price")
	}
	if d.minRating, err = nonNegative("min_rating", p.MinRating); err != nil {
		return Descriptor{}, err
	}
	if d.minRating != nil && *d.minRating > product.MaxRating {
		return Descriptor{}, fmt.Errorf("min_rating must be between 0 and %g", product.MaxRating)
	}

	return d, nil
}

func nonNegative(name string, v *float64) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil, fmt.Errorf("%s must be a finite number", name)
	}
	if *v < 0 {
		return nil, fmt.Errorf("%s must be non-negative", name)
	}
	out := *v
	return &out, nil
}

// Query returns the raw query text.
func (d Descriptor) Query() string { return d.query }

// Category returns the category filter or nil.
func (d Descriptor) Category() *product.Category { return d.category }

// Brand returns the brand filter or nil.
func (d Descriptor) Brand() *string { return d.brand }

// MinPrice returns the inclusive lower price bound or nil.
func (d Descriptor) MinPrice() *float64 { return d.minPrice }

// MaxPrice returns the inclusive upper price bound or nil.
func (d Descriptor) MaxPrice() *float64 { return d.maxPrice }

// MinRating returns the rating floor or nil.
func (d Descriptor) MinRating() *float64 { return d.minRating }

// InStockOnly reports whether out-of-stock records are excluded.
func (d Descriptor) InStockOnly() bool { return d.inStockOnly }

// Page returns the 1-based page number.
func (d Descriptor) Page() int { return d.page }

// PageSize returns the page size.
func (d Descriptor) PageSize() int { return d.pageSize }

// Offset returns the row offset of the first record on the page.
func (d Descriptor) Offset() int { return (d.page - 1) * d.pageSize }

// KeyPayload returns a flat representation of every field, used to derive
// content-addressed cache keys. Absent filters are encoded as nil.
func (d Descriptor) KeyPayload() map[string]any {
	m := map[string]any{
		"query":         d.query,
		"category":      nil,
		"brand":         nil,
		"min_price":     nil,
		"max_price":     nil,
		"min_rating":    nil,
		"in_stock_only": d.inStockOnly,
		"page":          d.page,
		"page_size":     d.pageSize,
	}
	if d.category != nil {
		m["category"] = string(*d.category)
	}
	if d.brand != nil {
		m["brand"] = *d.brand
	}
	if d.minPrice != nil {
		m["min_price"] = *d.minPrice
	}
	if d.maxPrice != nil {
		m["max_price"] = *d.maxPrice
	}
	if d.minRating != nil {
		m["min_rating"] = *d.minRating
	}
	return m
}
