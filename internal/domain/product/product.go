package product

import (
	"fmt"
	"strings"
	"time"
)

// Category is one of the fixed catalog categories.
type Category string

// Catalog categories.
const (
	Electronics Category = "electronics"
	Clothing    Category = "clothing"
	Home        Category = "home"
	Books       Category = "books"
	Sports      Category = "sports"
	Beauty      Category = "beauty"
	Automotive  Category = "automotive"
	Groceries   Category = "groceries"
	Other       Category = "other"
)

var categories = []Category{
	Electronics, Clothing, Home, Books, Sports, Beauty, Automotive, Groceries, Other,
}

// Categories returns every known category in catalog order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory normalizes and validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// MaxRating is the upper bound of the rating scale.
const MaxRating = 5.0

// Product is a catalog record. The index owns it; search and ranking only read it.
type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Category       Category          `json:"category"`
	Price          float64           `json:"price"`
	Currency       string            `json:"currency,omitempty"`
	Brand          string            `json:"brand,omitempty"`
	Features       []string          `json:"features,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	InStock        bool              `json:"in_stock"`
	StockQuantity  int               `json:"stock_quantity"`
	Rating         *float64          `json:"rating,omitempty"`
	ReviewCount    int               `json:"review_count"`
	ImageURLs      []string          `json:"image_urls,omitempty"`
	ImageEmbedding []float32         `json:"image_embedding,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Validate checks the record invariants: a non-empty identifier and name,
// a known category, a non-negative price, a rating within [0, 5] and
// non-negative counters.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("product id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product %s: name is required", p.ID)
	}
	if !p.Category.IsValid() {
		return fmt.Errorf("product %s: unknown category %q", p.ID, p.Category)
	}
	if p.Price < 0 {
		return fmt.Errorf("product %s: price must be non-negative", p.ID)
	}
	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > MaxRating) {
		return fmt.Errorf("product %s: rating must be between 0 and %g", p.ID, MaxRating)
	}
	if p.StockQuantity < 0 {
		return fmt.Errorf("product %s: stock quantity must be non-negative", p.ID)
	}
	if p.ReviewCount < 0 {
		return fmt.Errorf("product %s: review count must be non-negative", p.ID)
	}
	return nil
}

// HasEmbedding reports whether the record carries an image embedding.
func (p *Product) HasEmbedding() bool { return len(p.ImageEmbedding) > 0 }

// WithoutEmbedding returns a shallow copy with the embedding stripped.
// Response payloads never carry raw vectors.
func (p Product) WithoutEmbedding() Product {
	p.ImageEmbedding = nil
	return p
}
