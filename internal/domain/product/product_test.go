package product

import (
	"strings"
	"testing"
)

func ratingPtr(r float64) *float64 { return &r }

func validProduct() Product {
	return Product{
		ID:       "p-1",
		Name:     "Galaxy S24",
		Category: Electronics,
		Price:    799.99,
		Brand:    "Samsung",
		InStock:  true,
		Rating:   ratingPtr(4.6),
	}
}

func TestValidate_OK(t *testing.T) {
	p := validProduct()
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.Rating = nil
	p.Price = 0
	if err := p.Validate(); err != nil {
		t.Fatalf("zero price and missing rating should be valid: %v", err)
	}
}

func TestValidate_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Product)
		wantErr string
	}{
		{"empty id", func(p *Product) { p.ID = " " }, "id is required"},
		{"empty name", func(p *Product) { p.Name = "" }, "name is required"},
		{"unknown category", func(p *Product) { p.Category = "toys" }, "unknown category"},
		{"negative price", func(p *Product) { p.Price = -1 }, "price"},
		{"rating above 5", func(p *Product) { p.Rating = ratingPtr(5.1) }, "rating"},
		{"negative rating", func(p *Product) { p.Rating = ratingPtr(-0.5) }, "rating"},
		{"negative stock", func(p *Product) { p.StockQuantity = -2 }, "stock"},
		{"negative reviews", func(p *Product) { p.ReviewCount = -1 }, "review"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(&p)
			err := p.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("  Electronics ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != Electronics {
		t.Errorf("got %q, want electronics", c)
	}

	if _, err := ParseCategory("furniture"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestCategories_ReturnsCopy(t *testing.T) {
	cs := Categories()
	if len(cs) != 9 {
		t.Fatalf("len = %d, want 9", len(cs))
	}
	cs[0] = "mutated"
	if Categories()[0] != Electronics {
		t.Error("Categories() exposed internal slice")
	}
}

func TestWithoutEmbedding(t *testing.T) {
	p := validProduct()
	p.ImageEmbedding = []float32{0.1, 0.2}

	stripped := p.WithoutEmbedding()
	if stripped.HasEmbedding() {
		t.Error("embedding should be stripped")
	}
	if !p.HasEmbedding() {
		t.Error("original should keep its embedding")
	}
}
