package query

import (
	"testing"

	"github.com/kailas-cloud/smartshopper/internal/domain/search/filter"
	"github.com/kailas-cloud/smartshopper/internal/domain/search/request"
)

func strPtr(s string) *string      { return &s }
func floatPtr(f float64) *float64 { return &f }

func mustDescriptor(t *testing.T, p request.Params) request.Descriptor {
	t.Helper()
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = 10
	}
	d, err := request.New(p)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return d
}

func TestPlan_EmptyQueryMatchesAll(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		s := Plan(mustDescriptor(t, request.Params{Query: q}))
		if !s.Relevance().MatchAll() {
			t.Errorf("query %q: expected match-all", q)
		}
		if s.Relevance().Boosts() != nil {
			t.Errorf("query %q: match-all must not carry boosts", q)
		}
	}
}

func TestPlan_WeightedFields(t *testing.T) {
	s := Plan(mustDescriptor(t, request.Params{Query: "  wireless headphones "}))

	rel := s.Relevance()
	if rel.MatchAll() {
		t.Fatal("expected weighted clause")
	}
	if rel.Text() != "wireless headphones" {
		t.Errorf("Text() = %q, want trimmed", rel.Text())
	}

	want := map[string]float64{
		FieldName: 3, FieldDescription: 2, FieldBrand: 2, FieldFeatures: 1, FieldTags: 1,
	}
	got := rel.Boosts()
	if len(got) != len(want) {
		t.Fatalf("boosts = %d, want %d", len(got), len(want))
	}
	for _, b := range got {
		if want[b.Field] != b.Weight {
			t.Errorf("%s weight = %g, want %g", b.Field, b.Weight, want[b.Field])
		}
	}
	if got[0].Field != FieldName {
		t.Errorf("first boost = %s, want name", got[0].Field)
	}
}

func TestPlan_NoFiltersWhenAbsent(t *testing.T) {
	s := Plan(mustDescriptor(t, request.Params{Query: "laptop"}))
	if !s.Filters().IsEmpty() {
		t.Errorf("expected no filters, got %d", len(s.Filters().Conditions()))
	}
}

func TestPlan_ZeroPriceIsPresent(t *testing.T) {
	s := Plan(mustDescriptor(t, request.Params{MinPrice: floatPtr(0)}))

	c, ok := findCondition(s.Filters(), FilterPrice)
	if !ok {
		t.Fatal("price filter missing")
	}
	if c.Range().Min() == nil || *c.Range().Min() != 0 {
		t.Error("lower bound must be present and equal 0")
	}
	if c.Range().Max() != nil {
		t.Error("upper bound must be absent")
	}
}

func TestPlan_UpperBoundOnly(t *testing.T) {
	s := Plan(mustDescriptor(t, request.Params{MaxPrice: floatPtr(50)}))

	c, ok := findCondition(s.Filters(), FilterPrice)
	if !ok {
		t.Fatal("price filter missing")
	}
	if c.Range().Min() != nil {
		t.Error("lower bound must be absent")
	}
	if *c.Range().Max() != 50 {
		t.Errorf("upper bound = %g, want 50", *c.Range().Max())
	}
}

func TestPlan_AllFilters(t *testing.T) {
	s := Plan(mustDescriptor(t, request.Params{
		Query:       "shoes",
		Category:    strPtr("clothing"),
		Brand:       strPtr("Nike"),
		MinPrice:    floatPtr(20),
		MaxPrice:    floatPtr(150),
		MinRating:   floatPtr(4.5),
		InStockOnly: true,
	}))

	f := s.Filters()
	if len(f.Conditions()) != 5 {
		t.Fatalf("conditions = %d, want 5", len(f.Conditions()))
	}
	if c, _ := findCondition(f, FilterCategory); c.Match() != "clothing" {
		t.Errorf("category = %q", c.Match())
	}
	if c, _ := findCondition(f, FilterBrand); c.Match() != "Nike" {
		t.Errorf("brand = %q", c.Match())
	}
	if c, _ := findCondition(f, FilterInStock); c.Match() != InStockValue {
		t.Errorf("in_stock = %q", c.Match())
	}
	if c, _ := findCondition(f, FilterRating); *c.Range().Min() != 4.5 || c.Range().Max() != nil {
		t.Error("rating floor should be an open-ended lower bound")
	}
}

func TestPlan_StockFilterOnlyWhenRequested(t *testing.T) {
	s := Plan(mustDescriptor(t, request.Params{Query: "x", InStockOnly: false}))
	if _, ok := findCondition(s.Filters(), FilterInStock); ok {
		t.Error("stock filter must be absent when not requested")
	}
}

func TestPlan_IgnoresPagination(t *testing.T) {
	a := Plan(mustDescriptor(t, request.Params{Query: "tv", Page: 1, PageSize: 10}))
	b := Plan(mustDescriptor(t, request.Params{Query: "tv", Page: 7, PageSize: 50}))

	if a.Relevance().Text() != b.Relevance().Text() {
		t.Error("relevance differs across pages")
	}
	if len(a.Filters().Conditions()) != len(b.Filters().Conditions()) {
		t.Error("filters differ across pages")
	}
}

func TestBoosts_ReturnsCopy(t *testing.T) {
	b := Boosts()
	b[0].Weight = 100
	if Boosts()[0].Weight != 3 {
		t.Error("Boosts() exposed internal slice")
	}
}

func findCondition(expr filter.Expression, key string) (filter.Condition, bool) {
	for _, c := range expr.Conditions() {
		if c.Key() == key {
			return c, true
		}
	}
	return filter.Condition{}, false
}
