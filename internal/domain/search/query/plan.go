// Package query turns a search descriptor into an index-agnostic structured
// query: a relevance clause plus independent hard filters.
package query

import (
	"strings"

	"github.com/kailas-cloud/smartshopper/internal/domain/search/filter"
	"github.com/kailas-cloud/smartshopper/internal/domain/search/request"
)

// Searchable text fields.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldBrand       = "brand"
	FieldFeatures    = "features"
	FieldTags        = "tags"
)

// Filter keys emitted by Plan.
const (
	FilterCategory = "category"
	FilterBrand    = "brand"
	FilterInStock  = "in_stock"
	FilterPrice    = "price"
	FilterRating   = "rating"
)

// InStockValue is the match value of the stock-only filter.
const InStockValue = "true"

// Boost is a per-field relevance weight.
type Boost struct {
	Field  string
	Weight float64
}

// Name matches must outrank description matches at equal term frequency,
// so the weights are strictly ordered.
var boosts = []Boost{
	{Field: FieldName, Weight: 3},
	{Field: FieldDescription, Weight: 2},
	{Field: FieldBrand, Weight: 2},
	{Field: FieldFeatures, Weight: 1},
	{Field: FieldTags, Weight: 1},
}

// Boosts returns the field weights in decreasing priority.
func Boosts() []Boost {
	out := make([]Boost, len(boosts))
	copy(out, boosts)
	return out
}

// Relevance is either the universal match or a weighted multi-field clause.
type Relevance struct {
	text   string
	boosts []Boost
}

// MatchAll reports whether the clause matches every record without scoring.
func (r Relevance) MatchAll() bool { return r.text == "" }

// Text returns the trimmed query text; empty for match-all.
func (r Relevance) Text() string { return r.text }

// Boosts returns the weighted fields; nil for match-all.
func (r Relevance) Boosts() []Boost { return r.boosts }

// Structured is the planner output. It carries no pagination.
type Structured struct {
	relevance Relevance
	filters   filter.Expression
}

// Relevance returns the scoring clause.
func (s Structured) Relevance() Relevance { return s.relevance }

// Filters returns the hard filters.
func (s Structured) Filters() filter.Expression { return s.filters }

// Plan builds the structured query for a validated descriptor.
// Descriptor fields that are absent produce no filter at all.
func Plan(d request.Descriptor) Structured {
	var rel Relevance
	if text := strings.TrimSpace(d.Query()); text != "" {
		rel = Relevance{text: text, boosts: Boosts()}
	}

	var conds []filter.Condition
	if c := d.Category(); c != nil {
		conds = append(conds, mustMatch(FilterCategory, string(*c)))
	}
	if b := d.Brand(); b != nil {
		conds = append(conds, mustMatch(FilterBrand, *b))
	}
	if d.InStockOnly() {
		conds = append(conds, mustMatch(FilterInStock, InStockValue))
	}
	if d.MinPrice() != nil || d.MaxPrice() != nil {
		conds = append(conds, mustRange(FilterPrice, d.MinPrice(), d.MaxPrice()))
	}
	if d.MinRating() != nil {
		conds = append(conds, mustRange(FilterRating, d.MinRating(), nil))
	}

	// Keys are distinct and values validated by request.New.
	expr, err := filter.And(conds...)
	if err != nil {
		panic("query: " + err.Error())
	}
	return Structured{relevance: rel, filters: expr}
}

func mustMatch(key, value string) filter.Condition {
	c, err := filter.NewMatch(key, value)
	if err != nil {
		panic("query: " + err.Error())
	}
	return c
}

func mustRange(key string, lo, hi *float64) filter.Condition {
	r, err := filter.NewInclusiveRange(lo, hi)
	if err != nil {
		panic("query: " + err.Error())
	}
	c, err := filter.NewRange(key, r)
	if err != nil {
		panic("query: " + err.Error())
	}
	return c
}
