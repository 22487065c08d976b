package db

import "github.com/kailas-cloud/smartshopper/internal/domain/search/filter"

// FieldWeight boosts matches in one TEXT field.
type FieldWeight struct {
	Field  string
	Weight float64
}

// TextQuery is the input for a weighted full-text search.
// An empty Text matches every document and produces no relevance scores.
type TextQuery struct {
	IndexName    string
	Text         string
	Fields       []FieldWeight
	Filters      filter.Expression
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
