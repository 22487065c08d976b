// Package chat holds the conversational turn types.
package chat

import "github.com/kailas-cloud/smartshopper/internal/domain/product"

// Limits of a single reply.
const (
	MaxRecommendations = 5
	MaxSuggestions     = 3
)

// ContextSearchTerms is the context key carrying the derived search term.
const ContextSearchTerms = "search_terms"

// Turn is one inbound user message.
type Turn struct {
	Message   string
	Context   map[string]any
	SessionID string
}

// Reply is the assistant's answer to a turn.
type Reply struct {
	Response    string            `json:"response"`
	Products    []product.Product `json:"products"`
	Suggestions []string          `json:"suggestions"`
	Context     map[string]any    `json:"context,omitempty"`
	SessionID   string            `json:"session_id,omitempty"`
}
