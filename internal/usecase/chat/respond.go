package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/smartshopper/internal/domain/product"
)

// Fixed replies.
const (
	GreetingResponse = "Hello! I'm SmartShopper AI, your personal shopping assistant. " +
		"I can help you find products, compare prices, and make recommendations. " +
		"What are you looking for today?"
	HelpResponse = "I can help you find products across categories like electronics, clothing, " +
		"home goods, books, and more! Just tell me what you're looking for, your budget, " +
		"or any specific preferences."
	NoMatchResponse = "I couldn't find any products matching your request, but I'm here to help! " +
		"Try describing what you're looking for in different terms, or let me know your budget and preferences."
	ApologyResponse = "I apologize, but I'm having trouble processing your request right now. " +
		"Please try again later."
)

var (
	greetingWords = []string{"hello", "hi", "hey"}
	helpWords     = []string{"help", "what can you do"}
)

// ApologySuggestions accompany the apology reply.
func ApologySuggestions() []string {
	return []string{"Try a different search", "Browse categories", "Contact support"}
}

// Fallback is the rule-based reply used when no generation provider answered.
// The top recommendation is the first product in retrieval order.
func Fallback(message string, products []product.Product) string {
	switch {
	case len(products) == 1:
		p := products[0]
		var b strings.Builder
		fmt.Fprintf(&b, "I found a great option for you: the %s%s for $%s.", p.Name, byBrand(p), FormatNumber(p.Price))
		if p.Rating != nil {
			fmt.Fprintf(&b, " It has a %s/5 rating and is currently in stock!", FormatNumber(*p.Rating))
		} else {
			b.WriteString(" It is currently in stock!")
		}
		return b.String()

	case len(products) > 1:
		p := products[0]
		return fmt.Sprintf("I found %d great options! The top recommendation is the %s%s for $%s. "+
			"Would you like to see more details or filter by price range?",
			len(products), p.Name, byBrand(p), FormatNumber(p.Price))
	}

	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, greetingWords):
		return GreetingResponse
	case containsAny(lower, helpWords):
		return HelpResponse
	default:
		return NoMatchResponse
	}
}

func byBrand(p product.Product) string {
	if p.Brand == "" {
		return ""
	}
	return " by " + p.Brand
}

// FormatNumber renders a float with the shortest exact digits and at least
// one fractional digit: 50 -> "50.0", 999.99 -> "999.99".
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
