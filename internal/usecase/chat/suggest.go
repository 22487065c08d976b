package chat

import (
	"fmt"

	domchat "github.com/kailas-cloud/smartshopper/internal/domain/chat"
	"github.com/kailas-cloud/smartshopper/internal/domain/product"
)

// Suggestions synthesizes follow-up prompts from the retrieved products.
// The result never exceeds domchat.MaxSuggestions entries.
func Suggestions(products []product.Product) []string {
	var out []string

	if len(products) == 0 {
		out = []string{
			"Browse popular products",
			"Show me deals and discounts",
			"Help me find something specific",
			"Show me trending items",
		}
		return out[:domchat.MaxSuggestions]
	}

	for _, p := range products {
		if p.Category == product.Electronics {
			out = append(out,
				"Show me more electronics",
				"Compare similar products",
				"Find budget electronics",
			)
			break
		}
	}

	var sum float64
	for _, p := range products {
		sum += p.Price
	}
	avg := int(sum / float64(len(products)))
	out = append(out,
		fmt.Sprintf("Find products under $%d", avg),
		fmt.Sprintf("Show premium options above $%d", avg),
	)

	if len(out) > domchat.MaxSuggestions {
		out = out[:domchat.MaxSuggestions]
	}
	return out
}
