package chat

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/smartshopper/internal/domain"
	"github.com/kailas-cloud/smartshopper/internal/domain/product"
)

const (
	systemPrompt = "You are SmartShopper AI, a helpful shopping assistant."

	userPromptTemplate = "You are SmartShopper AI, a helpful shopping assistant. " +
		"Respond naturally and conversationally to help users find products.\n\n" +
		"User message: %s\n\n" +
		"%s\n\n" +
		"Provide a helpful, friendly response. If products were found, briefly highlight the best options " +
		"and explain why they might be good choices. Keep your response concise (2-3 sentences) " +
		"and focused on helping the user make a decision."

	promptMaxTokens   = 150
	promptTemperature = 0.7

	contextProducts = 3
)

// BuildPrompt renders the generation prompt for a message and its candidates.
func BuildPrompt(message string, products []product.Product) domain.Prompt {
	return domain.Prompt{
		System:      systemPrompt,
		User:        fmt.Sprintf(userPromptTemplate, message, ProductContext(products)),
		MaxTokens:   promptMaxTokens,
		Temperature: promptTemperature,
	}
}

// ProductContext summarizes up to three candidates; empty when there are none.
func ProductContext(products []product.Product) string {
	if len(products) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on your request, I found %d relevant products:\n", len(products))
	for i, p := range products {
		if i == contextProducts {
			break
		}
		fmt.Fprintf(&b, "%d. %s%s - $%s", i+1, p.Name, byBrand(p), FormatNumber(p.Price))
		if p.Rating != nil {
			fmt.Fprintf(&b, " (Rating: %s/5)", FormatNumber(*p.Rating))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
