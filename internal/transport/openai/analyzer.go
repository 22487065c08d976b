package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/domain"
	"github.com/kailas-cloud/smartshopper/internal/domain/vision"
)

const analysisPrompt = `Analyze this product image and return a JSON object with the following fields:
- product_type: what kind of product this is
- category: one of electronics, clothing, home, books, sports, beauty, automotive, groceries, other
- colors: list of main colors
- style: style description (modern, classic, casual, ...)
- brand_visible: brand name if visible, otherwise empty
- key_features: list of notable features
- condition: new, used or unknown
- estimated_price_range: budget, mid-range or premium

Return only the JSON object.`

// Analyzer asks a vision-capable chat model for a structured attribute guess.
type Analyzer struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// NewAnalyzer creates a vision analysis provider.
func NewAnalyzer(cfg *Config) *Analyzer {
	return &Analyzer{
		client:   newClient(cfg),
		model:    cfg.Model,
		provider: cfg.Provider,
		logger:   loggerOf(cfg),
	}
}

// Analyze returns the model's guess. Transport failures and unparseable
// answers are both reported as domain.ErrAnalysisUnavailable.
func (a *Analyzer) Analyze(ctx context.Context, image []byte) (vision.Analysis, error) {
	uri, err := dataURI(image)
	if err != nil {
		return vision.Analysis{}, fmt.Errorf("%w: %w", domain.ErrAnalysisUnavailable, err)
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.model,
		MaxTokens: 500,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: analysisPrompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    uri,
					Detail: openai.ImageURLDetailLow,
				}},
			},
		}},
	})
	if err != nil {
		return vision.Analysis{}, parseAPIError("analysis", err, domain.ErrAnalysisUnavailable)
	}
	if len(resp.Choices) == 0 {
		return vision.Analysis{}, fmt.Errorf("empty analysis response: %w", domain.ErrAnalysisUnavailable)
	}

	return parseAnalysis(resp.Choices[0].Message.Content)
}

// parseAnalysis decodes the first JSON object in content. Models often wrap
// the object in a markdown fence or add a sentence around it.
func parseAnalysis(content string) (vision.Analysis, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return vision.Analysis{}, fmt.Errorf("no JSON object in analysis: %w", domain.ErrAnalysisUnavailable)
	}

	var out vision.Analysis
	if err := json.Unmarshal([]byte(content[start:end+1]), &out); err != nil {
		return vision.Analysis{}, fmt.Errorf("decode analysis: %w: %w", domain.ErrAnalysisUnavailable, err)
	}
	return out, nil
}
