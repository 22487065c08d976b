package domain

import (
	"context"
	"fmt"
)

// ImageEmbedder maps images and text into one shared similarity space.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, image []byte) ([]float32, error)
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Prompt is a provider-neutral generation request.
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// Generator produces text for a prompt. Every failure mode (transport, quota,
// content filtering, timeout) is reported as an error.
type Generator interface {
	Name() string
	Generate(ctx context.Context, p Prompt) (string, error)
}

// PromptedTextEmbedder is a decorator that wraps text queries in a caption
// template before embedding. CLIP-style models match captions like
// "a photo of running shoes" far better than bare keywords.
type PromptedTextEmbedder struct {
	inner    ImageEmbedder
	template string
}

// NewPromptedTextEmbedder creates the decorator. The template must contain a single %s verb.
func NewPromptedTextEmbedder(inner ImageEmbedder, template string) *PromptedTextEmbedder {
	return &PromptedTextEmbedder{inner: inner, template: template}
}

// EmbedImage delegates unchanged.
func (e *PromptedTextEmbedder) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	return e.inner.EmbedImage(ctx, image)
}

// EmbedText formats the caption and delegates.
func (e *PromptedTextEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.inner.EmbedText(ctx, fmt.Sprintf(e.template, text))
	if err != nil {
		return nil, fmt.Errorf("prompted embed: %w", err)
	}
	return vec, nil
}
