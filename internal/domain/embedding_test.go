package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	vec     []float32
	err     error
	gotText string
	gotImg  []byte
}

func (s *stubEmbedder) EmbedImage(_ context.Context, image []byte) ([]float32, error) {
	s.gotImg = image
	return s.vec, s.err
}

func (s *stubEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	s.gotText = text
	return s.vec, s.err
}

func TestPromptedTextEmbedder_FormatsCaption(t *testing.T) {
	inner := &stubEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	emb := NewPromptedTextEmbedder(inner, "a photo of %s")

	vec, err := emb.EmbedText(context.Background(), "red sneakers")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.gotText != "a photo of red sneakers" {
		t.Errorf("got %q", inner.gotText)
	}
	if len(vec) != 3 {
		t.Errorf("expected 3-element vector, got %d", len(vec))
	}
}

func TestPromptedTextEmbedder_ImagePassthrough(t *testing.T) {
	inner := &stubEmbedder{vec: []float32{1}}
	emb := NewPromptedTextEmbedder(inner, "a photo of %s")

	if _, err := emb.EmbedImage(context.Background(), []byte{0xFF, 0xD8}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.gotImg) != 2 {
		t.Error("image bytes not forwarded")
	}
	if inner.gotText != "" {
		t.Error("image path must not touch the text encoder")
	}
}

func TestPromptedTextEmbedder_ErrorPropagation(t *testing.T) {
	inner := &stubEmbedder{err: ErrEmbeddingUnavailable}
	emb := NewPromptedTextEmbedder(inner, "a photo of %s")

	_, err := emb.EmbedText(context.Background(), "lamp")
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Errorf("expected wrapped ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestCapabilities(t *testing.T) {
	caps := NewCapabilities()
	caps.Set(CapabilityImageEmbedding, true)
	caps.Set(CapabilityGenerationPrefix+"openai", false)

	if !caps.Has(CapabilityImageEmbedding) {
		t.Error("image embedding should be available")
	}
	if caps.Has(CapabilityGenerationPrefix + "openai") {
		t.Error("openai should be unavailable")
	}
	if caps.Has("unknown") {
		t.Error("unknown capability should be unavailable")
	}

	snap := caps.Snapshot()
	if snap[CapabilityImageEmbedding] != StatusAvailable {
		t.Errorf("snapshot = %v", snap)
	}
	if snap[CapabilityGenerationPrefix+"openai"] != StatusUnavailable {
		t.Errorf("snapshot = %v", snap)
	}
}
