package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/domain"
	"github.com/kailas-cloud/smartshopper/internal/metrics"
)

// Embedder maps images and text into one CLIP-style space through an
// OpenAI-compatible embeddings endpoint. Images are sent inline as data URIs,
// which multimodal embedding servers accept in place of text input.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	provider   string
	logger     *zap.Logger
}

var _ domain.ImageEmbedder = (*Embedder)(nil)

// NewEmbedder creates a multimodal embedding provider. dimensions of 0 keeps
// the model default.
func NewEmbedder(cfg *Config, dimensions int) *Embedder {
	return &Embedder{
		client:     newClient(cfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: dimensions,
		provider:   cfg.Provider,
		logger:     loggerOf(cfg),
	}
}

// EmbedImage implements domain.ImageEmbedder.
func (e *Embedder) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	uri, err := dataURI(image)
	if err != nil {
		return nil, err
	}
	return e.embed(ctx, "image", uri)
}

// EmbedText implements domain.ImageEmbedder.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, "text", text)
}

// HealthCheck implements domain.HealthChecker.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, e.client)
}

func (e *Embedder) embed(ctx context.Context, input, payload string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{payload},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ImageEmbeddingRequestsTotal.WithLabelValues(e.provider, input, "error").Inc()
		return nil, parseAPIError("embedding", err, domain.ErrEmbeddingUnavailable)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		metrics.ImageEmbeddingRequestsTotal.WithLabelValues(e.provider, input, "error").Inc()
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingUnavailable)
	}

	metrics.ImageEmbeddingRequestsTotal.WithLabelValues(e.provider, input, "success").Inc()
	metrics.ImageEmbeddingDuration.WithLabelValues(e.provider, input).Observe(duration.Seconds())
	return resp.Data[0].Embedding, nil
}

// dataURI sniffs the image type and base64-encodes the bytes.
func dataURI(image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image", domain.ErrInvalidImage)
	}
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: unsupported content type %s", domain.ErrInvalidImage, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image), nil
}
