// Package onnx runs a local CLIP vision encoder through onnxruntime.
package onnx

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/domain"
	"github.com/kailas-cloud/smartshopper/internal/metrics"
)

const provider = "onnx"

// Config describes the exported vision tower.
type Config struct {
	ModelPath   string
	LibraryPath string // onnxruntime shared library; empty uses the platform default
	InputName   string
	OutputName  string
	Dimensions  int
	ImageSize   int
}

func (c *Config) applyDefaults() {
	if c.InputName == "" {
		c.InputName = "pixel_values"
	}
	if c.OutputName == "" {
		c.OutputName = "image_embeds"
	}
	if c.Dimensions <= 0 {
		c.Dimensions = 512
	}
	if c.ImageSize <= 0 {
		c.ImageSize = 224
	}
}

type runner interface {
	Run(pixels []float32) ([]float32, error)
	Destroy() error
}

// Encoder implements domain.ImageEmbedder for images only. The exported
// model has no text tower, so text queries report the capability as unavailable.
type Encoder struct {
	runner runner
	size   int
	dim    int
	logger *zap.Logger
}

var _ domain.ImageEmbedder = (*Encoder)(nil)

// Load initializes onnxruntime and opens the model. Every failure wraps
// domain.ErrEmbeddingUnavailable.
func Load(cfg Config, logger *zap.Logger) (*Encoder, error) {
	cfg.applyDefaults()
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("%w: model path is not configured", domain.ErrEmbeddingUnavailable)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if err := initEnvironment(cfg.LibraryPath); err != nil {
		return nil, fmt.Errorf("%w: init onnxruntime: %w", domain.ErrEmbeddingUnavailable, err)
	}

	r, err := newORTRunner(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	logger.Info("CLIP vision encoder loaded",
		zap.String("model", cfg.ModelPath),
		zap.Int("dimensions", cfg.Dimensions),
	)
	return newEncoder(r, cfg, logger), nil
}

func newEncoder(r runner, cfg Config, logger *zap.Logger) *Encoder {
	cfg.applyDefaults()
	return &Encoder{runner: r, size: cfg.ImageSize, dim: cfg.Dimensions, logger: logger}
}

// EmbedImage implements domain.ImageEmbedder.
func (e *Encoder) EmbedImage(ctx context.Context, data []byte) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	vec, err := e.runner.Run(pixelValues(img, e.size))
	if err != nil {
		metrics.ImageEmbeddingRequestsTotal.WithLabelValues(provider, "image", "error").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vec) != e.dim {
		metrics.ImageEmbeddingRequestsTotal.WithLabelValues(provider, "image", "error").Inc()
		return nil, fmt.Errorf("%w: model returned %d values, want %d",
			domain.ErrEmbeddingUnavailable, len(vec), e.dim)
	}

	metrics.ImageEmbeddingRequestsTotal.WithLabelValues(provider, "image", "success").Inc()
	metrics.ImageEmbeddingDuration.WithLabelValues(provider, "image").Observe(time.Since(start).Seconds())
	return vec, nil
}

// EmbedText implements domain.ImageEmbedder.
func (e *Encoder) EmbedText(context.Context, string) ([]float32, error) {
	return nil, errTextUnsupported
}

var errTextUnsupported = fmt.Errorf("%w: local encoder has no text tower", domain.ErrEmbeddingUnavailable)

// Close releases the session.
func (e *Encoder) Close() error {
	if err := e.runner.Destroy(); err != nil {
		return fmt.Errorf("destroy onnx session: %w", err)
	}
	return nil
}
