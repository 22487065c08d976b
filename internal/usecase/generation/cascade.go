// Package generation runs text generation through an ordered list of
// substitutable providers.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/domain"
	"github.com/kailas-cloud/smartshopper/internal/metrics"
)

// Answer is the text produced by the first provider that succeeded.
type Answer struct {
	Provider string
	Text     string
}

// Cascade tries providers strictly in order; each one is tried only after
// the previous one has failed. It is safe for concurrent use.
type Cascade struct {
	providers []domain.Generator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewCascade creates a cascade. A positive timeout bounds every attempt;
// hitting it counts as a provider failure.
func NewCascade(providers []domain.Generator, timeout time.Duration, logger *zap.Logger) *Cascade {
	ps := make([]domain.Generator, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			ps = append(ps, p)
		}
	}
	return &Cascade{providers: ps, timeout: timeout, logger: logger}
}

// Providers returns provider names in priority order.
func (c *Cascade) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Generate returns the first non-empty answer. It fails with
// domain.ErrNoProviderAvailable when every provider failed or none is
// configured, and with the context error once ctx is done.
func (c *Cascade) Generate(ctx context.Context, prompt domain.Prompt) (Answer, error) {
	var errs []error
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return Answer{}, err
		}

		text, err := c.attempt(ctx, p, prompt)
		if err == nil {
			return Answer{Provider: p.Name(), Text: text}, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}

	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}
	if len(errs) == 0 {
		return Answer{}, domain.ErrNoProviderAvailable
	}
	return Answer{}, fmt.Errorf("%w: %w", domain.ErrNoProviderAvailable, errors.Join(errs...))
}

func (c *Cascade) attempt(ctx context.Context, p domain.Generator, prompt domain.Prompt) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	name := p.Name()
	start := time.Now()
	text, err := p.Generate(ctx, prompt)
	duration := time.Since(start)
	metrics.GenerationRequestDuration.WithLabelValues(name).Observe(duration.Seconds())

	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("%w: empty response", domain.ErrProviderError)
	}
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(name, "error").Inc()
		c.logger.Warn("Generation provider failed",
			zap.String("provider", name),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return "", err
	}

	metrics.GenerationRequestsTotal.WithLabelValues(name, "ok").Inc()
	c.logger.Debug("Generation provider answered",
		zap.String("provider", name),
		zap.Duration("duration", duration),
		zap.Int("chars", len(text)),
	)
	return strings.TrimSpace(text), nil
}
