// Package gigachat adapts the GigaChat API to the text generation capability.
package gigachat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/domain"
)

// defaultTemperature applies when the prompt leaves temperature unset.
const defaultTemperature = 0.7

const defaultModel = "GigaChat"

// Config holds GigaChat connection settings.
type Config struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type completer interface {
	complete(ctx context.Context, p domain.Prompt) (string, error)
}

// Generator implements domain.Generator over GigaChat.
type Generator struct {
	completer completer
	client    *gigago.Client
	logger    *zap.Logger
}

var _ domain.Generator = (*Generator)(nil)

// New authenticates against GigaChat and returns a generator.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gigachat: api key is required")
	}
	opts := []gigago.Option{}
	if cfg.Scope != "" {
		opts = append(opts, gigago.WithCustomScope(cfg.Scope))
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GigaChat client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Generator{
		completer: sdkCompleter{client: client, model: model},
		client:    client,
		logger:    logger,
	}, nil
}

// Name implements domain.Generator.
func (g *Generator) Name() string { return "gigachat" }

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, p domain.Prompt) (string, error) {
	text, err := g.completer.complete(ctx, p)
	if err != nil {
		return "", fmt.Errorf("gigachat generate: %w: %w", domain.ErrProviderError, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("gigachat returned no content: %w", domain.ErrProviderError)
	}
	return text, nil
}

// Close releases the underlying client.
func (g *Generator) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

type sdkCompleter struct {
	client *gigago.Client
	model  string
}

// complete builds a model per call so concurrent turns never share a
// mutable system instruction.
func (c sdkCompleter) complete(ctx context.Context, p domain.Prompt) (string, error) {
	m := c.client.GenerativeModel(c.model)
	applyPrompt(m, p)

	resp, err := m.Generate(ctx, []gigago.Message{{Role: gigago.RoleUser, Content: p.User}})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// applyPrompt copies the system instruction and sampling limits onto m.
// Unset limits keep the model defaults.
func applyPrompt(m *gigago.GenerativeModel, p domain.Prompt) {
	m.SystemInstruction = p.System
	m.Temperature = defaultTemperature
	if p.Temperature > 0 {
		m.Temperature = float64(p.Temperature)
	}
	if p.MaxTokens > 0 {
		m.MaxTokens = int32(min(p.MaxTokens, math.MaxInt32))
	}
}
