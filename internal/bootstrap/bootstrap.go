// Package bootstrap builds the optional providers and stores from configuration
// and records what it managed to build as capabilities.
package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/config"
	"github.com/kailas-cloud/smartshopper/internal/db"
	"github.com/kailas-cloud/smartshopper/internal/db/memory"
	dbRedis "github.com/kailas-cloud/smartshopper/internal/db/redis"
	dbValkey "github.com/kailas-cloud/smartshopper/internal/db/valkey"
	"github.com/kailas-cloud/smartshopper/internal/domain"
	"github.com/kailas-cloud/smartshopper/internal/metrics"
	"github.com/kailas-cloud/smartshopper/internal/repository/cache"
	"github.com/kailas-cloud/smartshopper/internal/repository/embcache"
	"github.com/kailas-cloud/smartshopper/internal/transport/gigachat"
	"github.com/kailas-cloud/smartshopper/internal/transport/onnx"
	openaiTransport "github.com/kailas-cloud/smartshopper/internal/transport/openai"
	visualuc "github.com/kailas-cloud/smartshopper/internal/usecase/visual"
)

const memoryCleanupInterval = 10 * time.Minute

// BuildCache opens the configured cache store. Driver "none", or a store
// that cannot be reached, yields a disabled cache on which every read misses.
func BuildCache(cfg config.CacheConfig, logger *zap.Logger) (*cache.Cache, func()) {
	var (
		store db.CacheStore
		err   error
	)
	switch cfg.Driver {
	case config.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs: cfg.Addrs, Username: cfg.Username, Password: cfg.Password, DB: cfg.DB,
		})
	case config.DriverValkey:
		store, err = dbValkey.NewStore(dbValkey.Config{
			Addrs: cfg.Addrs, Username: cfg.Username, Password: cfg.Password, DB: cfg.DB,
		})
	case config.DriverMemory:
		store = memory.NewStore(memoryCleanupInterval)
	}

	policy := make(map[cache.Namespace]time.Duration)
	for ns, ttl := range cfg.TTLs() {
		policy[cache.Namespace(ns)] = ttl
	}

	if err != nil {
		logger.Warn("Cache store unreachable, running without cache",
			zap.String("driver", cfg.Driver),
			zap.Strings("addrs", cfg.Addrs),
			zap.Error(err),
		)
		return cache.New(nil, cfg.KeyPrefix, policy, metrics.CacheRequestsTotal, logger), func() {}
	}
	if store == nil {
		logger.Info("Cache disabled")
		return cache.New(nil, cfg.KeyPrefix, policy, metrics.CacheRequestsTotal, logger), func() {}
	}
	logger.Info("Cache store created", zap.String("driver", cfg.Driver))
	return cache.New(store, cfg.KeyPrefix, policy, metrics.CacheRequestsTotal, logger), store.Close
}

// BuildGenerators returns the configured providers in cascade order:
// OpenAI-compatible first, GigaChat second.
func BuildGenerators(
	ctx context.Context, cfg config.GenerationConfig, caps *domain.Capabilities, logger *zap.Logger,
) ([]domain.Generator, func()) {
	var (
		gens    []domain.Generator
		closers []func()
	)

	if cfg.OpenAI.Enabled() {
		gens = append(gens, openaiTransport.NewGenerator(&openaiTransport.Config{
			APIKey:   cfg.OpenAI.APIKey,
			BaseURL:  cfg.OpenAI.BaseURL,
			Model:    cfg.OpenAI.Model,
			Provider: "openai",
			Logger:   logger,
		}))
	}
	caps.Set(domain.CapabilityGenerationPrefix+"openai", cfg.OpenAI.Enabled())

	gigaOK := false
	if cfg.GigaChat.Enabled() {
		g, err := gigachat.New(ctx, gigachat.Config{
			APIKey:             cfg.GigaChat.APIKey,
			Scope:              cfg.GigaChat.Scope,
			Model:              cfg.GigaChat.Model,
			InsecureSkipVerify: cfg.GigaChat.InsecureSkipVerify,
		}, logger)
		if err != nil {
			logger.Warn("GigaChat unavailable", zap.Error(err))
		} else {
			gens = append(gens, g)
			closers = append(closers, g.Close)
			gigaOK = true
		}
	}
	caps.Set(domain.CapabilityGenerationPrefix+"gigachat", gigaOK)

	return gens, func() {
		for _, c := range closers {
			c()
		}
	}
}

// BuildImageEmbedder assembles the chain: provider -> cached -> prompted.
// It returns a nil interface when no provider is usable.
func BuildImageEmbedder(
	cfg config.VisionConfig, c *cache.Cache, caps *domain.Capabilities, logger *zap.Logger,
) (domain.ImageEmbedder, func()) {
	var (
		base     domain.ImageEmbedder
		identity string
		closeFn  = func() {}
	)

	switch cfg.Provider {
	case config.VisionOpenAI:
		identity = embcache.Identity(cfg.Provider, cfg.OpenAI.BaseURL+"|"+cfg.OpenAI.Model, cfg.Dimensions)
		base = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:   cfg.OpenAI.APIKey,
			BaseURL:  cfg.OpenAI.BaseURL,
			Model:    cfg.OpenAI.Model,
			Provider: "openai",
			Logger:   logger,
		}, cfg.Dimensions)
	case config.VisionONNX:
		enc, err := onnx.Load(onnx.Config{
			ModelPath:   cfg.ONNX.ModelPath,
			LibraryPath: cfg.ONNX.LibraryPath,
			Dimensions:  cfg.Dimensions,
			ImageSize:   cfg.ONNX.ImageSize,
		}, logger)
		if err != nil {
			logger.Warn("CLIP encoder unavailable", zap.Error(err))
			break
		}
		base = enc
		identity = embcache.Identity(cfg.Provider, cfg.ONNX.ModelPath, cfg.Dimensions)
		closeFn = func() { _ = enc.Close() }
	}

	caps.Set(domain.CapabilityImageEmbedding, base != nil)
	if base == nil {
		return nil, closeFn
	}

	var embedder domain.ImageEmbedder = base
	if c.Enabled() {
		embedder = embcache.New(base, identity, c, logger)
	}
	return domain.NewPromptedTextEmbedder(embedder, cfg.TextPrompt), closeFn
}

// BuildAnalyzer returns a nil interface when image analysis is not configured.
func BuildAnalyzer(cfg config.VisionConfig, caps *domain.Capabilities, logger *zap.Logger) visualuc.Analyzer {
	enabled := cfg.Analyzer.Enabled()
	caps.Set(domain.CapabilityImageAnalysis, enabled)
	if !enabled {
		return nil
	}
	return openaiTransport.NewAnalyzer(&openaiTransport.Config{
		APIKey:   cfg.Analyzer.APIKey,
		BaseURL:  cfg.Analyzer.BaseURL,
		Model:    cfg.Analyzer.Model,
		Provider: "openai",
		Logger:   logger,
	})
}
