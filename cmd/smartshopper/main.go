package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/bootstrap"
	"github.com/kailas-cloud/smartshopper/internal/config"
	dbRedis "github.com/kailas-cloud/smartshopper/internal/db/redis"
	"github.com/kailas-cloud/smartshopper/internal/domain"
	logpkg "github.com/kailas-cloud/smartshopper/internal/logger"
	"github.com/kailas-cloud/smartshopper/internal/metrics"
	productrepo "github.com/kailas-cloud/smartshopper/internal/repository/product"
	chiTransport "github.com/kailas-cloud/smartshopper/internal/transport/chi"
	chatuc "github.com/kailas-cloud/smartshopper/internal/usecase/chat"
	"github.com/kailas-cloud/smartshopper/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/smartshopper/internal/usecase/health"
	searchuc "github.com/kailas-cloud/smartshopper/internal/usecase/search"
	visualuc "github.com/kailas-cloud/smartshopper/internal/usecase/visual"
	"github.com/kailas-cloud/smartshopper/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	logger, logFile := logpkg.WithFile(logger, logpkg.FileOutput{
		Path:       cfg.Logging.File.Path,
		MaxSizeMB:  cfg.Logging.File.MaxSizeMB,
		MaxBackups: cfg.Logging.File.MaxBackups,
		MaxAgeDays: cfg.Logging.File.MaxAgeDays,
		Compress:   cfg.Logging.File.Compress,
	})
	defer func() {
		_ = logger.Sync()
		_ = logFile.Close()
	}()

	logger.Info("Starting SmartShopper API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("index_addrs", cfg.Index.Addrs),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.String("vision_provider", cfg.Vision.Provider),
	)

	// Register provider metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Index.Addrs,
		Username: cfg.Index.Username,
		Password: cfg.Index.Password,
		DB:       cfg.Index.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create index store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Index.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Index store not ready", zap.Error(err))
	}
	logger.Info("Connected to index store")

	repo := productrepo.New(store, cfg.Index.Name, cfg.Index.KeyPrefix, logger)
	if _, err := repo.EnsureIndex(ctx); err != nil {
		// Searches come back empty until the index exists; health reports it.
		logger.Error("Failed to ensure product index", zap.Error(err))
	}

	caps := domain.NewCapabilities()

	cacheLayer, closeCache := bootstrap.BuildCache(cfg.Cache, logger)
	defer closeCache()
	caps.Set(domain.CapabilityCache, cacheLayer.Enabled())

	generators, closeGenerators := bootstrap.BuildGenerators(ctx, cfg.Generation, caps, logger)
	defer closeGenerators()
	cascade := generation.NewCascade(generators, time.Duration(cfg.Generation.TimeoutSec)*time.Second, logger)

	embedder, closeEmbedder := bootstrap.BuildImageEmbedder(cfg.Vision, cacheLayer, caps, logger)
	defer closeEmbedder()
	analyzer := bootstrap.BuildAnalyzer(cfg.Vision, caps, logger)

	searchSvc := searchuc.New(repo, cacheLayer, logger)
	chatSvc := chatuc.New(searchSvc, cascade, cacheLayer, logger)
	visualSvc := visualuc.New(embedder, analyzer, repo, cfg.Index.VisualScanBatch, logger)
	healthSvc := healthuc.New(repo, cacheLayer, caps, version.Version, env)

	logger.Info("Capabilities resolved",
		zap.Strings("generation", cascade.Providers()),
		zap.Any("capabilities", caps.Snapshot()),
	)

	server := chiTransport.NewServer(searchSvc, chatSvc, visualSvc, healthSvc, version.Version, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
