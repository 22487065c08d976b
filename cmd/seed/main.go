// Command seed loads a JSON product catalog into the search index.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/bootstrap"
	"github.com/kailas-cloud/smartshopper/internal/config"
	dbRedis "github.com/kailas-cloud/smartshopper/internal/db/redis"
	"github.com/kailas-cloud/smartshopper/internal/domain"
	logpkg "github.com/kailas-cloud/smartshopper/internal/logger"
	productrepo "github.com/kailas-cloud/smartshopper/internal/repository/product"
	"github.com/kailas-cloud/smartshopper/internal/usecase/catalog"
)

func main() {
	file := flag.String("file", "data/products.json", "JSON array of products")
	embed := flag.Bool("embed", false, "embed product images with the configured vision provider")
	batch := flag.Int("batch", 500, "products per pipelined write")
	flag.Parse()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	f, err := os.Open(filepath.Clean(*file))
	if err != nil {
		logger.Fatal("Failed to open catalog", zap.Error(err))
	}
	products, err := decodeProducts(f)
	_ = f.Close()
	if err != nil {
		logger.Fatal("Failed to read catalog", zap.Error(err))
	}
	logger.Info("Catalog loaded", zap.String("file", *file), zap.Int("products", len(products)))

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

	cacheLayer, closeCache := bootstrap.BuildCache(cfg.Cache, logger)
	defer closeCache()

	if *embed {
		caps := domain.NewCapabilities()
		embedder, closeEmbedder := bootstrap.BuildImageEmbedder(cfg.Vision, cacheLayer, caps, logger)
		defer closeEmbedder()
		if embedder == nil {
			logger.Fatal("Image embedding requested but no vision provider is usable")
		}
		n := attachEmbeddings(ctx, products, &http.Client{Timeout: 30 * time.Second}, embedder, logger)
		logger.Info("Image embeddings attached", zap.Int("embedded", n))
	}

	repo := productrepo.New(store, cfg.Index.Name, cfg.Index.KeyPrefix, logger)
	svc := catalog.New(repo, cacheLayer, logger).WithBatchSize(*batch)

	created, err := svc.EnsureIndex(ctx)
	if err != nil {
		logger.Fatal("Failed to ensure product index", zap.Error(err))
	}
	if created {
		logger.Info("Product index created", zap.String("index", cfg.Index.Name))
	}

	written, err := svc.IndexMany(ctx, products)
	if err != nil {
		logger.Fatal("Seeding failed", zap.Int("written", written), zap.Error(err))
	}
	logger.Info("Seeding complete", zap.Int("written", written))
}
