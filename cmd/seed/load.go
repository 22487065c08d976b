package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/domain"
	"github.com/kailas-cloud/smartshopper/internal/domain/product"
)

const maxImageBytes = 10 << 20

// decodeProducts reads a JSON array of products. Records without an id get
// a random one; categories are normalized to their canonical form.
func decodeProducts(r io.Reader) ([]product.Product, error) {
	var raw []product.Product
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	for i := range raw {
		if strings.TrimSpace(raw[i].ID) == "" {
			raw[i].ID = uuid.NewString()
		}
		c, err := product.ParseCategory(string(raw[i].Category))
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, raw[i].ID, err)
		}
		raw[i].Category = c
	}
	return raw, nil
}

// imageFetcher downloads product images.
type imageFetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// attachEmbeddings embeds the first image of every product that has none.
// Products whose image cannot be fetched or embedded are left without one.
func attachEmbeddings(
	ctx context.Context, products []product.Product, client imageFetcher,
	embedder domain.ImageEmbedder, logger *zap.Logger,
) int {
	embedded := 0
	for i := range products {
		p := &products[i]
		if p.HasEmbedding() || len(p.ImageURLs) == 0 {
			continue
		}
		data, err := fetchImage(ctx, client, p.ImageURLs[0])
		if err != nil {
			logger.Warn("Image fetch failed", zap.String("product_id", p.ID), zap.Error(err))
			continue
		}
		vec, err := embedder.EmbedImage(ctx, data)
		if err != nil {
			logger.Warn("Image embedding failed", zap.String("product_id", p.ID), zap.Error(err))
			continue
		}
		p.ImageEmbedding = vec
		embedded++
	}
	return embedded
}

func fetchImage(ctx context.Context, client imageFetcher, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image %s exceeds %d bytes", url, maxImageBytes)
	}
	return data, nil
}
