// Package visual ranks catalog products by image similarity.
package visual

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/smartshopper/internal/domain"
	"github.com/kailas-cloud/smartshopper/internal/domain/product"
	"github.com/kailas-cloud/smartshopper/internal/domain/vision"
	"github.com/kailas-cloud/smartshopper/internal/metrics"
)

// DefaultScanBatch is how many embedded products one index round-trip
// fetches while a search scans the whole candidate set.
const DefaultScanBatch = 1000

// Options tune a single visual search.
type Options struct {
	TopK      int
	Threshold *float64
	Category  *product.Category
	Analyze   bool
}

// Hit is a ranked product.
type Hit struct {
	vision.Match
	Product product.Product `json:"product"`
}

// Result is the outcome of a visual search. Analysis is nil when it was not
// requested or not available.
type Result struct {
	Hits     []Hit            `json:"results"`
	Scanned  int              `json:"candidates_scanned"`
	Analysis *vision.Analysis `json:"analysis,omitempty"`
}

// Service embeds a query and ranks candidates against it.
type Service struct {
	embedder  domain.ImageEmbedder
	analyzer  Analyzer
	source    CandidateSource
	scanBatch int
	logger    *zap.Logger
}

// New creates a visual search service. A nil embedder makes every search
// fail with domain.ErrEmbeddingUnavailable; a nil analyzer disables analysis.
func New(
	embedder domain.ImageEmbedder, analyzer Analyzer, source CandidateSource,
	scanBatch int, logger *zap.Logger,
) *Service {
	if scanBatch <= 0 {
		scanBatch = DefaultScanBatch
	}
	return &Service{
		embedder:  embedder,
		analyzer:  analyzer,
		source:    source,
		scanBatch: scanBatch,
		logger:    logger,
	}
}

// Available reports whether image embeddings can be produced.
func (s *Service) Available() bool { return s.embedder != nil }

// SearchByImage ranks products against an uploaded image. Analysis, when
// requested, runs concurrently and never affects the ranking.
func (s *Service) SearchByImage(ctx context.Context, image []byte, opts Options) (Result, error) {
	if s.embedder == nil {
		return Result{}, domain.ErrEmbeddingUnavailable
	}
	if len(image) == 0 {
		return Result{}, fmt.Errorf("%w: empty upload", domain.ErrInvalidImage)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var analysis <-chan *vision.Analysis
	if opts.Analyze {
		analysis = s.analyze(ctx, image)
	}

	raw, err := s.embedder.EmbedImage(ctx, image)
	if err != nil {
		return Result{}, s.embedError(ctx, "image", err)
	}
	res, err := s.rank(ctx, raw, opts)
	if err != nil {
		return Result{}, err
	}

	if analysis != nil {
		select {
		case res.Analysis = <-analysis:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	return res, nil
}

// SearchByText embeds text into the image space and ranks products against it.
func (s *Service) SearchByText(ctx context.Context, text string, opts Options) (Result, error) {
	if s.embedder == nil {
		return Result{}, domain.ErrEmbeddingUnavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, errors.New("query text is required")
	}

	raw, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return Result{}, s.embedError(ctx, "text", err)
	}
	return s.rank(ctx, raw, opts)
}

func (s *Service) rank(ctx context.Context, raw []float32, opts Options) (Result, error) {
	query, err := vision.NewEmbedding(raw)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	candidates, byID, err := s.scan(ctx, opts.Category)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		s.logger.Error("Candidate retrieval failed", zap.Error(err))
		return Result{Hits: []Hit{}}, nil
	}
	metrics.VisualCandidatesScanned.Observe(float64(len(candidates)))

	threshold := DefaultThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	matches, err := Rank(ctx, query, candidates, opts.TopK, threshold)
	if err != nil {
		return Result{}, err
	}

	hits := make([]Hit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, Hit{Match: m, Product: byID[m.ID]})
	}
	return Result{Hits: hits, Scanned: len(candidates)}, nil
}

// scan pages through every embedded product of the category in windows of
// scanBatch. The offset advances by the window size so that entries skipped
// as unreadable do not shift the next window.
func (s *Service) scan(
	ctx context.Context, category *product.Category,
) ([]vision.Candidate, map[string]product.Product, error) {
	var (
		candidates []vision.Candidate
		byID       = make(map[string]product.Product)
	)
	for offset := 0; ; offset += s.scanBatch {
		page, total, err := s.source.Candidates(ctx, category, offset, s.scanBatch)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range page {
			emb, err := vision.NewEmbedding(p.ImageEmbedding)
			if err != nil {
				s.logger.Debug("Skipping product with unusable embedding",
					zap.String("product_id", p.ID), zap.Error(err))
				continue
			}
			candidates = append(candidates, vision.Candidate{ID: p.ID, Embedding: emb})
			byID[p.ID] = p.WithoutEmbedding()
		}
		if offset+s.scanBatch >= total {
			return candidates, byID, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
	}
}

// analyze starts the advisory analysis. The channel yields nil when the
// analyzer is absent or fails.
func (s *Service) analyze(ctx context.Context, image []byte) <-chan *vision.Analysis {
	out := make(chan *vision.Analysis, 1)
	if s.analyzer == nil {
		metrics.VisionAnalysisTotal.WithLabelValues("skipped").Inc()
		out <- nil
		return out
	}
	go func() {
		a, err := s.analyzer.Analyze(ctx, image)
		if err != nil {
			metrics.VisionAnalysisTotal.WithLabelValues("error").Inc()
			s.logger.Warn("Image analysis unavailable", zap.Error(err))
			out <- nil
			return
		}
		metrics.VisionAnalysisTotal.WithLabelValues("ok").Inc()
		out <- &a
	}()
	return out
}

func (s *Service) embedError(ctx context.Context, input string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, domain.ErrInvalidImage) || errors.Is(err, domain.ErrEmbeddingUnavailable) {
		return fmt.Errorf("embed %s: %w", input, err)
	}
	return fmt.Errorf("embed %s: %w: %w", input, domain.ErrEmbeddingUnavailable, err)
}
