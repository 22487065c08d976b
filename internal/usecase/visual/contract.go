package visual

import (
	"context"

	"github.com/kailas-cloud/smartshopper/internal/domain/product"
	"github.com/kailas-cloud/smartshopper/internal/domain/vision"
)

// CandidateSource lists products that carry an image embedding, one window
// at a time, together with the total number of such products.
type CandidateSource interface {
	Candidates(ctx context.Context, category *product.Category, offset, limit int) ([]product.Product, int, error)
}

// Analyzer guesses product attributes from an image.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (vision.Analysis, error)
}
