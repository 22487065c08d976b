package chi

import (
	"context"

	domchat "github.com/kailas-cloud/smartshopper/internal/domain/chat"
	"github.com/kailas-cloud/smartshopper/internal/domain/product"
	"github.com/kailas-cloud/smartshopper/internal/domain/search/request"
	"github.com/kailas-cloud/smartshopper/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/smartshopper/internal/usecase/health"
	visualuc "github.com/kailas-cloud/smartshopper/internal/usecase/visual"
)

// SearchService answers structured product searches and detail lookups.
type SearchService interface {
	Search(ctx context.Context, d request.Descriptor) (result.Set, error)
	Product(ctx context.Context, id string) (product.Product, error)
}

// ChatService answers one conversational turn. It never fails.
type ChatService interface {
	Chat(ctx context.Context, turn domchat.Turn) domchat.Reply
}

// VisualService ranks products by image similarity.
type VisualService interface {
	Available() bool
	SearchByImage(ctx context.Context, image []byte, opts visualuc.Options) (visualuc.Result, error)
	SearchByText(ctx context.Context, text string, opts visualuc.Options) (visualuc.Result, error)
}

// HealthService reports dependency status.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
