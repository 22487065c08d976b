package chi

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/smartshopper/internal/domain/product"
	"github.com/kailas-cloud/smartshopper/internal/domain/search/request"
	"github.com/kailas-cloud/smartshopper/internal/domain/search/result"
	"github.com/kailas-cloud/smartshopper/internal/domain/vision"
	visualuc "github.com/kailas-cloud/smartshopper/internal/usecase/visual"
)

// Request limits.
const (
	MaxMessageLength = 2000
	MaxTopK          = 50
	MaxUploadBytes   = 10 << 20
)

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query       string   `json:"query"`
	Category    *string  `json:"category,omitempty"`
	Brand       *string  `json:"brand,omitempty"`
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	MinRating   *float64 `json:"min_rating,omitempty"`
	InStockOnly *bool    `json:"in_stock_only,omitempty"`
	Page        *int     `json:"page,omitempty"`
	PageSize    *int     `json:"page_size,omitempty"`
}

// SearchResponse is one page of ranked products.
type SearchResponse struct {
	Query      string            `json:"query"`
	Products   []product.Product `json:"products"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
}

// TextVisualRequest is the body of POST /api/visual-search/text.
type TextVisualRequest struct {
	Query     string   `json:"query"`
	TopK      *int     `json:"top_k,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Category  *string  `json:"category,omitempty"`
}

// VisualResponse lists similarity matches.
type VisualResponse struct {
	Results           []visualuc.Hit   `json:"results"`
	Total             int              `json:"total"`
	CandidatesScanned int              `json:"candidates_scanned"`
	Analysis          *vision.Analysis `json:"analysis,omitempty"`
}

// APIInfo is the body of GET /api.
type APIInfo struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// descriptorFromRequest applies boundary defaults: page 1, 20 per page,
// in-stock items only.
func descriptorFromRequest(req SearchRequest) (request.Descriptor, error) {
	p := request.Params{
		Query:       strings.TrimSpace(req.Query),
		Category:    req.Category,
		Brand:       req.Brand,
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		MinRating:   req.MinRating,
		InStockOnly: true,
		Page:        request.DefaultPage,
		PageSize:    request.DefaultPageSize,
	}
	if req.InStockOnly != nil {
		p.InStockOnly = *req.InStockOnly
	}
	if req.Page != nil {
		p.Page = *req.Page
	}
	if req.PageSize != nil {
		p.PageSize = *req.PageSize
	}

	d, err := request.New(p)
	if err != nil {
		return request.Descriptor{}, fmt.Errorf("build search request: %w", err)
	}
	return d, nil
}

func searchResponseFrom(s result.Set) SearchResponse {
	return SearchResponse{
		Query:      s.Query,
		Products:   s.Products,
		Total:      s.Total,
		Page:       s.Page,
		PageSize:   s.PageSize,
		TotalPages: s.TotalPages(),
	}
}

// visualOptions validates the optional tuning knobs shared by both visual endpoints.
func visualOptions(topK *int, threshold *float64, category *string, analyze bool) (visualuc.Options, error) {
	opts := visualuc.Options{TopK: visualuc.DefaultTopK, Analyze: analyze}
	if topK != nil {
		if *topK < 1 || *topK > MaxTopK {
			return visualuc.Options{}, fmt.Errorf("top_k must be between 1 and %d", MaxTopK)
		}
		opts.TopK = *topK
	}
	if threshold != nil {
		if *threshold < -1 || *threshold > 1 {
			return visualuc.Options{}, fmt.Errorf("threshold must be between -1 and 1")
		}
		t := *threshold
		opts.Threshold = &t
	}
	if category != nil && *category != "" {
		c, err := product.ParseCategory(*category)
		if err != nil {
			return visualuc.Options{}, err
		}
		opts.Category = &c
	}
	return opts, nil
}

func visualResponseFrom(r visualuc.Result) VisualResponse {
	hits := r.Hits
	if hits == nil {
		hits = []visualuc.Hit{}
	}
	return VisualResponse{
		Results:           hits,
		Total:             len(hits),
		CandidatesScanned: r.Scanned,
		Analysis:          r.Analysis,
	}
}
