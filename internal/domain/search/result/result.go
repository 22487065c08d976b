package result

import "github.com/kailas-cloud/smartshopper/internal/domain/product"

// Set is one page of ranked products.
type Set struct {
	Query    string            `json:"query"`
	Products []product.Product `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// New builds a result set. Products are kept in relevance order.
func New(query string, products []product.Product, total, page, pageSize int) Set {
	if products == nil {
		products = []product.Product{}
	}
	if total < 0 {
		total = 0
	}
	return Set{Query: query, Products: products, Total: total, Page: page, PageSize: pageSize}
}

// Empty returns a set with no products and a zero total.
func Empty(query string, page, pageSize int) Set {
	return New(query, nil, 0, page, pageSize)
}

// TotalPages returns ceil(total / page_size). It is zero iff total is zero.
func (s Set) TotalPages() int {
	if s.Total <= 0 || s.PageSize <= 0 {
		return 0
	}
	return (s.Total + s.PageSize - 1) / s.PageSize
}
