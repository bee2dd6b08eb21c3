package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tair/pos-ledger/internal/catalog/domain"
)

// GetProductQuery looks a product up by id or, when ID is empty, by code
type GetProductQuery struct {
	ID   string
	Code string
}

// GetProductHandler handles get product query
type GetProductHandler struct {
	repo domain.ProductRepository
}

// NewGetProductHandler creates a new get product handler
func NewGetProductHandler(repo domain.ProductRepository) *GetProductHandler {
	return &GetProductHandler{repo: repo}
}

// Handle executes the get product query
func (h *GetProductHandler) Handle(ctx context.Context, q GetProductQuery) (*domain.Product, error) {
	if q.ID != "" {
		return h.repo.FindByID(ctx, q.ID)
	}
	return h.repo.FindByCode(ctx, q.Code)
}

// ListProductsQuery filters the catalog. Search matches name or code.
type ListProductsQuery struct {
	Search     string
	CategoryID string
	Limit      int
	Offset     int
}

// ListProductsHandler handles list products query
type ListProductsHandler struct {
	repo domain.ProductRepository
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(repo domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{repo: repo}
}

// Handle executes the list products query
func (h *ListProductsHandler) Handle(ctx context.Context, q ListProductsQuery) ([]domain.Product, error) {
	all, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if q.CategoryID != "" && p.CategoryID != q.CategoryID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Code), search) {
			continue
		}
		out = append(out, p)
	}

	return paginate(out, q.Limit, q.Offset), nil
}

func paginate(products []domain.Product, limit, offset int) []domain.Product {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(products) {
		return []domain.Product{}
	}
	products = products[offset:]
	if limit > 0 && limit < len(products) {
		products = products[:limit]
	}
	return products
}

// LowStockQuery selects products at or below a threshold
type LowStockQuery struct {
	Threshold int
}

// LowStockHandler handles low stock query
type LowStockHandler struct {
	repo domain.ProductRepository
}

// NewLowStockHandler creates a new low stock handler
func NewLowStockHandler(repo domain.ProductRepository) *LowStockHandler {
	return &LowStockHandler{repo: repo}
}

// Handle returns low stock products, lowest quantity first
func (h *LowStockHandler) Handle(ctx context.Context, q LowStockQuery) ([]domain.Product, error) {
	all, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	out := make([]domain.Product, 0)
	for _, p := range all {
		if p.Quantity <= q.Threshold {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

// TopSellingQuery limits the best sellers list; zero means all
type TopSellingQuery struct {
	Limit int
}

// TopSellingProduct is one best seller row
type TopSellingProduct struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SoldQuantity int    `json:"soldQuantity"`
}

// TopSellingHandler handles top selling query
type TopSellingHandler struct {
	repo domain.ProductRepository
}

// NewTopSellingHandler creates a new top selling handler
func NewTopSellingHandler(repo domain.ProductRepository) *TopSellingHandler {
	return &TopSellingHandler{repo: repo}
}

// Handle returns products by sold count, highest first
func (h *TopSellingHandler) Handle(ctx context.Context, q TopSellingQuery) ([]TopSellingProduct, error) {
	all, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].SoldCount > all[j].SoldCount })
	if q.Limit > 0 && q.Limit < len(all) {
		all = all[:q.Limit]
	}

	out := make([]TopSellingProduct, 0, len(all))
	for _, p := range all {
		out = append(out, TopSellingProduct{ID: p.ID, Name: p.Name, SoldQuantity: p.SoldCount})
	}
	return out, nil
}
