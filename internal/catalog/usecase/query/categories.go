package query

import (
	"context"

	"github.com/tair/pos-ledger/internal/catalog/domain"
)

// ListCategoriesHandler handles list categories query
type ListCategoriesHandler struct {
	repo domain.CategoryRepository
}

// NewListCategoriesHandler creates a new list categories handler
func NewListCategoriesHandler(repo domain.CategoryRepository) *ListCategoriesHandler {
	return &ListCategoriesHandler{repo: repo}
}

// Handle returns every category
func (h *ListCategoriesHandler) Handle(ctx context.Context) ([]domain.Category, error) {
	return h.repo.FindAll(ctx)
}

// Get returns one category
func (h *ListCategoriesHandler) Get(ctx context.Context, id string) (*domain.Category, error) {
	return h.repo.FindByID(ctx, id)
}
