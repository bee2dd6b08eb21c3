package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/pos-ledger/internal/catalog/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
)

// AdjustStockCommand represents a manual stock correction
type AdjustStockCommand struct {
	ProductID string
	Delta     int
}

// AdjustStockHandler handles stock adjustments
type AdjustStockHandler struct {
	repo domain.ProductRepository
}

// NewAdjustStockHandler creates a new adjust stock handler
func NewAdjustStockHandler(repo domain.ProductRepository) *AdjustStockHandler {
	return &AdjustStockHandler{repo: repo}
}

// Handle executes the adjust stock command
func (h *AdjustStockHandler) Handle(ctx context.Context, cmd AdjustStockCommand) (*domain.Product, error) {
	if cmd.ProductID == "" {
		return nil, apperror.Validation("invalid product id")
	}
	if cmd.Delta == 0 {
		return nil, apperror.Validation("stock change cannot be zero")
	}

	if err := h.repo.AdjustStock(ctx, []domain.StockDelta{{ProductID: cmd.ProductID, Delta: cmd.Delta}}); err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	return h.repo.FindByID(ctx, cmd.ProductID)
}
