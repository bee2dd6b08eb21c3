package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/internal/catalog/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/dateutil"
)

// UpdateProductCommand represents the command to edit a product.
// SoldCount is never edited directly.
type UpdateProductCommand struct {
	ID         string
	Code       string
	Name       string
	CategoryID string
	Price      decimal.Decimal
	Cost       decimal.Decimal
	Quantity   int
}

// UpdateProductHandler handles product update command
type UpdateProductHandler struct {
	repo       domain.ProductRepository
	categories domain.CategoryRepository
	audit      auditdomain.Recorder
	clock      dateutil.Clock
}

// NewUpdateProductHandler creates a new update product handler
func NewUpdateProductHandler(repo domain.ProductRepository, categories domain.CategoryRepository, audit auditdomain.Recorder, clock dateutil.Clock) *UpdateProductHandler {
	return &UpdateProductHandler{repo: repo, categories: categories, audit: audit, clock: clock}
}

// Handle executes the update product command
func (h *UpdateProductHandler) Handle(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	if cmd.ID == "" {
		return nil, apperror.Validation("invalid product id")
	}
	if err := validateProduct(cmd.Code, cmd.Name, cmd.Price, cmd.Cost, cmd.Quantity); err != nil {
		return nil, err
	}

	product, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	categoryID, err := resolveCategory(ctx, h.categories, cmd.CategoryID)
	if err != nil {
		return nil, err
	}

	if existing, _ := h.repo.FindByCode(ctx, cmd.Code); existing != nil && existing.ID != cmd.ID {
		return nil, apperror.New(apperror.ErrDuplicateKey, "product code %s already exists", cmd.Code)
	}

	product.Code = strings.TrimSpace(cmd.Code)
	product.Name = strings.TrimSpace(cmd.Name)
	product.CategoryID = categoryID
	product.Price = cmd.Price
	product.Cost = cmd.Cost
	product.Quantity = cmd.Quantity
	product.UpdatedAt = h.clock.Now()

	if err := h.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	_ = h.audit.Record(ctx, auditdomain.ActionProductUpdated, map[string]any{
		"productId":   product.ID,
		"productName": product.Name,
		"productCode": product.Code,
	})

	return product, nil
}
