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
	"github.com/tair/pos-ledger/pkg/idgen"
)

// CreateProductCommand represents the command to create a new product
type CreateProductCommand struct {
	Code       string
	Name       string
	CategoryID string
	Price      decimal.Decimal
	Cost       decimal.Decimal
	Quantity   int
}

func validateProduct(code, name string, price, cost decimal.Decimal, quantity int) error {
	if strings.TrimSpace(code) == "" {
		return apperror.Validation("product code is required")
	}
	if strings.TrimSpace(name) == "" {
		return apperror.Validation("product name is required")
	}
	if price.IsNegative() {
		return apperror.Validation("price cannot be negative")
	}
	if cost.IsNegative() {
		return apperror.Validation("cost cannot be negative")
	}
	if quantity < 0 {
		return apperror.Validation("quantity cannot be negative")
	}
	return nil
}

// CreateProductHandler handles product creation command
type CreateProductHandler struct {
	repo       domain.ProductRepository
	categories domain.CategoryRepository
	audit      auditdomain.Recorder
	clock      dateutil.Clock
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(repo domain.ProductRepository, categories domain.CategoryRepository, audit auditdomain.Recorder, clock dateutil.Clock) *CreateProductHandler {
	return &CreateProductHandler{repo: repo, categories: categories, audit: audit, clock: clock}
}

// Handle executes the create product command
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	if err := validateProduct(cmd.Code, cmd.Name, cmd.Price, cmd.Cost, cmd.Quantity); err != nil {
		return nil, err
	}

	categoryID, err := resolveCategory(ctx, h.categories, cmd.CategoryID)
	if err != nil {
		return nil, err
	}

	// Check if code already exists
	if existing, _ := h.repo.FindByCode(ctx, cmd.Code); existing != nil {
		return nil, apperror.New(apperror.ErrDuplicateKey, "product code %s already exists", cmd.Code)
	}

	now := h.clock.Now()
	product := &domain.Product{
		ID:         idgen.New(),
		Code:       strings.TrimSpace(cmd.Code),
		Name:       strings.TrimSpace(cmd.Name),
		CategoryID: categoryID,
		Price:      cmd.Price,
		Cost:       cmd.Cost,
		Quantity:   cmd.Quantity,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	_ = h.audit.Record(ctx, auditdomain.ActionProductCreated, map[string]any{
		"productId":   product.ID,
		"productName": product.Name,
		"productCode": product.Code,
	})

	return product, nil
}

// resolveCategory defaults an empty id to the general category and checks
// that any other id exists
func resolveCategory(ctx context.Context, categories domain.CategoryRepository, id string) (string, error) {
	if id == "" {
		general, err := categories.EnsureGeneral(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to load general category: %w", err)
		}
		return general.ID, nil
	}
	if _, err := categories.FindByID(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}
