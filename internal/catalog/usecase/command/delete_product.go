package command

import (
	"context"
	"fmt"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/internal/catalog/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
)

// DeleteProductCommand represents the command to delete a product
type DeleteProductCommand struct {
	ID string
}

// DeleteProductHandler handles product deletion command
type DeleteProductHandler struct {
	repo  domain.ProductRepository
	audit auditdomain.Recorder
}

// NewDeleteProductHandler creates a new delete product handler
func NewDeleteProductHandler(repo domain.ProductRepository, audit auditdomain.Recorder) *DeleteProductHandler {
	return &DeleteProductHandler{repo: repo, audit: audit}
}

// Handle executes the delete product command
func (h *DeleteProductHandler) Handle(ctx context.Context, cmd DeleteProductCommand) error {
	if cmd.ID == "" {
		return apperror.Validation("invalid product id")
	}

	product, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return err
	}

	if err := h.repo.Delete(ctx, cmd.ID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	_ = h.audit.Record(ctx, auditdomain.ActionProductDeleted, map[string]any{
		"productId":   product.ID,
		"productName": product.Name,
	})

	return nil
}
