package command

import (
	"context"
	"fmt"
	"strings"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/internal/catalog/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/idgen"
	"github.com/tair/pos-ledger/pkg/logger"
)

// SaveCategoryCommand creates a category when ID is empty, otherwise renames it
type SaveCategoryCommand struct {
	ID   string
	Name string
}

// SaveCategoryHandler handles category create and rename
type SaveCategoryHandler struct {
	repo  domain.CategoryRepository
	audit auditdomain.Recorder
}

// NewSaveCategoryHandler creates a new save category handler
func NewSaveCategoryHandler(repo domain.CategoryRepository, audit auditdomain.Recorder) *SaveCategoryHandler {
	return &SaveCategoryHandler{repo: repo, audit: audit}
}

// Handle executes the save category command
func (h *SaveCategoryHandler) Handle(ctx context.Context, cmd SaveCategoryCommand) (*domain.Category, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, apperror.Validation("category name is required")
	}

	if cmd.ID == "" {
		category := &domain.Category{ID: idgen.New(), Name: name}
		if err := h.repo.Create(ctx, category); err != nil {
			return nil, fmt.Errorf("failed to create category: %w", err)
		}
		_ = h.audit.Record(ctx, auditdomain.ActionCategoryCreated, map[string]any{
			"categoryId":   category.ID,
			"categoryName": category.Name,
		})
		return category, nil
	}

	category, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	category.Name = name
	if err := h.repo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	_ = h.audit.Record(ctx, auditdomain.ActionCategoryUpdated, map[string]any{
		"categoryId":   category.ID,
		"categoryName": category.Name,
	})
	return category, nil
}

// DeleteCategoryCommand represents the command to delete a category
type DeleteCategoryCommand struct {
	ID string
}

// DeleteCategoryHandler deletes a category and moves its products to the
// general category
type DeleteCategoryHandler struct {
	categories domain.CategoryRepository
	products   domain.ProductRepository
	audit      auditdomain.Recorder
}

// NewDeleteCategoryHandler creates a new delete category handler
func NewDeleteCategoryHandler(categories domain.CategoryRepository, products domain.ProductRepository, audit auditdomain.Recorder) *DeleteCategoryHandler {
	return &DeleteCategoryHandler{categories: categories, products: products, audit: audit}
}

// Handle executes the delete category command
func (h *DeleteCategoryHandler) Handle(ctx context.Context, cmd DeleteCategoryCommand) error {
	if cmd.ID == "" {
		return apperror.Validation("invalid category id")
	}

	category, err := h.categories.FindByID(ctx, cmd.ID)
	if err != nil {
		return err
	}

	general, err := h.categories.EnsureGeneral(ctx)
	if err != nil {
		return fmt.Errorf("failed to load general category: %w", err)
	}
	if general.ID == category.ID {
		return apperror.Validation("the general category cannot be deleted")
	}

	moved, err := h.products.ReassignCategory(ctx, category.ID, general.ID)
	if err != nil {
		return fmt.Errorf("failed to move products: %w", err)
	}

	if err := h.categories.Delete(ctx, category.ID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	logger.Info(ctx).
		Str("category_id", category.ID).
		Int("products_moved", moved).
		Msg("Category deleted")

	_ = h.audit.Record(ctx, auditdomain.ActionCategoryDeleted, map[string]any{
		"categoryId":    category.ID,
		"categoryName":  category.Name,
		"productsMoved": moved,
	})

	return nil
}
