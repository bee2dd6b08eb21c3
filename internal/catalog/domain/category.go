package domain

import "context"

// The general category receives products of deleted categories
const (
	GeneralCategoryID   = "default"
	GeneralCategoryName = "General"
)

// Category groups products
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GeneralCategory returns the built-in fallback category
func GeneralCategory() Category {
	return Category{ID: GeneralCategoryID, Name: GeneralCategoryName}
}

// CategoryRepository defines the contract for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, id string) (*Category, error)
	FindAll(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id string) error
	EnsureGeneral(ctx context.Context) (*Category, error)
	ReplaceAll(ctx context.Context, categories []Category) error
}
