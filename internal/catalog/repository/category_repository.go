package repository

import (
	"context"
	"strings"

	"github.com/tair/pos-ledger/internal/catalog/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/storage"
)

// KVCategoryRepository starts with the general category when nothing is stored
type KVCategoryRepository struct {
	categories *storage.Collection[[]domain.Category]
}

func NewKVCategoryRepository(store storage.Store) *KVCategoryRepository {
	return &KVCategoryRepository{
		categories: storage.NewCollection[[]domain.Category](store, storage.KeyCategories),
	}
}

func seeded(all *[]domain.Category) {
	if *all == nil {
		*all = []domain.Category{domain.GeneralCategory()}
	}
}

func nameTaken(all []domain.Category, name, exceptID string) bool {
	for _, c := range all {
		if c.ID != exceptID && strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

func (r *KVCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return r.categories.Update(ctx, func(all *[]domain.Category) error {
		seeded(all)
		if nameTaken(*all, category.Name, category.ID) {
			return apperror.New(apperror.ErrDuplicateKey, "category %s already exists", category.Name)
		}
		*all = append(*all, *category)
		return nil
	})
}

func (r *KVCategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, apperror.NotFound("category not found")
}

func (r *KVCategoryRepository) FindAll(ctx context.Context) ([]domain.Category, error) {
	all, err := r.categories.Load(ctx)
	if err != nil {
		return nil, err
	}
	seeded(&all)
	return all, nil
}

func (r *KVCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	return r.categories.Update(ctx, func(all *[]domain.Category) error {
		seeded(all)
		if nameTaken(*all, category.Name, category.ID) {
			return apperror.New(apperror.ErrDuplicateKey, "category %s already exists", category.Name)
		}
		for i := range *all {
			if (*all)[i].ID == category.ID {
				(*all)[i] = *category
				return nil
			}
		}
		return apperror.NotFound("category not found")
	})
}

func (r *KVCategoryRepository) Delete(ctx context.Context, id string) error {
	return r.categories.Update(ctx, func(all *[]domain.Category) error {
		seeded(all)
		for i := range *all {
			if (*all)[i].ID == id {
				*all = append((*all)[:i], (*all)[i+1:]...)
				return nil
			}
		}
		return apperror.NotFound("category not found")
	})
}

// EnsureGeneral returns the general category, creating it when absent
func (r *KVCategoryRepository) EnsureGeneral(ctx context.Context) (*domain.Category, error) {
	general := domain.GeneralCategory()
	err := r.categories.Update(ctx, func(all *[]domain.Category) error {
		seeded(all)
		for _, c := range *all {
			if c.ID == general.ID || strings.EqualFold(c.Name, general.Name) {
				general = c
				return nil
			}
		}
		*all = append(*all, general)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &general, nil
}

func (r *KVCategoryRepository) ReplaceAll(ctx context.Context, categories []domain.Category) error {
	if categories == nil {
		categories = []domain.Category{}
	}
	return r.categories.Save(ctx, categories)
}
