package repository

import (
	"context"
	"strings"

	"github.com/tair/pos-ledger/internal/catalog/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/storage"
)

type KVProductRepository struct {
	products *storage.Collection[[]domain.Product]
}

func NewKVProductRepository(store storage.Store) *KVProductRepository {
	return &KVProductRepository{
		products: storage.NewCollection[[]domain.Product](store, storage.KeyProducts),
	}
}

func indexByID(products []domain.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

func codeTaken(products []domain.Product, code, exceptID string) bool {
	for _, p := range products {
		if p.ID != exceptID && strings.EqualFold(p.Code, code) {
			return true
		}
	}
	return false
}

func (r *KVProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.products.Update(ctx, func(all *[]domain.Product) error {
		if codeTaken(*all, product.Code, product.ID) {
			return apperror.New(apperror.ErrDuplicateKey, "product code %s already exists", product.Code)
		}
		*all = append(*all, *product)
		return nil
	})
}

func (r *KVProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	all, err := r.products.Load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexByID(all, id); i >= 0 {
		return &all[i], nil
	}
	return nil, apperror.NotFound("product not found")
}

func (r *KVProductRepository) FindByCode(ctx context.Context, code string) (*domain.Product, error) {
	all, err := r.products.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if strings.EqualFold(all[i].Code, code) {
			return &all[i], nil
		}
	}
	return nil, apperror.NotFound("product not found")
}

func (r *KVProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	return r.products.Load(ctx)
}

func (r *KVProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return r.products.Update(ctx, func(all *[]domain.Product) error {
		i := indexByID(*all, product.ID)
		if i < 0 {
			return apperror.NotFound("product not found")
		}
		if codeTaken(*all, product.Code, product.ID) {
			return apperror.New(apperror.ErrDuplicateKey, "product code %s already exists", product.Code)
		}
		(*all)[i] = *product
		return nil
	})
}

func (r *KVProductRepository) Delete(ctx context.Context, id string) error {
	return r.products.Update(ctx, func(all *[]domain.Product) error {
		i := indexByID(*all, id)
		if i < 0 {
			return apperror.NotFound("product not found")
		}
		*all = append((*all)[:i], (*all)[i+1:]...)
		return nil
	})
}

func (r *KVProductRepository) AdjustStock(ctx context.Context, deltas []domain.StockDelta) error {
	return r.products.Update(ctx, func(all *[]domain.Product) error {
		// Validate against the running totals so repeated ids are summed.
		next := make(map[int]int)
		for _, d := range deltas {
			i := indexByID(*all, d.ProductID)
			if i < 0 {
				return apperror.NotFound("product %s not found", d.ProductID)
			}
			qty, seen := next[i]
			if !seen {
				qty = (*all)[i].Quantity
			}
			qty += d.Delta
			if qty < 0 {
				return apperror.New(apperror.ErrInsufficientStock,
					"insufficient stock for %s: %d available", (*all)[i].Name, (*all)[i].Quantity)
			}
			next[i] = qty
		}

		for _, d := range deltas {
			p := &(*all)[indexByID(*all, d.ProductID)]
			p.Quantity += d.Delta
			if d.Sale {
				p.SoldCount -= d.Delta
				if p.SoldCount < 0 {
					p.SoldCount = 0
				}
			}
		}
		return nil
	})
}

func (r *KVProductRepository) ReassignCategory(ctx context.Context, fromID, toID string) (int, error) {
	moved := 0
	err := r.products.Update(ctx, func(all *[]domain.Product) error {
		for i := range *all {
			if (*all)[i].CategoryID == fromID {
				(*all)[i].CategoryID = toID
				moved++
			}
		}
		return nil
	})
	return moved, err
}

func (r *KVProductRepository) ReplaceAll(ctx context.Context, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	return r.products.Save(ctx, products)
}
