package repository

import (
	"context"

	"github.com/tair/pos-ledger/internal/sale/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/storage"
)

type KVSaleRepository struct {
	sales *storage.Collection[[]domain.Sale]
}

func NewKVSaleRepository(store storage.Store) *KVSaleRepository {
	return &KVSaleRepository{
		sales: storage.NewCollection[[]domain.Sale](store, storage.KeySales),
	}
}

func (r *KVSaleRepository) Append(ctx context.Context, sale *domain.Sale) error {
	return r.sales.Update(ctx, func(all *[]domain.Sale) error {
		*all = append(*all, *sale)
		return nil
	})
}

func (r *KVSaleRepository) FindByID(ctx context.Context, id string) (*domain.Sale, error) {
	all, err := r.sales.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, apperror.NotFound("sale not found")
}

func (r *KVSaleRepository) FindAll(ctx context.Context) ([]domain.Sale, error) {
	all, err := r.sales.Load(ctx)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []domain.Sale{}
	}
	return all, nil
}

func (r *KVSaleRepository) ReplaceAll(ctx context.Context, sales []domain.Sale) error {
	if sales == nil {
		sales = []domain.Sale{}
	}
	return r.sales.Save(ctx, sales)
}

// KVInvoiceCounter keeps the sequence as a bare JSON number
type KVInvoiceCounter struct {
	last *storage.Collection[int]
}

func NewKVInvoiceCounter(store storage.Store) *KVInvoiceCounter {
	return &KVInvoiceCounter{
		last: storage.NewCollection[int](store, storage.KeyLastInvoiceNumber),
	}
}

func (c *KVInvoiceCounter) Last(ctx context.Context) (int, error) {
	return c.last.Load(ctx)
}

func (c *KVInvoiceCounter) Reserve(ctx context.Context) (int, error) {
	var next int
	err := c.last.Update(ctx, func(n *int) error {
		*n++
		next = *n
		return nil
	})
	return next, err
}

func (c *KVInvoiceCounter) Raise(ctx context.Context, n int) error {
	return c.last.Update(ctx, func(last *int) error {
		if n > *last {
			*last = n
		}
		return nil
	})
}
