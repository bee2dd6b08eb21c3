package repository

import (
	"context"

	"github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/pkg/storage"
)

type KVTransactionRepository struct {
	txs *storage.Collection[[]domain.Transaction]
}

func NewKVTransactionRepository(store storage.Store) *KVTransactionRepository {
	return &KVTransactionRepository{
		txs: storage.NewCollection[[]domain.Transaction](store, storage.KeyTransactions),
	}
}

func (r *KVTransactionRepository) Append(ctx context.Context, tx domain.Transaction) error {
	return r.txs.Update(ctx, func(all *[]domain.Transaction) error {
		*all = append(*all, tx)
		return nil
	})
}

func (r *KVTransactionRepository) FindAll(ctx context.Context) ([]domain.Transaction, error) {
	return r.txs.Load(ctx)
}

func (r *KVTransactionRepository) ReplaceAll(ctx context.Context, txs []domain.Transaction) error {
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return r.txs.Save(ctx, txs)
}
