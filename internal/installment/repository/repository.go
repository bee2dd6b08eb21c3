package repository

import (
	"context"

	"github.com/tair/pos-ledger/internal/installment/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/storage"
)

type KVContractRepository struct {
	contracts *storage.Collection[[]domain.Contract]
}

func NewKVContractRepository(store storage.Store) *KVContractRepository {
	return &KVContractRepository{
		contracts: storage.NewCollection[[]domain.Contract](store, storage.KeyInstallmentContracts),
	}
}

func (r *KVContractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	return r.contracts.Update(ctx, func(all *[]domain.Contract) error {
		for _, c := range *all {
			if c.SaleID == contract.SaleID {
				return apperror.New(apperror.ErrDuplicateKey, "sale %s already has a contract", contract.SaleID)
			}
		}
		*all = append(*all, *contract)
		return nil
	})
}

func (r *KVContractRepository) FindByID(ctx context.Context, id string) (*domain.Contract, error) {
	all, err := r.contracts.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, apperror.NotFound("contract not found")
}

func (r *KVContractRepository) FindAll(ctx context.Context) ([]domain.Contract, error) {
	all, err := r.contracts.Load(ctx)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []domain.Contract{}
	}
	return all, nil
}

func (r *KVContractRepository) Mutate(ctx context.Context, fn func(contracts []domain.Contract) error) error {
	return r.contracts.Update(ctx, func(all *[]domain.Contract) error {
		return fn(*all)
	})
}

func (r *KVContractRepository) ReplaceAll(ctx context.Context, contracts []domain.Contract) error {
	if contracts == nil {
		contracts = []domain.Contract{}
	}
	return r.contracts.Save(ctx, contracts)
}
