package repository

import (
	"context"

	"github.com/tair/pos-ledger/internal/settings/domain"
	"github.com/tair/pos-ledger/pkg/storage"
)

type KVSettingsRepository struct {
	doc *storage.Collection[*domain.Settings]
}

func NewKVSettingsRepository(store storage.Store) *KVSettingsRepository {
	return &KVSettingsRepository{
		doc: storage.NewCollection[*domain.Settings](store, storage.KeySettings),
	}
}

// Get returns the stored settings, or the defaults when none were saved
func (r *KVSettingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	s, err := r.doc.Load(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	if s == nil {
		return domain.Defaults(), nil
	}
	s.Normalize()
	return *s, nil
}

func (r *KVSettingsRepository) Save(ctx context.Context, s domain.Settings) error {
	s.Normalize()
	return r.doc.Save(ctx, &s)
}
