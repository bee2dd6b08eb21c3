package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/pos-ledger/internal/settings/domain"
	"github.com/tair/pos-ledger/internal/settings/repository"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/storage"
)

func TestGetReturnsDefaultsWhenUnset(t *testing.T) {
	h := NewSettingsHandler(repository.NewKVSettingsRepository(storage.NewMemoryStore()), nil)

	s, err := h.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultStockAlert, s.StockAlert)
	assert.NotEmpty(t, s.StoreName)
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	h := NewSettingsHandler(repository.NewKVSettingsRepository(storage.NewMemoryStore()), nil)

	s, err := h.Update(ctx, UpdateSettingsCommand{
		StoreName:       "Corner Shop",
		DefaultInterest: decimal.NewFromInt(5),
		StockAlert:      0,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultStockAlert, s.StockAlert)

	got, err := h.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", got.StoreName)
	assert.True(t, got.DefaultInterest.Equal(decimal.NewFromInt(5)))

	_, err = h.Update(ctx, UpdateSettingsCommand{})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}
