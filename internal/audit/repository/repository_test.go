package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/pkg/storage"
)

func TestKVTransactionRepositoryAppends(t *testing.T) {
	ctx := context.Background()
	repo := NewKVTransactionRepository(storage.NewMemoryStore())

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, repo.Append(ctx, domain.Transaction{ID: "a", ActionType: domain.ActionCashSale}))
	require.NoError(t, repo.Append(ctx, domain.Transaction{ID: "b", ActionType: domain.ActionUserCreated}))

	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
}

func TestGormArchiveIgnoresRedelivery(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	archive := NewGormArchive(db)
	require.NoError(t, archive.AutoMigrate())

	ctx := context.Background()
	tx := domain.Transaction{
		ID:         "tx-1",
		Timestamp:  time.Date(2025, 7, 14, 10, 0, 0, 0, time.UTC),
		ActionType: domain.ActionInstallmentPayment,
		User:       "cashier",
		Details:    map[string]any{"paymentAmount": "250.00"},
	}
	require.NoError(t, archive.Store(ctx, tx))
	require.NoError(t, archive.Store(ctx, tx))
	require.NoError(t, archive.Store(ctx, domain.Transaction{ID: "tx-2", Timestamp: tx.Timestamp, ActionType: domain.ActionCashSale}))

	got, err := archive.FindByAction(ctx, domain.ActionInstallmentPayment)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cashier", got[0].User)
	assert.Equal(t, "250.00", got[0].Details["paymentAmount"])
}
