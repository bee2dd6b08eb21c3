package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	auditrepo "github.com/tair/pos-ledger/internal/audit/repository"
	catalogdomain "github.com/tair/pos-ledger/internal/catalog/domain"
	catalogrepo "github.com/tair/pos-ledger/internal/catalog/repository"
	installmentdomain "github.com/tair/pos-ledger/internal/installment/domain"
	installmentrepo "github.com/tair/pos-ledger/internal/installment/repository"
	invoicedomain "github.com/tair/pos-ledger/internal/invoice/domain"
	saledomain "github.com/tair/pos-ledger/internal/sale/domain"
	salerepo "github.com/tair/pos-ledger/internal/sale/repository"
	settingsdomain "github.com/tair/pos-ledger/internal/settings/domain"
	settingsrepo "github.com/tair/pos-ledger/internal/settings/repository"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/storage"
)

type auditSpy struct {
	actions []string
}

func (s *auditSpy) Record(_ context.Context, actionType string, _ map[string]any) error {
	s.actions = append(s.actions, actionType)
	return nil
}

var backupTime = time.Date(2025, 7, 14, 18, 0, 0, 0, time.UTC)

func newRepos(store storage.Store) Repositories {
	return Repositories{
		Products:     catalogrepo.NewKVProductRepository(store),
		Categories:   catalogrepo.NewKVCategoryRepository(store),
		Sales:        salerepo.NewKVSaleRepository(store),
		Counter:      salerepo.NewKVInvoiceCounter(store),
		Contracts:    installmentrepo.NewKVContractRepository(store),
		Transactions: auditrepo.NewKVTransactionRepository(store),
		Settings:     settingsrepo.NewKVSettingsRepository(store),
	}
}

func seed(t *testing.T, repos Repositories) {
	t.Helper()
	ctx := context.Background()

	_, err := repos.Categories.EnsureGeneral(ctx)
	require.NoError(t, err)
	require.NoError(t, repos.Categories.Create(ctx, &catalogdomain.Category{ID: "phones", Name: "Phones"}))
	require.NoError(t, repos.Products.Create(ctx, &catalogdomain.Product{
		ID: "p1", Code: "P-1", Name: "Phone", CategoryID: "phones", Price: decimal.NewFromInt(300), Quantity: 4,
	}))
	require.NoError(t, repos.Sales.Append(ctx, &saledomain.Sale{
		Invoice:   invoicedomain.Invoice{ID: "s1", Number: "INV-250714-0017", Total: decimal.NewFromInt(300), PaymentMethod: invoicedomain.PaymentCash},
		Timestamp: backupTime,
	}))
	require.NoError(t, repos.Contracts.Create(ctx, &installmentdomain.Contract{ID: "c1", SaleID: "s2", ContractNumber: "INST-250714-0018"}))
	require.NoError(t, repos.Transactions.Append(ctx, auditdomain.Transaction{ID: "t1", ActionType: auditdomain.ActionCashSale, Timestamp: backupTime}))
	require.NoError(t, repos.Settings.Save(ctx, settingsdomain.Settings{StoreName: "Tair Mobile", StockAlert: 2}))
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := dateutil.NewFixedClock(backupTime)

	source := newRepos(storage.NewMemoryStore())
	seed(t, source)

	dir := t.TempDir()
	path, err := NewBackupHandler(source, &auditSpy{}, clock).Write(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pos-backup-2025-07-14.json"), path)

	target := newRepos(storage.NewMemoryStore())
	audit := &auditSpy{}
	require.NoError(t, NewBackupHandler(target, audit, clock).RestoreFile(ctx, path))

	products, err := target.Products.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "P-1", products[0].Code)
	assert.True(t, decimal.NewFromInt(300).Equal(products[0].Price))

	categories, err := target.Categories.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	sales, err := target.Sales.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "INV-250714-0017", sales[0].Number)

	contracts, err := target.Contracts.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, contracts, 1)

	settings, err := target.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Tair Mobile", settings.StoreName)
	assert.Equal(t, 2, settings.StockAlert)

	last, err := target.Counter.Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, 17, last)

	assert.Equal(t, []string{auditdomain.ActionBackupRestored}, audit.actions)
}

func TestRestoreRequiresCoreCollections(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(storage.NewMemoryStore())
	seed(t, repos)
	h := NewBackupHandler(repos, &auditSpy{}, dateutil.NewFixedClock(backupTime))

	_, err := Decode([]byte("{not json"))
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	b, err := Decode([]byte(`{"products": [], "settings": {"storeName": "x"}}`))
	require.NoError(t, err)
	err = h.Restore(ctx, b)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	// Nothing was replaced.
	products, err := repos.Products.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	b, err = Decode([]byte(`{"products": [], "categories": [], "settings": {"storeName": "Empty"}}`))
	require.NoError(t, err)
	require.NoError(t, h.Restore(ctx, b))

	sales, err := repos.Sales.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)

	categories, err := repos.Categories.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, catalogdomain.GeneralCategoryID, categories[0].ID)

	assert.Error(t, h.RestoreFile(ctx, filepath.Join(t.TempDir(), "missing.json")))
}
