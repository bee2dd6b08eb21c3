package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/internal/catalog/domain"
	"github.com/tair/pos-ledger/internal/catalog/repository"
	"github.com/tair/pos-ledger/internal/catalog/usecase/query"
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

type fixture struct {
	products   *repository.KVProductRepository
	categories *repository.KVCategoryRepository
	audit      *auditSpy
	create     *CreateProductHandler
	update     *UpdateProductHandler
	delete     *DeleteProductHandler
	adjust     *AdjustStockHandler
	saveCat    *SaveCategoryHandler
	deleteCat  *DeleteCategoryHandler
}

func newFixture() *fixture {
	store := storage.NewMemoryStore()
	clock := dateutil.NewFixedClock(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC))
	products := repository.NewKVProductRepository(store)
	categories := repository.NewKVCategoryRepository(store)
	audit := &auditSpy{}
	return &fixture{
		products:   products,
		categories: categories,
		audit:      audit,
		create:     NewCreateProductHandler(products, categories, audit, clock),
		update:     NewUpdateProductHandler(products, categories, audit, clock),
		delete:     NewDeleteProductHandler(products, audit),
		adjust:     NewAdjustStockHandler(products),
		saveCat:    NewSaveCategoryHandler(categories, audit),
		deleteCat:  NewDeleteCategoryHandler(categories, products, audit),
	}
}

func (f *fixture) mustCreate(t *testing.T, code string, price int64, qty int, categoryID string) *domain.Product {
	t.Helper()
	p, err := f.create.Handle(context.Background(), CreateProductCommand{
		Code:       code,
		Name:       "Product " + code,
		CategoryID: categoryID,
		Price:      decimal.NewFromInt(price),
		Cost:       decimal.NewFromInt(price / 2),
		Quantity:   qty,
	})
	require.NoError(t, err)
	return p
}

func TestCreateProductDefaultsToGeneralCategory(t *testing.T) {
	f := newFixture()
	p := f.mustCreate(t, "P-1", 1000, 5, "")

	assert.Equal(t, domain.GeneralCategoryID, p.CategoryID)
	assert.Zero(t, p.SoldCount)
	assert.Equal(t, []string{auditdomain.ActionProductCreated}, f.audit.actions)
}

func TestCreateProductRejectsDuplicateCode(t *testing.T) {
	f := newFixture()
	f.mustCreate(t, "P-1", 1000, 5, "")

	_, err := f.create.Handle(context.Background(), CreateProductCommand{Code: "p-1", Name: "Other", Quantity: 1})
	assert.True(t, errors.Is(err, apperror.ErrDuplicateKey))
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []CreateProductCommand{
		{Name: "No code", Quantity: 1},
		{Code: "X", Quantity: 1},
		{Code: "X", Name: "Neg price", Price: decimal.NewFromInt(-1)},
		{Code: "X", Name: "Neg qty", Quantity: -1},
		{Code: "X", Name: "Bad category", CategoryID: "missing"},
	}
	for _, cmd := range cases {
		_, err := f.create.Handle(ctx, cmd)
		assert.Error(t, err, "%+v", cmd)
	}
}

func TestUpdateProductKeepsSoldCount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.mustCreate(t, "P-1", 1000, 5, "")
	require.NoError(t, f.products.AdjustStock(ctx, []domain.StockDelta{{ProductID: p.ID, Delta: -2, Sale: true}}))

	updated, err := f.update.Handle(ctx, UpdateProductCommand{
		ID: p.ID, Code: "P-1", Name: "Renamed", Price: decimal.NewFromInt(1200), Quantity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.SoldCount)
	assert.Equal(t, 10, updated.Quantity)

	other := f.mustCreate(t, "P-2", 10, 1, "")
	_, err = f.update.Handle(ctx, UpdateProductCommand{ID: other.ID, Code: "P-1", Name: "Clash"})
	assert.True(t, errors.Is(err, apperror.ErrDuplicateKey))
}

func TestAdjustStockIsAllOrNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.mustCreate(t, "A", 100, 5, "")
	b := f.mustCreate(t, "B", 100, 1, "")

	err := f.products.AdjustStock(ctx, []domain.StockDelta{
		{ProductID: a.ID, Delta: -3, Sale: true},
		{ProductID: b.ID, Delta: -2, Sale: true},
	})
	assert.True(t, errors.Is(err, apperror.ErrInsufficientStock))

	gotA, _ := f.products.FindByID(ctx, a.ID)
	gotB, _ := f.products.FindByID(ctx, b.ID)
	assert.Equal(t, 5, gotA.Quantity)
	assert.Equal(t, 1, gotB.Quantity)

	// repeated ids are validated on their sum
	err = f.products.AdjustStock(ctx, []domain.StockDelta{
		{ProductID: a.ID, Delta: -3},
		{ProductID: a.ID, Delta: -3},
	})
	assert.True(t, errors.Is(err, apperror.ErrInsufficientStock))

	restocked, err := f.adjust.Handle(ctx, AdjustStockCommand{ProductID: b.ID, Delta: 4})
	require.NoError(t, err)
	assert.Equal(t, 5, restocked.Quantity)
	assert.Zero(t, restocked.SoldCount)
}

func TestDeleteCategoryMovesProductsToGeneral(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	phones, err := f.saveCat.Handle(ctx, SaveCategoryCommand{Name: "Phones"})
	require.NoError(t, err)
	p := f.mustCreate(t, "PH-1", 500, 2, phones.ID)

	_, err = f.saveCat.Handle(ctx, SaveCategoryCommand{Name: " phones "})
	assert.True(t, errors.Is(err, apperror.ErrDuplicateKey))

	// general category removed earlier is recreated on demand
	require.NoError(t, f.categories.ReplaceAll(ctx, []domain.Category{*phones}))

	require.NoError(t, f.deleteCat.Handle(ctx, DeleteCategoryCommand{ID: phones.ID}))

	moved, err := f.products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GeneralCategoryID, moved.CategoryID)

	all, err := f.categories.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.GeneralCategoryName, all[0].Name)

	err = f.deleteCat.Handle(ctx, DeleteCategoryCommand{ID: domain.GeneralCategoryID})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.mustCreate(t, "P-1", 1000, 5, "")

	require.NoError(t, f.delete.Handle(ctx, DeleteProductCommand{ID: p.ID}))
	err := f.delete.Handle(ctx, DeleteProductCommand{ID: p.ID})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestQueries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.mustCreate(t, "KB-01", 100, 1, "")
	f.mustCreate(t, "MS-01", 50, 9, "")
	f.mustCreate(t, "KB-02", 120, 3, "")
	require.NoError(t, f.products.AdjustStock(ctx, []domain.StockDelta{{ProductID: a.ID, Delta: -1, Sale: true}}))

	list, err := query.NewListProductsHandler(f.products).Handle(ctx, query.ListProductsQuery{Search: "kb"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	low, err := query.NewLowStockHandler(f.products).Handle(ctx, query.LowStockQuery{Threshold: 5})
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "KB-01", low[0].Code)
	assert.Equal(t, 0, low[0].Quantity)

	top, err := query.NewTopSellingHandler(f.products).Handle(ctx, query.TopSellingQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, a.ID, top[0].ID)
	assert.Equal(t, 1, top[0].SoldQuantity)

	byCode, err := query.NewGetProductHandler(f.products).Handle(ctx, query.GetProductQuery{Code: "ms-01"})
	require.NoError(t, err)
	assert.Equal(t, 9, byCode.Quantity)
}
