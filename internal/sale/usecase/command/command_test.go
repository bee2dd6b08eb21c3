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
	catalogdomain "github.com/tair/pos-ledger/internal/catalog/domain"
	catalogrepo "github.com/tair/pos-ledger/internal/catalog/repository"
	invoicedomain "github.com/tair/pos-ledger/internal/invoice/domain"
	invoiceusecase "github.com/tair/pos-ledger/internal/invoice/usecase"
	"github.com/tair/pos-ledger/internal/sale/domain"
	"github.com/tair/pos-ledger/internal/sale/repository"
	"github.com/tair/pos-ledger/internal/sale/usecase/query"
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

type contractSpy struct {
	sales []*domain.Sale
	err   error
}

func (c *contractSpy) CreateFromSale(_ context.Context, sale *domain.Sale) (*domain.ContractRef, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.sales = append(c.sales, sale)
	return &domain.ContractRef{ID: "c-1", Number: invoicedomain.ContractNumber(sale.Number)}, nil
}

type failingSales struct {
	domain.SaleRepository
}

func (failingSales) Append(context.Context, *domain.Sale) error {
	return errors.New("disk full")
}

type fixture struct {
	clock     *dateutil.FixedClock
	products  *catalogrepo.KVProductRepository
	sales     *repository.KVSaleRepository
	counter   *repository.KVInvoiceCounter
	audit     *auditSpy
	contracts *contractSpy
	build     *invoiceusecase.BuildInvoiceHandler
	cash      *FinalizeCashSaleHandler
	credit    *FinalizeInstallmentSaleHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	f := &fixture{
		clock:     dateutil.NewFixedClock(time.Date(2025, 3, 7, 14, 30, 0, 0, time.UTC)),
		products:  catalogrepo.NewKVProductRepository(store),
		sales:     repository.NewKVSaleRepository(store),
		counter:   repository.NewKVInvoiceCounter(store),
		audit:     &auditSpy{},
		contracts: &contractSpy{},
	}
	f.build = invoiceusecase.NewBuildInvoiceHandler(f.products, f.clock)
	f.cash = NewFinalizeCashSaleHandler(f.sales, f.counter, f.products, f.audit, f.clock)
	f.credit = NewFinalizeInstallmentSaleHandler(f.sales, f.counter, f.products, f.contracts, f.audit, f.clock)
	return f
}

func (f *fixture) addProduct(t *testing.T, id string, price int64, qty int) {
	t.Helper()
	require.NoError(t, f.products.Create(context.Background(), &catalogdomain.Product{
		ID: id, Code: "C-" + id, Name: "Product " + id, Price: decimal.NewFromInt(price), Quantity: qty,
	}))
}

func (f *fixture) invoice(t *testing.T, cmd invoiceusecase.BuildInvoiceCommand) invoicedomain.Invoice {
	t.Helper()
	inv, err := f.build.Handle(context.Background(), cmd)
	require.NoError(t, err)
	return *inv
}

func TestCashSaleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := auditdomain.WithActor(context.Background(), "cashier1")
	f.addProduct(t, "p", 1000, 5)

	inv := f.invoice(t, invoiceusecase.BuildInvoiceCommand{
		Lines:         []invoiceusecase.LineRequest{{ProductID: "p", Quantity: 3}},
		DiscountType:  invoicedomain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
	})
	require.True(t, decimal.NewFromInt(2700).Equal(inv.Total))

	sale, err := f.cash.Handle(ctx, FinalizeCashSaleCommand{Invoice: inv, PaidAmount: decimal.NewFromInt(3000)})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(300).Equal(sale.Cash.Change))
	assert.Equal(t, "INV-250307-0001", sale.Number)
	assert.Equal(t, "cashier1", sale.Cashier)
	assert.True(t, sale.IsCash())

	p, err := f.products.FindByID(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Quantity)
	assert.Equal(t, 3, p.SoldCount)

	assert.Equal(t, []string{auditdomain.ActionCashSale}, f.audit.actions)

	last, err := f.counter.Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, last)
}

func TestCashSaleRejectsUnderpayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "p", 1000, 5)

	inv := f.invoice(t, invoiceusecase.BuildInvoiceCommand{Lines: []invoiceusecase.LineRequest{{ProductID: "p", Quantity: 2}}})

	_, err := f.cash.Handle(ctx, FinalizeCashSaleCommand{Invoice: inv, PaidAmount: decimal.NewFromInt(1999)})
	assert.True(t, errors.Is(err, apperror.ErrInsufficientPayment))

	p, _ := f.products.FindByID(ctx, "p")
	assert.Equal(t, 5, p.Quantity)
	all, _ := f.sales.FindAll(ctx)
	assert.Empty(t, all)
	assert.Empty(t, f.audit.actions)
}

func TestCashSaleIsAllOrNothingOnStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "a", 10, 5)
	f.addProduct(t, "b", 10, 5)

	inv := f.invoice(t, invoiceusecase.BuildInvoiceCommand{Lines: []invoiceusecase.LineRequest{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 4},
	}})

	// stock moved under the cart before checkout
	require.NoError(t, f.products.AdjustStock(ctx, []catalogdomain.StockDelta{{ProductID: "b", Delta: -3}}))

	_, err := f.cash.Handle(ctx, FinalizeCashSaleCommand{Invoice: inv, PaidAmount: decimal.NewFromInt(100)})
	assert.True(t, errors.Is(err, apperror.ErrInsufficientStock))

	a, _ := f.products.FindByID(ctx, "a")
	assert.Equal(t, 5, a.Quantity)
	last, _ := f.counter.Last(ctx)
	assert.Zero(t, last)
}

func TestFailedAppendRestoresStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "p", 10, 5)
	handler := NewFinalizeCashSaleHandler(failingSales{f.sales}, f.counter, f.products, f.audit, f.clock)

	inv := f.invoice(t, invoiceusecase.BuildInvoiceCommand{Lines: []invoiceusecase.LineRequest{{ProductID: "p", Quantity: 2}}})
	_, err := handler.Handle(ctx, FinalizeCashSaleCommand{Invoice: inv, PaidAmount: decimal.NewFromInt(20)})
	require.Error(t, err)

	p, _ := f.products.FindByID(ctx, "p")
	assert.Equal(t, 5, p.Quantity)
	assert.Zero(t, p.SoldCount)
}

func TestEmptyInvoiceIsRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.cash.Handle(context.Background(), FinalizeCashSaleCommand{PaidAmount: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestTerms(t *testing.T) {
	terms, err := Terms(decimal.NewFromInt(120000), decimal.NewFromInt(20000), 12, decimal.NewFromInt(5))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(126000).Equal(terms.TotalWithInterest))
	assert.True(t, decimal.NewFromInt(106000).Equal(terms.Remaining))
	assert.Equal(t, "8833.33", terms.Monthly.StringFixed(2))

	defaults, err := Terms(decimal.NewFromInt(1200), decimal.Zero, 0, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, DefaultPeriod, defaults.Period)
	assert.True(t, decimal.NewFromInt(100).Equal(defaults.Monthly))

	_, err = Terms(decimal.NewFromInt(100), decimal.NewFromInt(101), 12, decimal.Zero)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestInstallmentSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "tv", 60000, 3)

	inv := f.invoice(t, invoiceusecase.BuildInvoiceCommand{Lines: []invoiceusecase.LineRequest{{ProductID: "tv", Quantity: 2}}})

	_, err := f.credit.Handle(ctx, FinalizeInstallmentSaleCommand{Invoice: inv, Customer: invoicedomain.Customer{Name: "Sara"}})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	res, err := f.credit.Handle(ctx, FinalizeInstallmentSaleCommand{
		Invoice:      inv,
		Customer:     invoicedomain.Customer{Name: "Sara", Phone: "0770", Address: "Erbil"},
		DownPayment:  decimal.NewFromInt(20000),
		Period:       12,
		InterestRate: decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	assert.True(t, res.Sale.IsInstallment())
	assert.Equal(t, "INST-250307-0001", res.Contract.Number)
	assert.True(t, decimal.NewFromInt(126000).Equal(res.Sale.InstallmentDetails.TotalWithInterest))
	require.Len(t, f.contracts.sales, 1)
	assert.Equal(t, "Sara", f.contracts.sales[0].Customer.Name)

	tv, _ := f.products.FindByID(ctx, "tv")
	assert.Equal(t, 1, tv.Quantity)
	assert.Equal(t, []string{auditdomain.ActionInstallmentSale}, f.audit.actions)
}

func TestSalesQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "a", 100, 50)
	f.addProduct(t, "b", 30, 50)

	sell := func(lines ...invoiceusecase.LineRequest) {
		inv := f.invoice(t, invoiceusecase.BuildInvoiceCommand{Lines: lines})
		_, err := f.cash.Handle(ctx, FinalizeCashSaleCommand{Invoice: inv, PaidAmount: inv.Total})
		require.NoError(t, err)
	}

	sell(invoiceusecase.LineRequest{ProductID: "a", Quantity: 1})
	f.clock.Advance(24 * time.Hour)
	sell(invoiceusecase.LineRequest{ProductID: "b", Quantity: 5}, invoiceusecase.LineRequest{ProductID: "a", Quantity: 1})
	f.clock.Advance(time.Minute)
	sell(invoiceusecase.LineRequest{ProductID: "b", Quantity: 1})

	list := query.NewListSalesHandler(f.sales)
	day1 := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	sales, err := list.ByDate(ctx, day2)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, "INV-250308-0003", sales[0].Number)

	total, err := list.Total(ctx, query.ListSalesQuery{Start: day1, End: day2})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100+250+30).Equal(total))

	count, err := list.Count(ctx, query.ListSalesQuery{Start: day1, End: day1, PaymentMethod: invoicedomain.PaymentCash})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	products, err := list.ProductSales(ctx, day1, day2)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "a", products[0].ProductID)
	assert.Equal(t, 2, products[0].Quantity)
	assert.Equal(t, 6, products[1].Quantity)
	assert.True(t, decimal.NewFromInt(180).Equal(products[1].Total))

	next, err := query.NewNextInvoiceNumberHandler(f.counter, f.clock).Handle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-250308-0004", next)
}

func TestInstallmentSaleKeepsSaleWhenContractFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "tv", 60000, 3)
	f.contracts.err = errors.New("disk full")

	inv := f.invoice(t, invoiceusecase.BuildInvoiceCommand{Lines: []invoiceusecase.LineRequest{{ProductID: "tv", Quantity: 1}}})
	res, err := f.credit.Handle(ctx, FinalizeInstallmentSaleCommand{
		Invoice:  inv,
		Customer: invoicedomain.Customer{Name: "Sara", Phone: "0770"},
	})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Nil(t, res.Contract)

	stored, err := f.sales.FindByID(ctx, res.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Sale.Number, stored.Number)
}
