package query

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	auditrepo "github.com/tair/pos-ledger/internal/audit/repository"
	auditcommand "github.com/tair/pos-ledger/internal/audit/usecase/command"
	auditquery "github.com/tair/pos-ledger/internal/audit/usecase/query"
	catalogdomain "github.com/tair/pos-ledger/internal/catalog/domain"
	catalogrepo "github.com/tair/pos-ledger/internal/catalog/repository"
	installmentdomain "github.com/tair/pos-ledger/internal/installment/domain"
	installmentrepo "github.com/tair/pos-ledger/internal/installment/repository"
	installmentcommand "github.com/tair/pos-ledger/internal/installment/usecase/command"
	installmentquery "github.com/tair/pos-ledger/internal/installment/usecase/query"
	invoicedomain "github.com/tair/pos-ledger/internal/invoice/domain"
	saledomain "github.com/tair/pos-ledger/internal/sale/domain"
	salerepo "github.com/tair/pos-ledger/internal/sale/repository"
	salequery "github.com/tair/pos-ledger/internal/sale/usecase/query"
	settingsdomain "github.com/tair/pos-ledger/internal/settings/domain"
	settingsrepo "github.com/tair/pos-ledger/internal/settings/repository"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/storage"
)

var today = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

type fixture struct {
	clock     *dateutil.FixedClock
	products  *catalogrepo.KVProductRepository
	sales     *salerepo.KVSaleRepository
	contracts *installmentrepo.KVContractRepository
	settings  *settingsrepo.KVSettingsRepository
	audit     *auditcommand.RecordTransactionHandler
	auditLog  *auditquery.ListTransactionsHandler
	saleList  *salequery.ListSalesHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	clock := dateutil.NewFixedClock(today)
	txs := auditrepo.NewKVTransactionRepository(store)
	sales := salerepo.NewKVSaleRepository(store)
	return &fixture{
		clock:     clock,
		products:  catalogrepo.NewKVProductRepository(store),
		sales:     sales,
		contracts: installmentrepo.NewKVContractRepository(store),
		settings:  settingsrepo.NewKVSettingsRepository(store),
		audit:     auditcommand.NewRecordTransactionHandler(txs, nil, clock),
		auditLog:  auditquery.NewListTransactionsHandler(txs),
		saleList:  salequery.NewListSalesHandler(sales),
	}
}

func (f *fixture) sale(t *testing.T, id string, at time.Time, method invoicedomain.PaymentMethod, productID string, qty int, price int64) {
	t.Helper()
	total := decimal.NewFromInt(price * int64(qty))
	require.NoError(t, f.sales.Append(context.Background(), &saledomain.Sale{
		Invoice: invoicedomain.Invoice{
			ID:            id,
			Number:        "INV-" + id,
			Date:          at,
			Items:         []invoicedomain.Item{{ProductID: productID, Name: productID, Price: decimal.NewFromInt(price), Quantity: qty, Total: total}},
			Subtotal:      total,
			Total:         total,
			PaymentMethod: method,
		},
		Timestamp: at,
	}))
}

func (f *fixture) product(t *testing.T, id string, qty int, price, cost int64) {
	t.Helper()
	require.NoError(t, f.products.Create(context.Background(), &catalogdomain.Product{
		ID: id, Code: id, Name: id, Price: decimal.NewFromInt(price), Cost: decimal.NewFromInt(cost), Quantity: qty,
	}))
}

func TestSalesReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	yesterday := today.AddDate(0, 0, -1)

	f.sale(t, "1", yesterday, invoicedomain.PaymentCash, "a", 2, 100)
	f.sale(t, "2", today, invoicedomain.PaymentInstallment, "b", 1, 500)
	f.sale(t, "3", today.Add(time.Hour), invoicedomain.PaymentCash, "a", 1, 100)
	f.sale(t, "4", today.AddDate(0, 0, 1), invoicedomain.PaymentCash, "a", 9, 100)

	report, err := NewSalesReportHandler(f.saleList).Handle(ctx, yesterday, today)
	require.NoError(t, err)

	assert.Equal(t, 3, report.InvoiceCount)
	assert.True(t, decimal.NewFromInt(800).Equal(report.TotalSales))
	assert.True(t, decimal.NewFromInt(300).Equal(report.CashTotal))
	assert.True(t, decimal.NewFromInt(500).Equal(report.InstallmentTotal))
	require.Len(t, report.Products, 2)
	assert.Equal(t, "b", report.Products[0].ProductID)
	assert.Equal(t, 3, report.Products[1].Quantity)
	assert.Equal(t, "3", report.Invoices[0].ID)

	_, err = NewSalesReportHandler(f.saleList).Handle(ctx, today, yesterday)
	assert.Error(t, err)
}

func TestInventoryReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.settings.Save(ctx, settingsdomain.Settings{StockAlert: 3}))

	f.product(t, "a", 10, 15, 10)
	f.product(t, "b", 2, 100, 60)
	f.product(t, "c", 0, 40, 30)

	report, err := NewInventoryReportHandler(f.products, f.settings).Handle(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, report.ProductCount)
	assert.Equal(t, 12, report.TotalUnits)
	assert.True(t, decimal.NewFromInt(350).Equal(report.ValueAtPrice))
	assert.True(t, decimal.NewFromInt(220).Equal(report.ValueAtCost))
	assert.True(t, decimal.NewFromInt(130).Equal(report.ExpectedProfit))
	require.Len(t, report.LowStock, 2)
	assert.Equal(t, "c", report.LowStock[0].ID)
}

func (f *fixture) contract(t *testing.T, id string, start time.Time, status installmentdomain.Status) {
	t.Helper()
	require.NoError(t, f.contracts.Create(context.Background(), &installmentdomain.Contract{
		ID:              id,
		SaleID:          "sale-" + id,
		ContractNumber:  "INST-" + id,
		TotalAmount:     decimal.NewFromInt(1000),
		DownPayment:     decimal.NewFromInt(100),
		RemainingAmount: decimal.NewFromInt(900),
		OriginalPeriod:  9,
		MonthlyAmount:   decimal.NewFromInt(100),
		StartDate:       start,
		NextPaymentDate: dateutil.AddMonths(start, 1),
		PaymentHistory:  []installmentdomain.Payment{{ID: id + "-down", Amount: decimal.NewFromInt(100), Date: start}},
		Status:          status,
	}))
}

func TestInstallmentsReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.contract(t, "old", today.AddDate(0, -3, 0), installmentdomain.StatusActive)
	f.contract(t, "new", today.AddDate(0, 0, -2), installmentdomain.StatusActive)
	f.contract(t, "done", today.AddDate(0, -1, 0), installmentdomain.StatusCompleted)

	h := NewInstallmentsReportHandler(f.contracts, f.clock)

	all, err := h.Handle(ctx, InstallmentsReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.ContractCount)
	assert.True(t, decimal.NewFromInt(3000).Equal(all.TotalAmount))
	assert.True(t, decimal.NewFromInt(300).Equal(all.TotalPaid))
	assert.True(t, decimal.NewFromInt(2700).Equal(all.TotalRemaining))
	assert.Equal(t, "new", all.Contracts[0].ID)

	// Stored as active but overdue by two months.
	late, err := h.Handle(ctx, InstallmentsReportQuery{Status: "late"})
	require.NoError(t, err)
	require.Len(t, late.Contracts, 1)
	assert.Equal(t, "old", late.Contracts[0].ID)

	active, err := h.Handle(ctx, InstallmentsReportQuery{Status: "active"})
	require.NoError(t, err)
	require.Len(t, active.Contracts, 1)
	assert.Equal(t, "new", active.Contracts[0].ID)

	ranged, err := h.Handle(ctx, InstallmentsReportQuery{Start: today.AddDate(0, 0, -40), End: today})
	require.NoError(t, err)
	assert.Equal(t, 2, ranged.ContractCount)

	_, err = h.Handle(ctx, InstallmentsReportQuery{Status: "bogus"})
	assert.Error(t, err)
}

func TestDailyReportCountsPaymentsFromAuditLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.sale(t, "1", today, invoicedomain.PaymentCash, "a", 2, 100)
	f.sale(t, "2", today, invoicedomain.PaymentInstallment, "b", 1, 500)

	require.NoError(t, f.audit.Record(ctx, auditdomain.ActionInstallmentPayment, map[string]any{"paymentAmount": "150.50"}))
	require.NoError(t, f.audit.Record(ctx, auditdomain.ActionInstallmentPayment, map[string]any{"paymentAmount": 49.5}))
	require.NoError(t, f.audit.Record(ctx, auditdomain.ActionCashSale, map[string]any{"total": "200"}))

	report, err := NewDailyReportHandler(f.saleList, f.auditLog).Handle(ctx, today)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(200).Equal(report.CashSales))
	assert.True(t, decimal.NewFromInt(500).Equal(report.InstallmentSales))
	assert.Equal(t, 2, report.PaymentCount)
	assert.True(t, decimal.NewFromInt(200).Equal(report.PaymentsCollected))
	assert.True(t, decimal.NewFromInt(400).Equal(report.CashIn))
	assert.Len(t, report.Transactions, 3)
}

func TestPaymentAmount(t *testing.T) {
	d, ok := PaymentAmount(map[string]any{"paymentAmount": "8833.33"})
	assert.True(t, ok)
	assert.Equal(t, "8833.33", d.String())

	d, ok = PaymentAmount(map[string]any{"paymentAmount": "8,833.33"})
	assert.True(t, ok)
	assert.Equal(t, "8833.33", d.String())

	_, ok = PaymentAmount(map[string]any{"paymentAmount": ""})
	assert.False(t, ok)

	d, ok = PaymentAmount(map[string]any{"paymentAmount": float64(12.25)})
	assert.True(t, ok)
	assert.Equal(t, "12.25", d.String())

	_, ok = PaymentAmount(map[string]any{"paymentAmount": "abc"})
	assert.False(t, ok)

	_, ok = PaymentAmount(map[string]any{})
	assert.False(t, ok)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.sale(t, "1", today, invoicedomain.PaymentCash, "a", 2, 100)
	f.sale(t, "2", today.AddDate(0, 0, -1), invoicedomain.PaymentCash, "a", 1, 100)
	for i, qty := range []int{0, 1, 2, 3, 4, 5, 50} {
		f.product(t, string(rune('a'+i)), qty, 10, 5)
	}

	// Due today: signed a month ago.
	f.contract(t, "due", dateutil.AddMonths(today, -1), installmentdomain.StatusActive)
	f.contract(t, "overdue", today.AddDate(0, -3, 0), installmentdomain.StatusActive)

	sweeper := installmentcommand.NewCheckLateContractsHandler(f.contracts, f.clock)
	contracts := installmentquery.NewListContractsHandler(f.contracts, sweeper, f.clock)

	d, err := NewDashboardHandler(f.saleList, f.products, f.settings, contracts, f.clock).Handle(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, d.TodayCount)
	assert.True(t, decimal.NewFromInt(200).Equal(d.TodaySales))
	assert.Len(t, d.LowStock, 5)
	assert.Equal(t, 0, d.LowStock[0].Quantity)
	assert.Equal(t, 1, d.DueInstallments)
	assert.Equal(t, 1, d.LateContracts)
}
