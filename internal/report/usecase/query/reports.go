package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	auditquery "github.com/tair/pos-ledger/internal/audit/usecase/query"
	catalogdomain "github.com/tair/pos-ledger/internal/catalog/domain"
	installmentdomain "github.com/tair/pos-ledger/internal/installment/domain"
	installmentquery "github.com/tair/pos-ledger/internal/installment/usecase/query"
	"github.com/tair/pos-ledger/internal/report/domain"
	salequery "github.com/tair/pos-ledger/internal/sale/usecase/query"
	settingsdomain "github.com/tair/pos-ledger/internal/settings/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/money"
	"github.com/tair/pos-ledger/pkg/logger"
)

// dashboardLowStock caps the low stock list on the dashboard
const dashboardLowStock = 5

// SalesReportHandler handles sales report query
type SalesReportHandler struct {
	sales *salequery.ListSalesHandler
}

// NewSalesReportHandler creates a new sales report handler
func NewSalesReportHandler(sales *salequery.ListSalesHandler) *SalesReportHandler {
	return &SalesReportHandler{sales: sales}
}

// Handle builds the report for [start, end], whole days
func (h *SalesReportHandler) Handle(ctx context.Context, start, end time.Time) (*domain.SalesReport, error) {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, apperror.Validation("end date is before start date")
	}

	sales, err := h.sales.ByRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	report := &domain.SalesReport{
		Start:            start,
		End:              end,
		TotalSales:       decimal.Zero,
		CashTotal:        decimal.Zero,
		InstallmentTotal: decimal.Zero,
		InvoiceCount:     len(sales),
		Invoices:         sales,
	}
	for _, s := range sales {
		report.TotalSales = report.TotalSales.Add(s.Total)
		if s.IsInstallment() {
			report.InstallmentTotal = report.InstallmentTotal.Add(s.Total)
		} else {
			report.CashTotal = report.CashTotal.Add(s.Total)
		}
	}

	grouped := salequery.GroupByProduct(sales)
	report.Products = make([]domain.ProductLine, 0, len(grouped))
	for _, p := range grouped {
		report.Products = append(report.Products, domain.ProductLine(p))
	}
	return report, nil
}

// InventoryReportHandler handles inventory report query
type InventoryReportHandler struct {
	products catalogdomain.ProductRepository
	settings settingsdomain.SettingsRepository
}

// NewInventoryReportHandler creates a new inventory report handler
func NewInventoryReportHandler(products catalogdomain.ProductRepository, settings settingsdomain.SettingsRepository) *InventoryReportHandler {
	return &InventoryReportHandler{products: products, settings: settings}
}

// Handle values the current stock
func (h *InventoryReportHandler) Handle(ctx context.Context) (*domain.InventoryReport, error) {
	products, err := h.products.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	threshold := stockAlert(ctx, h.settings)

	report := &domain.InventoryReport{
		ProductCount: len(products),
		ValueAtPrice: decimal.Zero,
		ValueAtCost:  decimal.Zero,
		StockAlert:   threshold,
		LowStock:     make([]catalogdomain.Product, 0),
	}
	for _, p := range products {
		qty := decimal.NewFromInt(int64(p.Quantity))
		report.TotalUnits += p.Quantity
		report.ValueAtPrice = report.ValueAtPrice.Add(p.Price.Mul(qty))
		report.ValueAtCost = report.ValueAtCost.Add(p.Cost.Mul(qty))
		if p.Quantity <= threshold {
			report.LowStock = append(report.LowStock, p)
		}
	}
	report.ExpectedProfit = report.ValueAtPrice.Sub(report.ValueAtCost)
	sort.SliceStable(report.LowStock, func(i, j int) bool { return report.LowStock[i].Quantity < report.LowStock[j].Quantity })
	return report, nil
}

func stockAlert(ctx context.Context, repo settingsdomain.SettingsRepository) int {
	s, err := repo.Get(ctx)
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("Failed to load settings, using default stock alert")
		return settingsdomain.DefaultStockAlert
	}
	if s.StockAlert <= 0 {
		return settingsdomain.DefaultStockAlert
	}
	return s.StockAlert
}

// InstallmentsReportQuery selects contracts by start date and status.
// Status is all, active, completed or late; empty means all.
type InstallmentsReportQuery struct {
	Start  time.Time
	End    time.Time
	Status string
}

// InstallmentsReportHandler handles installments report query
type InstallmentsReportHandler struct {
	contracts installmentdomain.ContractRepository
	clock     dateutil.Clock
}

// NewInstallmentsReportHandler creates a new installments report handler
func NewInstallmentsReportHandler(contracts installmentdomain.ContractRepository, clock dateutil.Clock) *InstallmentsReportHandler {
	return &InstallmentsReportHandler{contracts: contracts, clock: clock}
}

// Handle builds the report. Late is evaluated against the clock, not the
// stored status.
func (h *InstallmentsReportHandler) Handle(ctx context.Context, q InstallmentsReportQuery) (*domain.InstallmentsReport, error) {
	status := strings.ToLower(strings.TrimSpace(q.Status))
	if status == "" {
		status = "all"
	}
	switch status {
	case "all", string(installmentdomain.StatusActive), string(installmentdomain.StatusCompleted), string(installmentdomain.StatusLate):
	default:
		return nil, apperror.Validation("unknown contract status %q", q.Status)
	}

	all, err := h.contracts.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}

	now := h.clock.Now()
	report := &domain.InstallmentsReport{
		Start:          q.Start,
		End:            q.End,
		Status:         status,
		TotalAmount:    decimal.Zero,
		TotalPaid:      decimal.Zero,
		TotalRemaining: decimal.Zero,
		Contracts:      make([]installmentdomain.Contract, 0),
	}
	for i := range all {
		c := &all[i]
		if !q.Start.IsZero() && c.StartDate.Before(dateutil.StartOfDay(q.Start)) {
			continue
		}
		if !q.End.IsZero() && c.StartDate.After(dateutil.EndOfDay(q.End)) {
			continue
		}
		if !matchStatus(c, status, now) {
			continue
		}

		outstanding := c.Outstanding()
		if outstanding.IsNegative() {
			outstanding = decimal.Zero
		}
		report.TotalAmount = report.TotalAmount.Add(c.TotalAmount)
		report.TotalPaid = report.TotalPaid.Add(c.PaidAmount())
		report.TotalRemaining = report.TotalRemaining.Add(outstanding)
		report.Contracts = append(report.Contracts, *c)
	}
	report.ContractCount = len(report.Contracts)
	sort.SliceStable(report.Contracts, func(i, j int) bool {
		return report.Contracts[i].StartDate.After(report.Contracts[j].StartDate)
	})
	return report, nil
}

func matchStatus(c *installmentdomain.Contract, status string, now time.Time) bool {
	switch status {
	case "all":
		return true
	case string(installmentdomain.StatusLate):
		return installmentdomain.IsLate(c, now)
	case string(installmentdomain.StatusActive):
		return c.Status != installmentdomain.StatusCompleted && !installmentdomain.IsLate(c, now)
	default:
		return string(c.Status) == status
	}
}

// DailyReportHandler handles daily report query
type DailyReportHandler struct {
	sales *salequery.ListSalesHandler
	audit *auditquery.ListTransactionsHandler
}

// NewDailyReportHandler creates a new daily report handler
func NewDailyReportHandler(sales *salequery.ListSalesHandler, audit *auditquery.ListTransactionsHandler) *DailyReportHandler {
	return &DailyReportHandler{sales: sales, audit: audit}
}

// Handle builds the report of one day. Installment payments are read from
// the audit log.
func (h *DailyReportHandler) Handle(ctx context.Context, day time.Time) (*domain.DailyReport, error) {
	sales, err := h.sales.ByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	txs, err := h.audit.ByDate(ctx, day)
	if err != nil {
		return nil, err
	}

	report := &domain.DailyReport{
		Date:              dateutil.StartOfDay(day),
		CashSales:         decimal.Zero,
		InstallmentSales:  decimal.Zero,
		PaymentsCollected: decimal.Zero,
		Transactions:      txs,
	}
	for _, s := range sales {
		if s.IsInstallment() {
			report.InstallmentSales = report.InstallmentSales.Add(s.Total)
			report.InstallmentCount++
			continue
		}
		report.CashSales = report.CashSales.Add(s.Total)
		report.CashSaleCount++
	}

	for _, tx := range txs {
		if tx.ActionType != auditdomain.ActionInstallmentPayment {
			continue
		}
		amount, ok := PaymentAmount(tx.Details)
		if !ok {
			logger.Warn(ctx).Str("transaction_id", tx.ID).Msg("Installment payment entry without a readable amount")
			continue
		}
		report.PaymentsCollected = report.PaymentsCollected.Add(amount)
		report.PaymentCount++
	}

	report.CashIn = report.CashSales.Add(report.PaymentsCollected)
	return report, nil
}

// PaymentAmount reads paymentAmount from audit details. Entries written by
// this service hold a decimal string; imported logs may hold a number.
func PaymentAmount(details map[string]any) (decimal.Decimal, bool) {
	switch v := details["paymentAmount"].(type) {
	case string:
		d, err := money.Parse(v)
		return d, err == nil && v != ""
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case decimal.Decimal:
		return v, true
	default:
		return decimal.Zero, false
	}
}

// DashboardHandler handles dashboard query
type DashboardHandler struct {
	sales     *salequery.ListSalesHandler
	products  catalogdomain.ProductRepository
	settings  settingsdomain.SettingsRepository
	contracts *installmentquery.ListContractsHandler
	clock     dateutil.Clock
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	sales *salequery.ListSalesHandler,
	products catalogdomain.ProductRepository,
	settings settingsdomain.SettingsRepository,
	contracts *installmentquery.ListContractsHandler,
	clock dateutil.Clock,
) *DashboardHandler {
	return &DashboardHandler{sales: sales, products: products, settings: settings, contracts: contracts, clock: clock}
}

// Handle builds today's summary
func (h *DashboardHandler) Handle(ctx context.Context) (*domain.Dashboard, error) {
	now := h.clock.Now()

	today, err := h.sales.ByDate(ctx, now)
	if err != nil {
		return nil, err
	}
	d := &domain.Dashboard{TodaySales: decimal.Zero, TodayCount: len(today)}
	for _, s := range today {
		d.TodaySales = d.TodaySales.Add(s.Total)
	}

	products, err := h.products.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	threshold := stockAlert(ctx, h.settings)
	d.LowStock = make([]catalogdomain.Product, 0)
	for _, p := range products {
		if p.Quantity <= threshold {
			d.LowStock = append(d.LowStock, p)
		}
	}
	sort.SliceStable(d.LowStock, func(i, j int) bool { return d.LowStock[i].Quantity < d.LowStock[j].Quantity })
	if len(d.LowStock) > dashboardLowStock {
		d.LowStock = d.LowStock[:dashboardLowStock]
	}

	due, err := h.contracts.Due(ctx, now)
	if err != nil {
		return nil, err
	}
	d.DueInstallments = len(due)

	late, err := h.contracts.Handle(ctx, installmentquery.ListContractsQuery{Status: installmentdomain.StatusLate})
	if err != nil {
		return nil, err
	}
	d.LateContracts = len(late)

	return d, nil
}
