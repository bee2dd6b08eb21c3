package domain

import (
	"time"

	"github.com/shopspring/decimal"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	catalogdomain "github.com/tair/pos-ledger/internal/catalog/domain"
	installmentdomain "github.com/tair/pos-ledger/internal/installment/domain"
	saledomain "github.com/tair/pos-ledger/internal/sale/domain"
)

// ProductLine aggregates one product over a report period
type ProductLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

// SalesReport summarizes the ledger over a day range
type SalesReport struct {
	Start            time.Time         `json:"start"`
	End              time.Time         `json:"end"`
	TotalSales       decimal.Decimal   `json:"totalSales"`
	InvoiceCount     int               `json:"invoiceCount"`
	CashTotal        decimal.Decimal   `json:"cashTotal"`
	InstallmentTotal decimal.Decimal   `json:"installmentTotal"`
	Products         []ProductLine     `json:"products"`
	Invoices         []saledomain.Sale `json:"invoices"`
}

// InventoryReport values the stock on hand
type InventoryReport struct {
	ProductCount   int                     `json:"productCount"`
	TotalUnits     int                     `json:"totalUnits"`
	ValueAtPrice   decimal.Decimal         `json:"valueAtPrice"`
	ValueAtCost    decimal.Decimal         `json:"valueAtCost"`
	ExpectedProfit decimal.Decimal         `json:"expectedProfit"`
	StockAlert     int                     `json:"stockAlert"`
	LowStock       []catalogdomain.Product `json:"lowStock"`
}

// InstallmentsReport summarizes contracts signed in a day range
type InstallmentsReport struct {
	Start          time.Time                    `json:"start"`
	End            time.Time                    `json:"end"`
	Status         string                       `json:"status"`
	ContractCount  int                          `json:"contractCount"`
	TotalAmount    decimal.Decimal              `json:"totalAmount"`
	TotalPaid      decimal.Decimal              `json:"totalPaid"`
	TotalRemaining decimal.Decimal              `json:"totalRemaining"`
	Contracts      []installmentdomain.Contract `json:"contracts"`
}

// DailyReport is the cash drawer view of one day
type DailyReport struct {
	Date              time.Time                 `json:"date"`
	CashSales         decimal.Decimal           `json:"cashSales"`
	CashSaleCount     int                       `json:"cashSaleCount"`
	InstallmentSales  decimal.Decimal           `json:"installmentSales"`
	InstallmentCount  int                       `json:"installmentCount"`
	PaymentsCollected decimal.Decimal           `json:"paymentsCollected"`
	PaymentCount      int                       `json:"paymentCount"`
	CashIn            decimal.Decimal           `json:"cashIn"`
	Transactions      []auditdomain.Transaction `json:"transactions"`
}

// Dashboard is the landing page summary
type Dashboard struct {
	TodaySales      decimal.Decimal         `json:"todaySales"`
	TodayCount      int                     `json:"todayCount"`
	LowStock        []catalogdomain.Product `json:"lowStock"`
	DueInstallments int                     `json:"dueInstallments"`
	LateContracts   int                     `json:"lateContracts"`
}
