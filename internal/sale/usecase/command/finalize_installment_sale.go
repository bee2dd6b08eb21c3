package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	catalogdomain "github.com/tair/pos-ledger/internal/catalog/domain"
	invoicedomain "github.com/tair/pos-ledger/internal/invoice/domain"
	"github.com/tair/pos-ledger/internal/sale/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/idgen"
	"github.com/tair/pos-ledger/pkg/logger"
	"github.com/tair/pos-ledger/pkg/money"
)

// DefaultPeriod is the installment period used when none is given
const DefaultPeriod = 12

// FinalizeInstallmentSaleCommand represents a credit checkout
type FinalizeInstallmentSaleCommand struct {
	Invoice      invoicedomain.Invoice
	Customer     invoicedomain.Customer
	DownPayment  decimal.Decimal
	Period       int
	InterestRate decimal.Decimal
}

// InstallmentSaleResult is the persisted sale and its contract
type InstallmentSaleResult struct {
	Sale     *domain.Sale        `json:"sale"`
	Contract *domain.ContractRef `json:"contract"`
}

// FinalizeInstallmentSaleHandler handles credit checkout
type FinalizeInstallmentSaleHandler struct {
	ledger    ledger
	contracts domain.ContractCreator
	audit     auditdomain.Recorder
	clock     dateutil.Clock
}

// NewFinalizeInstallmentSaleHandler creates a new finalize installment sale handler
func NewFinalizeInstallmentSaleHandler(
	sales domain.SaleRepository,
	counter domain.InvoiceCounter,
	products catalogdomain.ProductRepository,
	contracts domain.ContractCreator,
	audit auditdomain.Recorder,
	clock dateutil.Clock,
) *FinalizeInstallmentSaleHandler {
	return &FinalizeInstallmentSaleHandler{
		ledger:    ledger{sales: sales, counter: counter, products: products},
		contracts: contracts,
		audit:     audit,
		clock:     clock,
	}
}

// Terms computes the financing of total. A zero period means DefaultPeriod.
func Terms(total, downPayment decimal.Decimal, period int, rate decimal.Decimal) (*domain.InstallmentDetails, error) {
	if period == 0 {
		period = DefaultPeriod
	}
	if period < 0 {
		return nil, apperror.Validation("installment period must be positive")
	}
	if rate.IsNegative() {
		return nil, apperror.Validation("interest rate cannot be negative")
	}

	interest := money.Round(money.Percent(total, rate))
	totalWithInterest := total.Add(interest)

	if downPayment.IsNegative() {
		return nil, apperror.Validation("down payment cannot be negative")
	}
	if downPayment.GreaterThan(totalWithInterest) {
		return nil, apperror.Validation("down payment exceeds the amount due")
	}

	remaining := totalWithInterest.Sub(downPayment)
	return &domain.InstallmentDetails{
		DownPayment:       downPayment,
		Period:            period,
		InterestRate:      rate,
		Interest:          interest,
		TotalWithInterest: totalWithInterest,
		Remaining:         remaining,
		Monthly:           money.Round(remaining.Div(decimal.NewFromInt(int64(period)))),
	}, nil
}

// Handle executes the finalize installment sale command. When only the
// contract fails the committed sale is returned together with the error.
func (h *FinalizeInstallmentSaleHandler) Handle(ctx context.Context, cmd FinalizeInstallmentSaleCommand) (*InstallmentSaleResult, error) {
	customer := invoicedomain.Customer{
		Name:    strings.TrimSpace(cmd.Customer.Name),
		Phone:   strings.TrimSpace(cmd.Customer.Phone),
		Address: strings.TrimSpace(cmd.Customer.Address),
	}
	if customer.Name == "" {
		return nil, apperror.Validation("customer name is required")
	}
	if customer.Phone == "" {
		return nil, apperror.Validation("customer phone is required")
	}

	inv := cmd.Invoice
	if err := checkInvoice(&inv); err != nil {
		return nil, err
	}

	terms, err := Terms(inv.Total, cmd.DownPayment, cmd.Period, cmd.InterestRate)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	if inv.ID == "" {
		inv.ID = idgen.New()
	}
	inv.Date = now
	inv.PaymentMethod = invoicedomain.PaymentInstallment
	inv.Customer = &customer

	sale := &domain.Sale{
		Invoice:            inv,
		Timestamp:          now,
		Cashier:            auditdomain.ActorFrom(ctx),
		InstallmentDetails: terms,
	}

	if err := h.ledger.commit(ctx, sale); err != nil {
		return nil, err
	}

	_ = h.audit.Record(ctx, auditdomain.ActionInstallmentSale, map[string]any{
		"saleId":            sale.ID,
		"invoiceNumber":     sale.Number,
		"customerName":      customer.Name,
		"total":             sale.Total.String(),
		"totalWithInterest": terms.TotalWithInterest.String(),
		"downPayment":       terms.DownPayment.String(),
		"period":            terms.Period,
	})

	observeSale(sale)

	ref, err := h.contracts.CreateFromSale(ctx, sale)
	if err != nil {
		logger.Error(ctx).
			Err(err).
			Str("sale_id", sale.ID).
			Msg("Sale recorded but contract creation failed")
		return &InstallmentSaleResult{Sale: sale}, fmt.Errorf("failed to create contract for sale %s: %w", sale.Number, err)
	}

	logger.Info(ctx).
		Str("sale_id", sale.ID).
		Str("invoice_number", sale.Number).
		Str("contract_number", ref.Number).
		Str("total_with_interest", terms.TotalWithInterest.String()).
		Msg("Installment sale finalized")

	return &InstallmentSaleResult{Sale: sale, Contract: ref}, nil
}
