package command

import (
	"context"

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

// FinalizeCashSaleCommand represents a cash checkout
type FinalizeCashSaleCommand struct {
	Invoice    invoicedomain.Invoice
	PaidAmount decimal.Decimal
}

// FinalizeCashSaleHandler handles cash checkout
type FinalizeCashSaleHandler struct {
	ledger ledger
	audit  auditdomain.Recorder
	clock  dateutil.Clock
}

// NewFinalizeCashSaleHandler creates a new finalize cash sale handler
func NewFinalizeCashSaleHandler(
	sales domain.SaleRepository,
	counter domain.InvoiceCounter,
	products catalogdomain.ProductRepository,
	audit auditdomain.Recorder,
	clock dateutil.Clock,
) *FinalizeCashSaleHandler {
	return &FinalizeCashSaleHandler{
		ledger: ledger{sales: sales, counter: counter, products: products},
		audit:  audit,
		clock:  clock,
	}
}

// Handle executes the finalize cash sale command
func (h *FinalizeCashSaleHandler) Handle(ctx context.Context, cmd FinalizeCashSaleCommand) (*domain.Sale, error) {
	inv := cmd.Invoice
	if err := checkInvoice(&inv); err != nil {
		return nil, err
	}

	if cmd.PaidAmount.LessThan(inv.Total) {
		return nil, apperror.New(apperror.ErrInsufficientPayment,
			"paid amount %s is less than total %s", money.Format(cmd.PaidAmount), money.Format(inv.Total))
	}

	now := h.clock.Now()
	if inv.ID == "" {
		inv.ID = idgen.New()
	}
	inv.Date = now
	inv.PaymentMethod = invoicedomain.PaymentCash
	inv.Customer = nil

	sale := &domain.Sale{
		Invoice:   inv,
		Timestamp: now,
		Cashier:   auditdomain.ActorFrom(ctx),
		Cash: &domain.CashDetails{
			PaidAmount: cmd.PaidAmount,
			Change:     cmd.PaidAmount.Sub(inv.Total),
		},
	}

	if err := h.ledger.commit(ctx, sale); err != nil {
		return nil, err
	}

	_ = h.audit.Record(ctx, auditdomain.ActionCashSale, map[string]any{
		"saleId":        sale.ID,
		"invoiceNumber": sale.Number,
		"total":         sale.Total.String(),
		"paidAmount":    sale.Cash.PaidAmount.String(),
		"change":        sale.Cash.Change.String(),
		"itemCount":     sale.ItemCount(),
	})

	observeSale(sale)

	logger.Info(ctx).
		Str("sale_id", sale.ID).
		Str("invoice_number", sale.Number).
		Str("total", sale.Total.String()).
		Msg("Cash sale finalized")

	return sale, nil
}
