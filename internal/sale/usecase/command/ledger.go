package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/tair/pos-ledger/internal/catalog/domain"
	invoicedomain "github.com/tair/pos-ledger/internal/invoice/domain"
	"github.com/tair/pos-ledger/internal/sale/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/logger"
)

// ledger performs the persistence steps shared by every checkout
type ledger struct {
	sales    domain.SaleRepository
	counter  domain.InvoiceCounter
	products catalogdomain.ProductRepository
}

func checkInvoice(inv *invoicedomain.Invoice) error {
	if len(inv.Items) == 0 {
		return apperror.Validation("invoice has no items")
	}
	for _, it := range inv.Items {
		if it.Quantity < 1 {
			return apperror.Validation("invalid quantity for %s", it.Name)
		}
	}

	// Never trust totals supplied by the caller.
	inv.Items = append([]invoicedomain.Item(nil), inv.Items...)
	t := inv.ComputeTotal()
	for i := range inv.Items {
		inv.Items[i].Total = inv.Items[i].Price.Mul(decimal.NewFromInt(int64(inv.Items[i].Quantity)))
	}
	inv.Subtotal = t.Subtotal
	inv.Discount = t.Discount
	inv.Total = t.Total
	return nil
}

func saleDeltas(sale *domain.Sale, sign int) []catalogdomain.StockDelta {
	deltas := make([]catalogdomain.StockDelta, 0, len(sale.Items))
	for _, it := range sale.Items {
		deltas = append(deltas, catalogdomain.StockDelta{
			ProductID: it.ProductID,
			Delta:     sign * it.Quantity,
			Sale:      true,
		})
	}
	return deltas
}

// commit decrements stock for every line, numbers the sale and appends it.
// Stock is restored when numbering or the append fails.
func (l *ledger) commit(ctx context.Context, sale *domain.Sale) error {
	if err := l.products.AdjustStock(ctx, saleDeltas(sale, -1)); err != nil {
		return err
	}

	err := l.number(ctx, sale)
	if err == nil {
		err = l.sales.Append(ctx, sale)
	}
	if err != nil {
		if rerr := l.products.AdjustStock(ctx, saleDeltas(sale, 1)); rerr != nil {
			logger.Error(ctx).
				Err(rerr).
				Str("sale_id", sale.ID).
				Msg("Failed to restore stock after aborted sale")
		}
		return fmt.Errorf("failed to record sale: %w", err)
	}
	return nil
}

func (l *ledger) number(ctx context.Context, sale *domain.Sale) error {
	seq, err := l.counter.Reserve(ctx)
	if err != nil {
		return fmt.Errorf("failed to reserve invoice number: %w", err)
	}
	sale.Number = invoicedomain.Number(sale.Timestamp, seq)
	return nil
}
