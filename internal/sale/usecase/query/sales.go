package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	invoicedomain "github.com/tair/pos-ledger/internal/invoice/domain"
	"github.com/tair/pos-ledger/internal/sale/domain"
	"github.com/tair/pos-ledger/pkg/dateutil"
)

// GetSaleHandler handles get sale query
type GetSaleHandler struct {
	repo domain.SaleRepository
}

// NewGetSaleHandler creates a new get sale handler
func NewGetSaleHandler(repo domain.SaleRepository) *GetSaleHandler {
	return &GetSaleHandler{repo: repo}
}

// Handle returns one sale
func (h *GetSaleHandler) Handle(ctx context.Context, id string) (*domain.Sale, error) {
	return h.repo.FindByID(ctx, id)
}

// ListSalesQuery filters the ledger. Zero Start or End leaves that side open;
// both bounds cover whole days.
type ListSalesQuery struct {
	Start         time.Time
	End           time.Time
	PaymentMethod invoicedomain.PaymentMethod
}

func (q ListSalesQuery) match(s *domain.Sale) bool {
	if q.PaymentMethod != "" && s.PaymentMethod != q.PaymentMethod {
		return false
	}
	if !q.Start.IsZero() && s.Timestamp.Before(dateutil.StartOfDay(q.Start)) {
		return false
	}
	if !q.End.IsZero() && s.Timestamp.After(dateutil.EndOfDay(q.End)) {
		return false
	}
	return true
}

// ListSalesHandler handles sales listing queries
type ListSalesHandler struct {
	repo domain.SaleRepository
}

// NewListSalesHandler creates a new list sales handler
func NewListSalesHandler(repo domain.SaleRepository) *ListSalesHandler {
	return &ListSalesHandler{repo: repo}
}

// Handle returns matching sales, newest first
func (h *ListSalesHandler) Handle(ctx context.Context, q ListSalesQuery) ([]domain.Sale, error) {
	all, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	out := make([]domain.Sale, 0, len(all))
	for i := range all {
		if q.match(&all[i]) {
			out = append(out, all[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// ByDate returns the sales of one calendar day
func (h *ListSalesHandler) ByDate(ctx context.Context, day time.Time) ([]domain.Sale, error) {
	return h.Handle(ctx, ListSalesQuery{Start: day, End: day})
}

// ByRange returns the sales between two days inclusive
func (h *ListSalesHandler) ByRange(ctx context.Context, start, end time.Time) ([]domain.Sale, error) {
	return h.Handle(ctx, ListSalesQuery{Start: start, End: end})
}

// Total sums sale totals matching q
func (h *ListSalesHandler) Total(ctx context.Context, q ListSalesQuery) (decimal.Decimal, error) {
	sales, err := h.Handle(ctx, q)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Total)
	}
	return total, nil
}

// Count counts sales matching q
func (h *ListSalesHandler) Count(ctx context.Context, q ListSalesQuery) (int, error) {
	sales, err := h.Handle(ctx, q)
	if err != nil {
		return 0, err
	}
	return len(sales), nil
}

// ProductSale is the aggregate of one product over a period
type ProductSale struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

// ProductSales groups line items by product, highest revenue first
func (h *ListSalesHandler) ProductSales(ctx context.Context, start, end time.Time) ([]ProductSale, error) {
	sales, err := h.ByRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return GroupByProduct(sales), nil
}

// GroupByProduct aggregates the line items of sales
func GroupByProduct(sales []domain.Sale) []ProductSale {
	index := make(map[string]int)
	out := make([]ProductSale, 0)
	for _, s := range sales {
		for _, it := range s.Items {
			i, ok := index[it.ProductID]
			if !ok {
				i = len(out)
				index[it.ProductID] = i
				out = append(out, ProductSale{ProductID: it.ProductID, Name: it.Name, Code: it.Code, Total: decimal.Zero})
			}
			out[i].Quantity += it.Quantity
			out[i].Total = out[i].Total.Add(it.Total)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out
}

// NextInvoiceNumberHandler previews the number the next sale will get
type NextInvoiceNumberHandler struct {
	counter domain.InvoiceCounter
	clock   dateutil.Clock
}

// NewNextInvoiceNumberHandler creates a new next invoice number handler
func NewNextInvoiceNumberHandler(counter domain.InvoiceCounter, clock dateutil.Clock) *NextInvoiceNumberHandler {
	return &NextInvoiceNumberHandler{counter: counter, clock: clock}
}

// Handle returns the preview
func (h *NextInvoiceNumberHandler) Handle(ctx context.Context) (string, error) {
	last, err := h.counter.Last(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read invoice counter: %w", err)
	}
	return invoicedomain.Number(h.clock.Now(), last+1), nil
}
