package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/tair/pos-ledger/internal/catalog/domain"
	"github.com/tair/pos-ledger/internal/invoice/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/idgen"
)

// LineRequest asks for quantity units of one product
type LineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// BuildInvoiceCommand describes a cart to price
type BuildInvoiceCommand struct {
	Lines         []LineRequest
	DiscountType  domain.DiscountType
	DiscountValue decimal.Decimal
	Customer      *domain.Customer
}

// BuildInvoiceHandler turns a cart request into a priced invoice against
// current stock
type BuildInvoiceHandler struct {
	products catalogdomain.ProductRepository
	clock    dateutil.Clock
}

// NewBuildInvoiceHandler creates a new build invoice handler
func NewBuildInvoiceHandler(products catalogdomain.ProductRepository, clock dateutil.Clock) *BuildInvoiceHandler {
	return &BuildInvoiceHandler{products: products, clock: clock}
}

// Handle executes the build invoice command
func (h *BuildInvoiceHandler) Handle(ctx context.Context, cmd BuildInvoiceCommand) (*domain.Invoice, error) {
	if len(cmd.Lines) == 0 {
		return nil, apperror.Validation("invoice has no items")
	}

	b := domain.NewBuilder(idgen.New(), h.clock.Now())
	index := make(map[string]int)

	for _, line := range cmd.Lines {
		if line.Quantity < 1 {
			return nil, apperror.Validation("quantity must be at least 1")
		}

		product, err := h.products.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}

		if err := b.AddItem(*product); err != nil {
			return nil, err
		}
		i, seen := index[product.ID]
		if !seen {
			i = b.Len() - 1
			index[product.ID] = i
		}

		// repeated product ids accumulate on one line
		qty := line.Quantity
		if seen {
			qty += b.Snapshot().Items[i].Quantity - 1
		}
		if err := b.SetQuantity(i, qty); err != nil {
			return nil, err
		}
	}

	if cmd.DiscountType != "" || !cmd.DiscountValue.IsZero() {
		kind := cmd.DiscountType
		if kind == "" {
			kind = domain.DiscountFixed
		}
		if err := b.SetDiscount(kind, cmd.DiscountValue); err != nil {
			return nil, err
		}
	}
	if cmd.Customer != nil {
		b.SetCustomer(cmd.Customer)
	}

	inv := b.Snapshot()
	return &inv, nil
}
