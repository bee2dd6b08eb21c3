package domain

import (
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/tair/pos-ledger/internal/catalog/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
)

// Builder mutates an in-progress invoice and keeps its totals current
type Builder struct {
	inv Invoice
}

// NewBuilder starts an empty invoice
func NewBuilder(id string, date time.Time) *Builder {
	b := &Builder{inv: Invoice{
		ID:           id,
		Date:         date,
		Items:        []Item{},
		DiscountType: DiscountFixed,
	}}
	b.refresh()
	return b
}

func (b *Builder) refresh() {
	t := b.inv.ComputeTotal()
	b.inv.Subtotal = t.Subtotal
	b.inv.Discount = t.Discount
	b.inv.Total = t.Total
}

func (b *Builder) line(index int) (*Item, error) {
	if index < 0 || index >= len(b.inv.Items) {
		return nil, apperror.Validation("invoice line %d does not exist", index)
	}
	return &b.inv.Items[index], nil
}

// AddItem adds one unit of product, merging with an existing line
func (b *Builder) AddItem(product catalogdomain.Product) error {
	if product.Quantity <= 0 {
		return apperror.New(apperror.ErrInsufficientStock, "%s is out of stock", product.Name)
	}

	for i := range b.inv.Items {
		it := &b.inv.Items[i]
		if it.ProductID != product.ID {
			continue
		}
		if it.Quantity+1 > product.Quantity {
			return apperror.New(apperror.ErrInsufficientStock,
				"insufficient stock for %s: %d available", product.Name, product.Quantity)
		}
		it.Stock = product.Quantity
		it.Quantity++
		it.recompute()
		b.refresh()
		return nil
	}

	it := Item{
		ProductID: product.ID,
		Code:      product.Code,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  1,
		Stock:     product.Quantity,
	}
	it.recompute()
	b.inv.Items = append(b.inv.Items, it)
	b.refresh()
	return nil
}

// UpdateQuantity changes a line by delta. The quantity never drops below 1.
func (b *Builder) UpdateQuantity(index, delta int) error {
	it, err := b.line(index)
	if err != nil {
		return err
	}

	qty := it.Quantity + delta
	if qty < 1 {
		qty = 1
	}
	if delta > 0 && qty > it.Stock {
		return apperror.New(apperror.ErrInsufficientStock,
			"insufficient stock for %s: %d available", it.Name, it.Stock)
	}

	it.Quantity = qty
	it.recompute()
	b.refresh()
	return nil
}

// SetQuantity sets a line to an absolute quantity between 1 and stock
func (b *Builder) SetQuantity(index, qty int) error {
	it, err := b.line(index)
	if err != nil {
		return err
	}
	if qty < 1 {
		return apperror.Validation("quantity must be at least 1")
	}
	if qty > it.Stock {
		return apperror.New(apperror.ErrInsufficientStock,
			"insufficient stock for %s: %d available", it.Name, it.Stock)
	}

	it.Quantity = qty
	it.recompute()
	b.refresh()
	return nil
}

// RemoveItem drops a line
func (b *Builder) RemoveItem(index int) error {
	if _, err := b.line(index); err != nil {
		return err
	}
	b.inv.Items = append(b.inv.Items[:index], b.inv.Items[index+1:]...)
	b.refresh()
	return nil
}

// SetDiscount applies a fixed amount or a percentage of the subtotal
func (b *Builder) SetDiscount(kind DiscountType, value decimal.Decimal) error {
	if kind != DiscountFixed && kind != DiscountPercentage {
		return apperror.Validation("unknown discount type %q", kind)
	}
	if value.IsNegative() {
		return apperror.Validation("discount cannot be negative")
	}
	b.inv.DiscountType = kind
	b.inv.DiscountValue = value
	b.refresh()
	return nil
}

// SetCustomer records the buyer
func (b *Builder) SetCustomer(c *Customer) {
	b.inv.Customer = c
}

// Totals returns the current pricing
func (b *Builder) Totals() Totals {
	return b.inv.ComputeTotal()
}

// Len is the number of lines
func (b *Builder) Len() int {
	return len(b.inv.Items)
}

// Snapshot returns a deep copy of the invoice
func (b *Builder) Snapshot() Invoice {
	out := b.inv
	out.Items = make([]Item, len(b.inv.Items))
	copy(out.Items, b.inv.Items)
	if b.inv.Customer != nil {
		c := *b.inv.Customer
		out.Customer = &c
	}
	return out
}
