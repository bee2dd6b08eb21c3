package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/pos-ledger/pkg/money"
)

// DiscountType selects how DiscountValue is applied
type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

// PaymentMethod of a finalized invoice
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentInstallment PaymentMethod = "installment"
)

// Customer is the buyer recorded on credit sales
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// Item is one invoice line
type Item struct {
	ProductID string          `json:"productId"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	// Stock is the quantity on hand when the line was added
	Stock int `json:"-"`
}

func (it *Item) recompute() {
	it.Total = it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Invoice is the in-progress cart
type Invoice struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	Date          time.Time       `json:"date"`
	Items         []Item          `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountType  DiscountType    `json:"discountType"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
	Customer      *Customer       `json:"customer,omitempty"`
}

// Totals is the result of pricing an invoice
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotal prices the invoice without modifying it. The discount never
// exceeds the subtotal.
func (inv *Invoice) ComputeTotal() Totals {
	subtotal := decimal.Zero
	for _, it := range inv.Items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	discount := decimal.Zero
	switch inv.DiscountType {
	case DiscountPercentage:
		discount = money.Round(money.Percent(subtotal, inv.DiscountValue))
	case DiscountFixed:
		discount = inv.DiscountValue
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	discount = money.Min(discount, subtotal)

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}
}

// ItemCount is the number of units across all lines
func (inv *Invoice) ItemCount() int {
	n := 0
	for _, it := range inv.Items {
		n += it.Quantity
	}
	return n
}

// Number formats an invoice number as INV-YYMMDD-NNNN
func Number(date time.Time, seq int) string {
	return fmt.Sprintf("INV-%s-%04d", date.Format("060102"), seq)
}

// Sequence extracts NNNN from an invoice number, or 0 when the number is
// not in INV-YYMMDD-NNNN form
func Sequence(number string) int {
	parts := strings.Split(number, "-")
	if len(parts) != 3 {
		return 0
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ContractNumber derives the installment contract number of an invoice
func ContractNumber(invoiceNumber string) string {
	parts := strings.Split(invoiceNumber, "-")
	if len(parts) >= 3 {
		return fmt.Sprintf("INST-%s-%s", parts[1], parts[2])
	}
	return "INST-" + invoiceNumber
}
