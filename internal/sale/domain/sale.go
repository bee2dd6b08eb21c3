package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	invoicedomain "github.com/tair/pos-ledger/internal/invoice/domain"
)

// CashDetails records the tendered amount of a cash sale
type CashDetails struct {
	PaidAmount decimal.Decimal `json:"paidAmount"`
	Change     decimal.Decimal `json:"change"`
}

// InstallmentDetails holds the financing terms of a credit sale
type InstallmentDetails struct {
	DownPayment       decimal.Decimal `json:"downPayment"`
	Period            int             `json:"period"`
	InterestRate      decimal.Decimal `json:"interestRate"`
	Interest          decimal.Decimal `json:"interest"`
	TotalWithInterest decimal.Decimal `json:"totalWithInterest"`
	Remaining         decimal.Decimal `json:"remainingAmount"`
	Monthly           decimal.Decimal `json:"monthlyAmount"`
}

// Sale is the immutable record of a finalized invoice
type Sale struct {
	invoicedomain.Invoice
	Timestamp          time.Time           `json:"timestamp"`
	Cashier            string              `json:"cashier"`
	Cash               *CashDetails        `json:"cash,omitempty"`
	InstallmentDetails *InstallmentDetails `json:"installmentDetails,omitempty"`
}

// IsCash reports whether the sale was paid in cash
func (s *Sale) IsCash() bool {
	return s.PaymentMethod == invoicedomain.PaymentCash
}

// IsInstallment reports whether the sale was financed
func (s *Sale) IsInstallment() bool {
	return s.PaymentMethod == invoicedomain.PaymentInstallment
}

// SaleRepository is the append-only sales ledger
type SaleRepository interface {
	Append(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, id string) (*Sale, error)
	FindAll(ctx context.Context) ([]Sale, error)
	ReplaceAll(ctx context.Context, sales []Sale) error
}

// InvoiceCounter persists the last issued invoice sequence
type InvoiceCounter interface {
	Last(ctx context.Context) (int, error)
	// Reserve increments the counter and returns the new value
	Reserve(ctx context.Context) (int, error)
	// Raise moves the counter up to n; a lower n leaves it unchanged
	Raise(ctx context.Context, n int) error
}

// ContractRef identifies the contract created for a credit sale
type ContractRef struct {
	ID     string `json:"id"`
	Number string `json:"contractNumber"`
}

// ContractCreator derives an installment contract from a finalized sale
type ContractCreator interface {
	CreateFromSale(ctx context.Context, sale *Sale) (*ContractRef, error)
}
