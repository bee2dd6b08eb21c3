package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status of an installment contract
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusLate      Status = "late"
)

// GracePeriod is how long after a due date a contract stays current
const GracePeriod = 7 * 24 * time.Hour

// Payment is one entry of a contract's payment history
type Payment struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Contract is an installment agreement derived from a credit sale
type Contract struct {
	ID              string          `json:"id"`
	SaleID          string          `json:"saleId"`
	InvoiceNumber   string          `json:"invoiceNumber"`
	ContractNumber  string          `json:"contractNumber"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	CustomerAddress string          `json:"customerAddress"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	DownPayment     decimal.Decimal `json:"downPayment"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	OriginalPeriod  int             `json:"originalPeriod"`
	RemainingPeriod int             `json:"remainingPeriod"`
	MonthlyAmount   decimal.Decimal `json:"monthlyAmount"`
	InterestRate    decimal.Decimal `json:"interestRate"`
	StartDate       time.Time       `json:"startDate"`
	NextPaymentDate time.Time       `json:"nextPaymentDate"`
	PaymentHistory  []Payment       `json:"paymentHistory"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
}

// IsLate is the single late rule: not completed and more than the grace
// period past the next due date.
func IsLate(c *Contract, now time.Time) bool {
	if c.Status == StatusCompleted {
		return false
	}
	return now.After(c.NextPaymentDate.Add(GracePeriod))
}

// PaidAmount sums the payment history, down payment included
func (c *Contract) PaidAmount() decimal.Decimal {
	total := decimal.Zero
	for _, p := range c.PaymentHistory {
		total = total.Add(p.Amount)
	}
	return total
}

// Outstanding is what is still owed after the down payment and every
// later payment
func (c *Contract) Outstanding() decimal.Decimal {
	return c.RemainingAmount.Sub(c.PaidAmount().Sub(c.DownPayment))
}

// residue is the amount lost to rounding the monthly amount down
func (c *Contract) residue() decimal.Decimal {
	if c.OriginalPeriod <= 0 {
		return decimal.Zero
	}
	r := c.RemainingAmount.Sub(c.MonthlyAmount.Mul(decimal.NewFromInt(int64(c.OriginalPeriod))))
	if r.IsPositive() {
		return r
	}
	return decimal.Zero
}

// ScheduleOverage is what the rounded schedule collects beyond the
// remaining amount when the monthly amount was rounded up
func (c *Contract) ScheduleOverage() decimal.Decimal {
	if c.OriginalPeriod <= 0 {
		return decimal.Zero
	}
	r := c.MonthlyAmount.Mul(decimal.NewFromInt(int64(c.OriginalPeriod))).Sub(c.RemainingAmount)
	if r.IsPositive() {
		return r
	}
	return decimal.Zero
}

// Settled reports whether the payments cover the total. Paying every
// rounded monthly amount settles the contract.
func (c *Contract) Settled() bool {
	return c.PaidAmount().GreaterThanOrEqual(c.TotalAmount.Sub(c.residue()))
}

// RecomputeStatus derives the status from the payments and now. Completed
// is terminal.
func (c *Contract) RecomputeStatus(now time.Time) {
	switch {
	case c.Status == StatusCompleted:
	case c.Settled():
		c.Status = StatusCompleted
		c.CompletedAt = &now
	case IsLate(c, now):
		c.Status = StatusLate
	default:
		c.Status = StatusActive
	}
}

// ContractRepository defines the contract for installment data access
type ContractRepository interface {
	Create(ctx context.Context, contract *Contract) error
	FindByID(ctx context.Context, id string) (*Contract, error)
	FindAll(ctx context.Context) ([]Contract, error)
	// Mutate applies fn to the full contract list and writes it back only
	// when fn succeeds
	Mutate(ctx context.Context, fn func(contracts []Contract) error) error
	ReplaceAll(ctx context.Context, contracts []Contract) error
}
