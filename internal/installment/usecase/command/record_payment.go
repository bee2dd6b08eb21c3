package command

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/internal/installment/domain"
	settingsdomain "github.com/tair/pos-ledger/internal/settings/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/idgen"
	"github.com/tair/pos-ledger/pkg/logger"
	"github.com/tair/pos-ledger/pkg/money"
)

// PaymentNote is used when a payment carries no notes
const PaymentNote = "installment payment"

// RecordPaymentCommand represents a payment against a contract. Confirm
// accepts a payment larger than the outstanding amount.
type RecordPaymentCommand struct {
	ContractID string
	Amount     decimal.Decimal
	Date       time.Time
	Notes      string
	Confirm    bool
}

// Receipt is the printable proof of one payment
type Receipt struct {
	StoreName       string          `json:"storeName"`
	StorePhone      string          `json:"storePhone"`
	StoreAddress    string          `json:"storeAddress"`
	Message         string          `json:"message"`
	ContractNumber  string          `json:"contractNumber"`
	InvoiceNumber   string          `json:"invoiceNumber"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	Payment         domain.Payment  `json:"payment"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	TotalPaid       decimal.Decimal `json:"totalPaid"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	NextPaymentDate time.Time       `json:"nextPaymentDate"`
	Status          domain.Status   `json:"status"`
	IssuedAt        time.Time       `json:"issuedAt"`
}

// RecordPaymentHandler handles installment payments
type RecordPaymentHandler struct {
	repo     domain.ContractRepository
	settings settingsdomain.SettingsRepository
	audit    auditdomain.Recorder
	clock    dateutil.Clock
}

// NewRecordPaymentHandler creates a new record payment handler
func NewRecordPaymentHandler(
	repo domain.ContractRepository,
	settings settingsdomain.SettingsRepository,
	audit auditdomain.Recorder,
	clock dateutil.Clock,
) *RecordPaymentHandler {
	return &RecordPaymentHandler{repo: repo, settings: settings, audit: audit, clock: clock}
}

// Handle executes the record payment command
func (h *RecordPaymentHandler) Handle(ctx context.Context, cmd RecordPaymentCommand) (*Receipt, error) {
	if cmd.ContractID == "" {
		return nil, apperror.Validation("invalid contract id")
	}
	if !cmd.Amount.IsPositive() {
		return nil, apperror.Validation("payment amount must be greater than zero")
	}

	now := h.clock.Now()
	date := cmd.Date
	if date.IsZero() {
		date = now
	}
	notes := strings.TrimSpace(cmd.Notes)
	if notes == "" {
		notes = PaymentNote
	}

	var updated domain.Contract
	var payment domain.Payment

	err := h.repo.Mutate(ctx, func(contracts []domain.Contract) error {
		var c *domain.Contract
		for i := range contracts {
			if contracts[i].ID == cmd.ContractID {
				c = &contracts[i]
				break
			}
		}
		if c == nil {
			return apperror.NotFound("contract not found")
		}
		if c.Status == domain.StatusCompleted {
			return apperror.Validation("contract %s is already completed", c.ContractNumber)
		}

		outstanding := c.Outstanding()
		// The last scheduled payment may carry the cent the schedule rounded up.
		if cmd.Amount.GreaterThan(outstanding.Add(c.ScheduleOverage())) && !cmd.Confirm {
			return apperror.New(apperror.ErrConfirmationRequired,
				"payment %s exceeds the outstanding amount %s", money.Format(cmd.Amount), money.Format(outstanding))
		}

		payment = domain.Payment{
			ID:        idgen.New(),
			Amount:    cmd.Amount,
			Date:      date,
			Notes:     notes,
			CreatedAt: now,
		}
		c.PaymentHistory = append(c.PaymentHistory, payment)
		c.NextPaymentDate = dateutil.AddMonths(date, 1)
		if c.RemainingPeriod > 0 {
			c.RemainingPeriod--
		}
		c.UpdatedAt = now
		c.RecomputeStatus(now)

		updated = *c
		return nil
	})
	if err != nil {
		return nil, err
	}

	paymentsTotal.Inc()

	_ = h.audit.Record(ctx, auditdomain.ActionInstallmentPayment, map[string]any{
		"contractId":     updated.ID,
		"contractNumber": updated.ContractNumber,
		"customerName":   updated.CustomerName,
		"paymentAmount":  payment.Amount.String(),
		"paymentDate":    dateutil.FormatDate(payment.Date),
		"status":         string(updated.Status),
	})

	logger.Info(ctx).
		Str("contract_id", updated.ID).
		Str("contract_number", updated.ContractNumber).
		Str("amount", payment.Amount.String()).
		Str("status", string(updated.Status)).
		Msg("Installment payment recorded")

	settings, err := h.settings.Get(ctx)
	if err != nil {
		// The payment is stored; print with defaults rather than failing.
		logger.Warn(ctx).Err(err).Msg("Failed to load settings for receipt")
		settings = settingsdomain.Defaults()
	}

	outstanding := updated.Outstanding()
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}

	return &Receipt{
		StoreName:       settings.StoreName,
		StorePhone:      settings.StorePhone,
		StoreAddress:    settings.StoreAddress,
		Message:         settings.InvoiceMessage,
		ContractNumber:  updated.ContractNumber,
		InvoiceNumber:   updated.InvoiceNumber,
		CustomerName:    updated.CustomerName,
		CustomerPhone:   updated.CustomerPhone,
		Payment:         payment,
		TotalAmount:     updated.TotalAmount,
		TotalPaid:       updated.PaidAmount(),
		Outstanding:     outstanding,
		NextPaymentDate: updated.NextPaymentDate,
		Status:          updated.Status,
		IssuedAt:        now,
	}, nil
}
