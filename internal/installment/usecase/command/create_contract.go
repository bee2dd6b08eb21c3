package command

import (
	"context"
	"fmt"

	"github.com/tair/pos-ledger/internal/installment/domain"
	invoicedomain "github.com/tair/pos-ledger/internal/invoice/domain"
	saledomain "github.com/tair/pos-ledger/internal/sale/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/idgen"
	"github.com/tair/pos-ledger/pkg/logger"
)

// DownPaymentNote labels the first history entry of every contract
const DownPaymentNote = "down payment"

// CreateContractHandler derives contracts from installment sales
type CreateContractHandler struct {
	repo  domain.ContractRepository
	clock dateutil.Clock
}

// NewCreateContractHandler creates a new create contract handler
func NewCreateContractHandler(repo domain.ContractRepository, clock dateutil.Clock) *CreateContractHandler {
	return &CreateContractHandler{repo: repo, clock: clock}
}

// Handle creates the contract of sale
func (h *CreateContractHandler) Handle(ctx context.Context, sale *saledomain.Sale) (*domain.Contract, error) {
	if !sale.IsInstallment() || sale.InstallmentDetails == nil {
		return nil, apperror.Validation("sale %s is not an installment sale", sale.Number)
	}
	if sale.Customer == nil {
		return nil, apperror.Validation("sale %s has no customer", sale.Number)
	}

	terms := sale.InstallmentDetails
	now := h.clock.Now()
	start := sale.Timestamp

	contract := &domain.Contract{
		ID:              idgen.New(),
		SaleID:          sale.ID,
		InvoiceNumber:   sale.Number,
		ContractNumber:  invoicedomain.ContractNumber(sale.Number),
		CustomerName:    sale.Customer.Name,
		CustomerPhone:   sale.Customer.Phone,
		CustomerAddress: sale.Customer.Address,
		TotalAmount:     terms.TotalWithInterest,
		DownPayment:     terms.DownPayment,
		RemainingAmount: terms.Remaining,
		OriginalPeriod:  terms.Period,
		RemainingPeriod: terms.Period,
		MonthlyAmount:   terms.Monthly,
		InterestRate:    terms.InterestRate,
		StartDate:       start,
		NextPaymentDate: dateutil.AddMonths(start, 1),
		PaymentHistory: []domain.Payment{{
			ID:        idgen.New(),
			Amount:    terms.DownPayment,
			Date:      start,
			Notes:     DownPaymentNote,
			CreatedAt: now,
		}},
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// A zero financed amount is paid off at signing.
	contract.RecomputeStatus(now)

	if err := h.repo.Create(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}

	logger.Info(ctx).
		Str("contract_id", contract.ID).
		Str("contract_number", contract.ContractNumber).
		Str("customer", contract.CustomerName).
		Str("total", contract.TotalAmount.String()).
		Msg("Installment contract created")

	return contract, nil
}

// CreateFromSale implements the sale ledger's ContractCreator
func (h *CreateContractHandler) CreateFromSale(ctx context.Context, sale *saledomain.Sale) (*saledomain.ContractRef, error) {
	contract, err := h.Handle(ctx, sale)
	if err != nil {
		return nil, err
	}
	return &saledomain.ContractRef{ID: contract.ID, Number: contract.ContractNumber}, nil
}
