package command

import (
	"context"
	"fmt"

	"github.com/tair/pos-ledger/internal/installment/domain"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/logger"
)

// CheckLateContractsHandler re-derives contract status from the clock
type CheckLateContractsHandler struct {
	repo  domain.ContractRepository
	clock dateutil.Clock
}

// NewCheckLateContractsHandler creates a new late sweep handler
func NewCheckLateContractsHandler(repo domain.ContractRepository, clock dateutil.Clock) *CheckLateContractsHandler {
	return &CheckLateContractsHandler{repo: repo, clock: clock}
}

// Handle marks overdue contracts late and returns how many changed. Contracts
// brought current again go back to active.
func (h *CheckLateContractsHandler) Handle(ctx context.Context) (int, error) {
	now := h.clock.Now()
	changed := 0
	late := 0

	err := h.repo.Mutate(ctx, func(contracts []domain.Contract) error {
		for i := range contracts {
			before := contracts[i].Status
			contracts[i].RecomputeStatus(now)
			if contracts[i].Status != before {
				contracts[i].UpdatedAt = now
				changed++
			}
			if contracts[i].Status == domain.StatusLate {
				late++
			}
		}
		if changed == 0 {
			return errUnchanged
		}
		return nil
	})
	if err != nil && err != errUnchanged {
		return 0, fmt.Errorf("failed to check late contracts: %w", err)
	}

	lateContracts.Set(float64(late))

	if changed > 0 {
		logger.Info(ctx).
			Int("changed", changed).
			Int("late", late).
			Msg("Contract statuses updated")
	}
	return changed, nil
}
