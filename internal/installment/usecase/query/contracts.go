package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tair/pos-ledger/internal/installment/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/dateutil"
)

// LateSweeper refreshes contract statuses before they are read
type LateSweeper interface {
	Handle(ctx context.Context) (int, error)
}

// GetContractHandler handles get contract query
type GetContractHandler struct {
	repo domain.ContractRepository
}

// NewGetContractHandler creates a new get contract handler
func NewGetContractHandler(repo domain.ContractRepository) *GetContractHandler {
	return &GetContractHandler{repo: repo}
}

// Handle returns one contract
func (h *GetContractHandler) Handle(ctx context.Context, id string) (*domain.Contract, error) {
	return h.repo.FindByID(ctx, id)
}

// BySale returns the contract created for a sale
func (h *GetContractHandler) BySale(ctx context.Context, saleID string) (*domain.Contract, error) {
	all, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find contract: %w", err)
	}
	for i := range all {
		if all[i].SaleID == saleID {
			return &all[i], nil
		}
	}
	return nil, apperror.NotFound("no contract for sale %s", saleID)
}

// ListContractsQuery filters contracts. Search matches customer name, phone
// or contract number, case-insensitively.
type ListContractsQuery struct {
	Status domain.Status
	Search string
}

func (q ListContractsQuery) match(c *domain.Contract) bool {
	if q.Status != "" && c.Status != q.Status {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(q.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.CustomerName), term) ||
		strings.Contains(strings.ToLower(c.CustomerPhone), term) ||
		strings.Contains(strings.ToLower(c.ContractNumber), term)
}

// ListContractsHandler handles contract listing queries
type ListContractsHandler struct {
	repo    domain.ContractRepository
	sweeper LateSweeper
	clock   dateutil.Clock
}

// NewListContractsHandler creates a new list contracts handler. sweeper may be nil.
func NewListContractsHandler(repo domain.ContractRepository, sweeper LateSweeper, clock dateutil.Clock) *ListContractsHandler {
	return &ListContractsHandler{repo: repo, sweeper: sweeper, clock: clock}
}

func (h *ListContractsHandler) load(ctx context.Context) ([]domain.Contract, error) {
	if h.sweeper != nil {
		if _, err := h.sweeper.Handle(ctx); err != nil {
			return nil, err
		}
	}
	all, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return all, nil
}

// Handle returns matching contracts, newest first
func (h *ListContractsHandler) Handle(ctx context.Context, q ListContractsQuery) ([]domain.Contract, error) {
	all, err := h.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Contract, 0, len(all))
	for i := range all {
		if q.match(&all[i]) {
			out = append(out, all[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

// Due returns active contracts whose next payment falls on or before day,
// earliest first. Late contracts are listed by status instead.
func (h *ListContractsHandler) Due(ctx context.Context, day time.Time) ([]domain.Contract, error) {
	all, err := h.load(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := dateutil.EndOfDay(day)
	out := make([]domain.Contract, 0)
	for _, c := range all {
		if c.Status != domain.StatusActive {
			continue
		}
		if !c.NextPaymentDate.After(cutoff) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].NextPaymentDate.Before(out[j].NextPaymentDate) })
	return out, nil
}

// DueToday returns the contracts due by the end of today
func (h *ListContractsHandler) DueToday(ctx context.Context) ([]domain.Contract, error) {
	return h.Due(ctx, h.clock.Now())
}
