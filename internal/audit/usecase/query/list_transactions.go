package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/pkg/dateutil"
)

// ListTransactionsQuery selects audit entries in an inclusive day range.
// Zero bounds are open; an empty ActionType matches every entry.
type ListTransactionsQuery struct {
	Start      time.Time
	End        time.Time
	ActionType string
}

// ListTransactionsHandler handles audit log queries
type ListTransactionsHandler struct {
	repo domain.TransactionRepository
}

// NewListTransactionsHandler creates a new list transactions handler
func NewListTransactionsHandler(repo domain.TransactionRepository) *ListTransactionsHandler {
	return &ListTransactionsHandler{repo: repo}
}

// Handle returns matching entries oldest first
func (h *ListTransactionsHandler) Handle(ctx context.Context, q ListTransactionsQuery) ([]domain.Transaction, error) {
	all, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	out := make([]domain.Transaction, 0, len(all))
	for _, tx := range all {
		if !q.Start.IsZero() && tx.Timestamp.Before(dateutil.StartOfDay(q.Start)) {
			continue
		}
		if !q.End.IsZero() && tx.Timestamp.After(dateutil.EndOfDay(q.End)) {
			continue
		}
		if q.ActionType != "" && tx.ActionType != q.ActionType {
			continue
		}
		out = append(out, tx)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// ByDate returns the entries of one calendar day
func (h *ListTransactionsHandler) ByDate(ctx context.Context, day time.Time) ([]domain.Transaction, error) {
	return h.Handle(ctx, ListTransactionsQuery{Start: day, End: day})
}
