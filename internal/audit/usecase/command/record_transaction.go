package command

import (
	"context"
	"fmt"

	"github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/idgen"
	"github.com/tair/pos-ledger/pkg/logger"
)

// TransactionPublisher forwards recorded entries to an event stream
type TransactionPublisher interface {
	PublishTransaction(ctx context.Context, tx domain.Transaction) error
}

// RecordTransactionCommand represents the command to append an audit entry
type RecordTransactionCommand struct {
	ActionType string
	Details    map[string]any
	User       string
}

// RecordTransactionHandler handles audit log appends
type RecordTransactionHandler struct {
	repo      domain.TransactionRepository
	publisher TransactionPublisher
	clock     dateutil.Clock
}

// NewRecordTransactionHandler creates a new record transaction handler.
// publisher may be nil.
func NewRecordTransactionHandler(repo domain.TransactionRepository, publisher TransactionPublisher, clock dateutil.Clock) *RecordTransactionHandler {
	return &RecordTransactionHandler{repo: repo, publisher: publisher, clock: clock}
}

// Handle executes the record transaction command
func (h *RecordTransactionHandler) Handle(ctx context.Context, cmd RecordTransactionCommand) (*domain.Transaction, error) {
	if cmd.ActionType == "" {
		return nil, fmt.Errorf("action type is required")
	}
	if cmd.User == "" {
		cmd.User = domain.SystemActor
	}
	if cmd.Details == nil {
		cmd.Details = map[string]any{}
	}

	tx := domain.Transaction{
		ID:         idgen.New(),
		Timestamp:  h.clock.Now(),
		ActionType: cmd.ActionType,
		Details:    cmd.Details,
		User:       cmd.User,
	}

	if err := h.repo.Append(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	// The stream is best effort; the local log is the source of truth.
	if h.publisher != nil {
		if err := h.publisher.PublishTransaction(ctx, tx); err != nil {
			logger.Warn(ctx).
				Err(err).
				Str("transaction_id", tx.ID).
				Str("action_type", tx.ActionType).
				Msg("Failed to publish audit transaction")
		}
	}

	return &tx, nil
}

// Record implements domain.Recorder using the actor attached to ctx. Callers
// treat the audit log as a side effect of an action that already happened,
// so a failed append is logged and counted here.
func (h *RecordTransactionHandler) Record(ctx context.Context, actionType string, details map[string]any) error {
	user := domain.ActorFrom(ctx)
	_, err := h.Handle(ctx, RecordTransactionCommand{
		ActionType: actionType,
		Details:    details,
		User:       user,
	})
	if err != nil {
		recordFailures.WithLabelValues(actionType).Inc()
		logger.Error(ctx).
			Err(err).
			Str("action_type", actionType).
			Str("user", user).
			Interface("details", details).
			Msg("Failed to record audit transaction")
	}
	return err
}
