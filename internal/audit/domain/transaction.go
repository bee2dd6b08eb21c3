package domain

import (
	"context"
	"time"
)

// Action types recorded in the audit log
const (
	ActionProductCreated     = "product_created"
	ActionProductUpdated     = "product_updated"
	ActionProductDeleted     = "product_deleted"
	ActionCategoryCreated    = "category_created"
	ActionCategoryUpdated    = "category_updated"
	ActionCategoryDeleted    = "category_deleted"
	ActionCashSale           = "cash_sale"
	ActionInstallmentSale    = "installment_sale"
	ActionInstallmentPayment = "installment_payment"
	ActionUserCreated        = "user_created"
	ActionUserUpdated        = "user_updated"
	ActionUserDeleted        = "user_deleted"
	ActionSettingsUpdated    = "settings_updated"
	ActionBackupRestored     = "backup_restored"
)

// SystemActor is recorded when no user is attached to the context
const SystemActor = "system"

// Transaction is one append-only audit log entry
type Transaction struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	ActionType string         `json:"actionType"`
	Details    map[string]any `json:"details"`
	User       string         `json:"user"`
}

// TransactionRepository defines the contract for audit log access
type TransactionRepository interface {
	Append(ctx context.Context, tx Transaction) error
	FindAll(ctx context.Context) ([]Transaction, error)
	ReplaceAll(ctx context.Context, txs []Transaction) error
}

// Recorder appends audit entries on behalf of the other contexts
type Recorder interface {
	Record(ctx context.Context, actionType string, details map[string]any) error
}

type actorKey struct{}

// WithActor attaches the acting username to ctx
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorKey{}, username)
}

// ActorFrom returns the acting username, or SystemActor
func ActorFrom(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok && v != "" {
		return v
	}
	return SystemActor
}
