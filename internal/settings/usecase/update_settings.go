package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/internal/settings/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
)

// UpdateSettingsCommand represents the command to replace store settings
type UpdateSettingsCommand struct {
	StoreName       string
	StorePhone      string
	StoreAddress    string
	InvoiceMessage  string
	DefaultTax      decimal.Decimal
	DefaultInterest decimal.Decimal
	StockAlert      int
}

// SettingsHandler reads and updates store settings
type SettingsHandler struct {
	repo  domain.SettingsRepository
	audit auditdomain.Recorder
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(repo domain.SettingsRepository, audit auditdomain.Recorder) *SettingsHandler {
	return &SettingsHandler{repo: repo, audit: audit}
}

// Get returns the current settings
func (h *SettingsHandler) Get(ctx context.Context) (domain.Settings, error) {
	s, err := h.repo.Get(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return s, nil
}

// Update executes the update settings command
func (h *SettingsHandler) Update(ctx context.Context, cmd UpdateSettingsCommand) (domain.Settings, error) {
	if cmd.StoreName == "" {
		return domain.Settings{}, apperror.Validation("store name is required")
	}
	if cmd.DefaultTax.IsNegative() || cmd.DefaultInterest.IsNegative() {
		return domain.Settings{}, apperror.Validation("rates cannot be negative")
	}
	if cmd.StockAlert < 0 {
		return domain.Settings{}, apperror.Validation("stock alert cannot be negative")
	}

	s := domain.Settings{
		StoreName:       cmd.StoreName,
		StorePhone:      cmd.StorePhone,
		StoreAddress:    cmd.StoreAddress,
		InvoiceMessage:  cmd.InvoiceMessage,
		DefaultTax:      cmd.DefaultTax,
		DefaultInterest: cmd.DefaultInterest,
		StockAlert:      cmd.StockAlert,
	}
	s.Normalize()

	if err := h.repo.Save(ctx, s); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	if h.audit != nil {
		_ = h.audit.Record(ctx, auditdomain.ActionSettingsUpdated, map[string]any{
			"storeName":  s.StoreName,
			"stockAlert": s.StockAlert,
		})
	}

	return s, nil
}
