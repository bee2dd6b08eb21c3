package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultStockAlert is the low stock threshold used when none is configured
const DefaultStockAlert = 5

// Settings represents store wide configuration edited by the owner
type Settings struct {
	StoreName       string          `json:"storeName"`
	StorePhone      string          `json:"storePhone"`
	StoreAddress    string          `json:"storeAddress"`
	InvoiceMessage  string          `json:"invoiceMessage"`
	DefaultTax      decimal.Decimal `json:"defaultTax"`
	DefaultInterest decimal.Decimal `json:"defaultInterest"`
	StockAlert      int             `json:"stockAlert"`
}

// Defaults returns the settings of a fresh installation
func Defaults() Settings {
	return Settings{
		StoreName:      "My Store",
		InvoiceMessage: "Thank you for your purchase",
		StockAlert:     DefaultStockAlert,
	}
}

// Normalize fills unset values with defaults
func (s *Settings) Normalize() {
	if s.StockAlert <= 0 {
		s.StockAlert = DefaultStockAlert
	}
	if s.DefaultTax.IsNegative() {
		s.DefaultTax = decimal.Zero
	}
	if s.DefaultInterest.IsNegative() {
		s.DefaultInterest = decimal.Zero
	}
}

// SettingsRepository defines the contract for settings access
type SettingsRepository interface {
	Get(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}
