package domain

import (
	"fmt"
	"time"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	catalogdomain "github.com/tair/pos-ledger/internal/catalog/domain"
	installmentdomain "github.com/tair/pos-ledger/internal/installment/domain"
	saledomain "github.com/tair/pos-ledger/internal/sale/domain"
	settingsdomain "github.com/tair/pos-ledger/internal/settings/domain"
)

// Backup is a full snapshot of the store data. Users and the session are
// never exported.
type Backup struct {
	Products     []catalogdomain.Product      `json:"products"`
	Categories   []catalogdomain.Category     `json:"categories"`
	Sales        []saledomain.Sale            `json:"sales"`
	Installments []installmentdomain.Contract `json:"installments"`
	Transactions []auditdomain.Transaction    `json:"transactions,omitempty"`
	Settings     *settingsdomain.Settings     `json:"settings"`
	Timestamp    time.Time                    `json:"timestamp"`
}

// FileName is the name a backup taken at t is written under
func FileName(t time.Time) string {
	return fmt.Sprintf("pos-backup-%s.json", t.Format("2006-01-02"))
}
