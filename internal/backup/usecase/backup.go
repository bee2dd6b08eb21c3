package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/internal/backup/domain"
	catalogdomain "github.com/tair/pos-ledger/internal/catalog/domain"
	installmentdomain "github.com/tair/pos-ledger/internal/installment/domain"
	invoicedomain "github.com/tair/pos-ledger/internal/invoice/domain"
	saledomain "github.com/tair/pos-ledger/internal/sale/domain"
	settingsdomain "github.com/tair/pos-ledger/internal/settings/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/logger"
)

// Repositories are the collections a backup covers
type Repositories struct {
	Products     catalogdomain.ProductRepository
	Categories   catalogdomain.CategoryRepository
	Sales        saledomain.SaleRepository
	Counter      saledomain.InvoiceCounter
	Contracts    installmentdomain.ContractRepository
	Transactions auditdomain.TransactionRepository
	Settings     settingsdomain.SettingsRepository
}

// BackupHandler exports and restores the store data
type BackupHandler struct {
	repos Repositories
	audit auditdomain.Recorder
	clock dateutil.Clock
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(repos Repositories, audit auditdomain.Recorder, clock dateutil.Clock) *BackupHandler {
	return &BackupHandler{repos: repos, audit: audit, clock: clock}
}

// Create snapshots every collection
func (h *BackupHandler) Create(ctx context.Context) (*domain.Backup, error) {
	products, err := h.repos.Products.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export products: %w", err)
	}
	categories, err := h.repos.Categories.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export categories: %w", err)
	}
	sales, err := h.repos.Sales.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export sales: %w", err)
	}
	contracts, err := h.repos.Contracts.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export contracts: %w", err)
	}
	txs, err := h.repos.Transactions.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export transactions: %w", err)
	}
	settings, err := h.repos.Settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export settings: %w", err)
	}

	return &domain.Backup{
		Products:     orEmpty(products),
		Categories:   orEmpty(categories),
		Sales:        orEmpty(sales),
		Installments: orEmpty(contracts),
		Transactions: orEmpty(txs),
		Settings:     &settings,
		Timestamp:    h.clock.Now(),
	}, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Write creates a backup and stores it in dir, returning the file path
func (h *BackupHandler) Write(ctx context.Context, dir string) (string, error) {
	backup, err := h.Create(ctx)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	path := filepath.Join(dir, domain.FileName(backup.Timestamp))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	logger.Info(ctx).
		Str("path", path).
		Int("products", len(backup.Products)).
		Int("sales", len(backup.Sales)).
		Int("installments", len(backup.Installments)).
		Msg("Backup created")
	return path, nil
}

// Decode parses a backup document
func Decode(data []byte) (*domain.Backup, error) {
	var b domain.Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, apperror.Validation("backup file is not valid JSON")
	}
	return &b, nil
}

// Restore replaces the store data with b. Products, categories and settings
// are required; missing sales and installments restore as empty.
func (h *BackupHandler) Restore(ctx context.Context, b *domain.Backup) error {
	if b == nil || b.Products == nil || b.Categories == nil || b.Settings == nil {
		return apperror.Validation("backup must contain products, categories and settings")
	}

	sales := b.Sales
	if sales == nil {
		sales = []saledomain.Sale{}
	}
	contracts := b.Installments
	if contracts == nil {
		contracts = []installmentdomain.Contract{}
	}

	if err := h.repos.Products.ReplaceAll(ctx, b.Products); err != nil {
		return fmt.Errorf("failed to restore products: %w", err)
	}
	if err := h.repos.Categories.ReplaceAll(ctx, b.Categories); err != nil {
		return fmt.Errorf("failed to restore categories: %w", err)
	}
	if _, err := h.repos.Categories.EnsureGeneral(ctx); err != nil {
		return fmt.Errorf("failed to restore categories: %w", err)
	}
	if err := h.repos.Sales.ReplaceAll(ctx, sales); err != nil {
		return fmt.Errorf("failed to restore sales: %w", err)
	}
	if err := h.repos.Contracts.ReplaceAll(ctx, contracts); err != nil {
		return fmt.Errorf("failed to restore installments: %w", err)
	}
	if b.Transactions != nil {
		if err := h.repos.Transactions.ReplaceAll(ctx, b.Transactions); err != nil {
			return fmt.Errorf("failed to restore transactions: %w", err)
		}
	}
	if err := h.repos.Settings.Save(ctx, *b.Settings); err != nil {
		return fmt.Errorf("failed to restore settings: %w", err)
	}

	// Keep new invoice numbers clear of restored ones.
	highest := 0
	for _, s := range sales {
		if n := invoicedomain.Sequence(s.Number); n > highest {
			highest = n
		}
	}
	if err := h.repos.Counter.Raise(ctx, highest); err != nil {
		return fmt.Errorf("failed to restore invoice counter: %w", err)
	}

	_ = h.audit.Record(ctx, auditdomain.ActionBackupRestored, map[string]any{
		"backupTimestamp": b.Timestamp,
		"products":        len(b.Products),
		"sales":           len(sales),
		"installments":    len(contracts),
	})

	logger.Info(ctx).
		Time("backup_timestamp", b.Timestamp).
		Int("products", len(b.Products)).
		Int("sales", len(sales)).
		Int("installments", len(contracts)).
		Msg("Backup restored")
	return nil
}

// RestoreFile reads and restores the backup at path
func (h *BackupHandler) RestoreFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	b, err := Decode(data)
	if err != nil {
		return err
	}
	return h.Restore(ctx, b)
}
