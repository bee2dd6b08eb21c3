package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/pos-ledger/internal/audit/domain"
)

// ArchivedTransaction is one row of the long-term audit archive
type ArchivedTransaction struct {
	ID         string    `gorm:"primaryKey;size:64"`
	Timestamp  time.Time `gorm:"index;not null"`
	ActionType string    `gorm:"index;size:64;not null"`
	User       string    `gorm:"size:128"`
	Details    []byte
	ArchivedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name
func (ArchivedTransaction) TableName() string {
	return "audit_archive"
}

// GormArchive stores audit entries received from the event stream
type GormArchive struct {
	db *gorm.DB
}

// NewGormArchive creates a new archive
func NewGormArchive(db *gorm.DB) *GormArchive {
	return &GormArchive{db: db}
}

// AutoMigrate creates the audit_archive table
func (a *GormArchive) AutoMigrate() error {
	return a.db.AutoMigrate(&ArchivedTransaction{})
}

// Store inserts tx. Redelivered entries are ignored.
func (a *GormArchive) Store(ctx context.Context, tx domain.Transaction) error {
	details, err := json.Marshal(tx.Details)
	if err != nil {
		return fmt.Errorf("failed to encode details: %w", err)
	}

	row := ArchivedTransaction{
		ID:         tx.ID,
		Timestamp:  tx.Timestamp,
		ActionType: tx.ActionType,
		User:       tx.User,
		Details:    details,
		ArchivedAt: time.Now(),
	}
	if err := a.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to archive transaction: %w", err)
	}
	return nil
}

// FindByAction returns archived entries of one action type, oldest first
func (a *GormArchive) FindByAction(ctx context.Context, actionType string) ([]domain.Transaction, error) {
	var rows []ArchivedTransaction
	if err := a.db.WithContext(ctx).
		Where("action_type = ?", actionType).
		Order("timestamp").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}

	out := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		tx := domain.Transaction{
			ID:         row.ID,
			Timestamp:  row.Timestamp,
			ActionType: row.ActionType,
			User:       row.User,
		}
		if len(row.Details) > 0 {
			if err := json.Unmarshal(row.Details, &tx.Details); err != nil {
				return nil, fmt.Errorf("failed to decode details of %s: %w", row.ID, err)
			}
		}
		out = append(out, tx)
	}
	return out, nil
}
