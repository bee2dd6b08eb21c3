package app

import (
	"gorm.io/gorm"

	"github.com/tair/pos-ledger/pkg/config"
	"github.com/tair/pos-ledger/pkg/database"
)

// openSQL opens the gorm handle behind the postgres and sqlite backends
func openSQL(cfg *config.Config, backend string) (*gorm.DB, error) {
	if backend == BackendSQLite {
		return database.NewSQLiteConnection(cfg.Database.SQLitePath)
	}
	return database.NewGormConnection(cfg.Database)
}
