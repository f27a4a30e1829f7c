// Package store opens the database, runs migrations, and provides
// accessors for the persisted settings table.
package store

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/rentdesk/rentdesk/internal/config"
	"github.com/rentdesk/rentdesk/internal/model"
)

// Open connects to the configured database and runs migrations.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema. Beyond AutoMigrate it installs the
// partial unique index that guarantees at most one active lease per room;
// the index doubles as the concurrency guard against two simultaneous
// assign-tenant requests racing past the service-level check.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Building{},
		&model.Floor{},
		&model.Room{},
		&model.Tenant{},
		&model.Lease{},
		&model.RentPayment{},
		&model.MeterReading{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.Setting{},
	); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_leases_one_active_per_room
		 ON leases (room_id) WHERE status = 'active'`,
	).Error
	if err != nil {
		return fmt.Errorf("creating active-lease index: %w", err)
	}
	return nil
}

// SettingValue returns the value stored under key, or def when absent.
func SettingValue(db *gorm.DB, key, def string) string {
	var s model.Setting
	if err := db.First(&s, "key = ?", key).Error; err != nil {
		return def
	}
	return s.Value
}

// SetSetting creates or updates the setting under key.
func SetSetting(db *gorm.DB, key, value string) error {
	s := model.Setting{Key: key, Value: value}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&s).Error
}
