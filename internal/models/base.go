package models

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the single-file store and migrates the schema.
// AutoMigrate adds missing columns idempotently, so the soft-delete
// flags appear on databases created before the flag existed.
func InitDB(config DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(config.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&Patient{},
		&Visit{},
		&AuditLog{},
		&DeletedRecord{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string
}

// ResetPool drops the pooled SQLite connections so the next query
// opens the store file fresh. Must be called after the file is
// replaced on disk; pooled connections would otherwise keep serving
// the old inode. Callers serialize this against in-flight queries.
func ResetPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(0)
	sqlDB.SetMaxIdleConns(2)
	return nil
}
