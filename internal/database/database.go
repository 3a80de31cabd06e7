package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/models"
)

// Connect opens the SQLite database at dbPath with WAL journaling and a busy
// timeout so that concurrent rollbacks wait for the writer instead of
// failing immediately.
func Connect(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY churn.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Contact{},
		&models.Deal{},
		&models.Invoice{},
		&models.Expense{},
		&models.Document{},
		&models.GalleryItem{},
		&models.AuditEntry{},
		&models.DecisionTrail{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func dsn(path string) string {
	params := "_journal_mode=WAL&_busy_timeout=5000"
	if strings.Contains(path, "mode=memory") || strings.Contains(path, ":memory:") {
		params = "_busy_timeout=5000"
	}
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}
