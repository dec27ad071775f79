package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the Supabase Postgres database.
func Connect(dsn, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), Options(logLevel))
	if err != nil {
		return nil, fmt.Errorf("connexion à Supabase: %w", err)
	}
	return db, nil
}

// Options is shared with tests that open gorm over sqlmock.
func Options(logLevel string) *gorm.Config {
	return &gorm.Config{
		Logger:                 logger.Default.LogMode(parseLevel(logLevel)),
		SkipDefaultTransaction: true,
	}
}

func Migrate(db *gorm.DB, models ...interface{}) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	return nil
}

func parseLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
