package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/timmy/memeverse/internal/config"
	"github.com/timmy/memeverse/internal/domain"
	"github.com/timmy/memeverse/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB opens the configured SQL database and migrates the kv_entries table.
// Parameters:
//   - cfg: database configuration; Driver is "sqlite" or "postgres".
//
// Returns:
//   - *gorm.DB: initialized database handle.
//   - error: non-nil if the driver is unknown, or connection or migration fails.
func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	log := logger.GetDefault().WithFields(logger.Fields{
		logger.FieldComponent: "db",
		"driver":              cfg.Driver,
	})

	// gorm's own logger prints through logrus so SQL warnings share the JSON format.
	gormConfig := &gorm.Config{
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	var db *gorm.DB
	var err error
	switch cfg.Driver {
	case "postgres":
		db, err = openPostgres(cfg, gormConfig)
	case "sqlite", "":
		db, err = openSQLite(cfg, gormConfig)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&domain.KVEntry{}); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	log.Info("Database ready")
	return db, nil
}

func openPostgres(cfg *config.DatabaseConfig, gormConfig *gorm.Config) (*gorm.DB, error) {
	// PreferSimpleProtocol keeps transaction poolers (pgbouncer, Supabase 6543) working
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return db, nil
}

func openSQLite(cfg *config.DatabaseConfig, gormConfig *gorm.Config) (*gorm.DB, error) {
	if cfg.Path != "" && cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	// Concurrent readers while the API and the ingest CLI share one file.
	db.Exec("PRAGMA journal_mode=WAL")

	return db, nil
}

// NewKVStore builds the key-value substrate selected by cfg.Driver.
// The "memory" driver needs no database and loses everything on exit.
func NewKVStore(cfg *config.DatabaseConfig) (KVStore, error) {
	if cfg.Driver == "memory" {
		return NewMemoryKV(), nil
	}
	db, err := InitDB(cfg)
	if err != nil {
		return nil, err
	}
	return NewGormKV(db), nil
}
