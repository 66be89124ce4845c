package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config contains database connection options.
type Config struct {
	Driver   string
	Path     string // SQLite database path; empty or ":memory:" for in-memory
	DSN      string // Optional DSN override
	Host     string
	Port     int
	Name     string // Database name; names the shared in-memory database for SQLite
	User     string
	Password string
	Options  map[string]string
}

// Open initialises a gorm.DB for the configured driver.
func Open(cfg Config) (*gorm.DB, error) {
	d, ok := lookupDialect(cfg.Driver)
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	dsn, err := d.dsn(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d.dialector(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}

	if d.afterOpen != nil {
		if err := d.afterOpen(db); err != nil {
			_ = Close(db)
			return nil, fmt.Errorf("prepare %s: %w", d.name, err)
		}
	}
	return db, nil
}

// Migrate runs schema migrations during application start-up.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("obtain sql db: %w", err)
	}
	return sqlDB.Close()
}
