// database/db.go - Database Connection (PostgreSQL or SQLite)
package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ingresosgo/config"
)

var db *gorm.DB

// Open connects to the configured database without touching the package global.
func Open(cfg config.Database) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(cfg.LogLevel)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		conn, err := gorm.Open(sqlite.Open(cfg.Path+"?_foreign_keys=on&_busy_timeout=5000"), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		// one writer at a time; transactions serialize on this connection
		sqlDB.SetMaxOpenConns(1)
		return conn, nil

	case "postgres", "":
		conn, err := gorm.Open(postgres.Open(postgresDSN(cfg)), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
		return conn, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func postgresDSN(cfg config.Database) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnvOrDefault("DB_HOST", "localhost"),
		getEnvOrDefault("DB_PORT", "5432"),
		getEnvOrDefault("DB_USER", "postgres"),
		getEnvOrDefault("DB_PASSWORD", ""),
		getEnvOrDefault("DB_NAME", "ingresosgo"),
		getEnvOrDefault("DB_SSLMODE", "disable"),
	)
}

func logLevel(level string) logger.LogLevel {
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

// InitDB opens the database, stores it in the package global and migrates it.
func InitDB(cfg config.Database) {
	var err error
	db, err = Open(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Printf("✅ %s database connected successfully", driverName(cfg.Driver))

	RunMigrations()
}

func driverName(driver string) string {
	if driver == "sqlite" {
		return "SQLite"
	}
	return "PostgreSQL"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	if db == nil {
		log.Fatal("Database not initialized. Call InitDB() first.")
	}
	return db
}

// CloseDB closes the database connection
func CloseDB() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %v", err)
	}

	log.Println("Database connection closed")
	return nil
}
