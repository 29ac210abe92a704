/**
 * @description
 * Relational store connection manager using GORM.
 * Handles dialect selection, connection pooling, startup retries and schema creation.
 *
 * @dependencies
 * - gorm.io/gorm: ORM library
 * - gorm.io/driver/postgres: Postgres driver
 * - gorm.io/driver/sqlite: SQLite driver (local runs, tests)
 * - github.com/cenkalti/backoff/v4: startup retry
 */

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/foodprices-project/backend/internal/config"
	"github.com/foodprices-project/backend/internal/logger"
	"github.com/foodprices-project/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Connect opens the configured store, retrying until cfg.DB.ConnectTimeout elapses
func Connect(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	bOff := backoff.NewExponentialBackOff()
	bOff.MaxElapsedTime = cfg.DB.ConnectTimeout

	var conn *gorm.DB
	err := backoff.RetryNotify(
		func() (err error) {
			if cfg.DB.IsSQLite() {
				conn, err = ConnectSQLite(cfg.DB.SQLitePath(), gormLogLevel(cfg.Server.Env))
				return err
			}
			conn, err = ConnectPostgres(ctx, cfg)
			return err
		},
		backoff.WithContext(bOff, ctx),
		func(err error, d time.Duration) {
			logger.Error("Database connect error: %v. Will retry after %s", err, d)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return conn, nil
}

// ConnectPostgres initializes the PostgreSQL connection
func ConnectPostgres(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DB.URL,
		PreferSimpleProtocol: true, // disable prepared statements to avoid stmtcache collisions behind poolers
	}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogLevel(cfg.Server.Env)),
	})
	if err != nil {
		return nil, err
	}

	// Get generic database object to set connection pool params
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Info("✅ Connected to PostgreSQL")
	return db, nil
}

// Migrate creates the markets, commodities and prices tables if they are absent
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get sql.DB for close: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Failed to close database: %v", err)
	}
}

// gormLogLevel configures the GORM logger based on environment
func gormLogLevel(env string) gormLogger.LogLevel {
	switch env {
	case "development":
		return gormLogger.Info
	case "staging":
		return gormLogger.Warn
	case "test":
		return gormLogger.Silent
	default:
		return gormLogger.Error
	}
}
