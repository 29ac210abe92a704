package db

import (
	"fmt"

	"github.com/foodprices-project/backend/internal/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// ConnectSQLite opens an SQLite database file (":memory:" for an in-process store).
// SQLite serialises writers, so the pool is capped at a single connection;
// this also keeps one shared in-memory database alive for the pool's lifetime.
func ConnectSQLite(path string, level gormLogger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if path != ":memory:" {
		logger.Info("✅ Connected to SQLite at %s", path)
	}
	return db, nil
}

// OpenMemory returns a migrated in-memory store
func OpenMemory() (*gorm.DB, error) {
	conn, err := ConnectSQLite(":memory:", gormLogger.Silent)
	if err != nil {
		return nil, err
	}
	if err := Migrate(conn); err != nil {
		Close(conn)
		return nil, err
	}
	return conn, nil
}
