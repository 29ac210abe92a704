package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/foodprices-project/backend/internal/config"
	"github.com/foodprices-project/backend/internal/models"
)

func TestConnectSQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test"},
		DB: config.DBConfig{
			URL:            "sqlite://" + filepath.Join(t.TempDir(), "prices.db"),
			ConnectTimeout: time.Second,
		},
	}

	conn, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer Close(conn)

	if err := Migrate(conn); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	// Create-if-absent: a second run must be a no-op.
	if err := Migrate(conn); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	for _, table := range []string{"markets", "commodities", "prices"} {
		if !conn.Migrator().HasTable(table) {
			t.Errorf("table %s not created", table)
		}
	}
	if !conn.Migrator().HasIndex(&models.Price{}, "idx_prices_market_commodity_date") {
		t.Error("composite price index not created")
	}
}

func TestOpenMemoryIsUsable(t *testing.T) {
	conn, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	defer Close(conn)

	m := models.Market{MarketID: 7, MarketName: "Kabul"}
	if err := conn.Create(&m).Error; err != nil {
		t.Fatalf("create market: %v", err)
	}
	var count int64
	if err := conn.Model(&models.Market{}).Count(&count).Error; err != nil || count != 1 {
		t.Fatalf("count = %d, err = %v", count, err)
	}
}

func TestConnectRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	cfg := &config.Config{Redis: config.RedisConfig{URL: "redis://" + mr.Addr()}}
	client, err := ConnectRedis(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ConnectRedis() error = %v", err)
	}
	defer client.Close()

	if client.Options().MaxRetries != 2 {
		t.Errorf("MaxRetries default not applied: %d", client.Options().MaxRetries)
	}
}

func TestConnectRedisDisabled(t *testing.T) {
	client, err := ConnectRedis(context.Background(), &config.Config{})
	if err != nil || client != nil {
		t.Fatalf("ConnectRedis() = %v, %v; want nil, nil", client, err)
	}
}

func TestGormLogLevel(t *testing.T) {
	if gormLogLevel("development") <= gormLogLevel("production") {
		t.Error("development should log more than production")
	}
}
