/**
 * @description
 * Main entry point for the WFP Food Prices API.
 * Loads configuration, connects to the store, and serves the read-only query endpoints.
 *
 * @dependencies
 * - github.com/foodprices-project/backend/internal/config: Config loader
 * - github.com/foodprices-project/backend/internal/db: Database connections
 * - github.com/foodprices-project/backend/internal/api: Fiber app and routes
 *
 * @notes
 * - Tables are created on startup if absent; existing data is never touched.
 * - SIGINT/SIGTERM drain in-flight requests before exit.
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodprices-project/backend/internal/api"
	"github.com/foodprices-project/backend/internal/config"
	"github.com/foodprices-project/backend/internal/db"
	"github.com/foodprices-project/backend/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.File); err != nil {
		logger.Fatal("Failed to configure logger: %v", err)
	}

	// 2. Connect and migrate
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("Database connection failed: %v", err)
	}
	defer db.Close(conn)

	if err := db.Migrate(conn); err != nil {
		logger.Fatal("Migration failed: %v", err)
	}

	// 3. Fiber app
	app := api.NewApp(conn, true)

	// 4. Start Server
	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Starting WFP Food Prices API on port %s (%s)", cfg.Server.Port, cfg.Server.Env)
		errCh <- app.Listen(":" + cfg.Server.Port)
	}()

	// 5. Graceful Shutdown
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server stopped: %v", err)
			db.Close(conn)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("Shutting down API...")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("Error during shutdown: %v", err)
		}
	}
	logger.Info("API exited.")
}
