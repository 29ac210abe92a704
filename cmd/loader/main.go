/**
 * @description
 * Batch loader entry point.
 * Reads the WFP food prices CSV extract, cleans it, and loads markets,
 * commodities and prices into the configured store.
 *
 * @dependencies
 * - github.com/foodprices-project/backend/internal/loader
 * - github.com/foodprices-project/backend/internal/db
 * - github.com/pkg/errors: error wrapping for run()
 *
 * @notes
 * - Meant to run once against an empty database. Re-running fails on the
 *   first duplicate market and leaves committed rows in place.
 * - With REDIS_URL set, a lock keeps two runs from overlapping and the last
 *   run report can be printed with -status.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/foodprices-project/backend/internal/config"
	"github.com/foodprices-project/backend/internal/db"
	"github.com/foodprices-project/backend/internal/loader"
	"github.com/foodprices-project/backend/internal/logger"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

func main() {
	csvPath := flag.String("csv", "", "path to the CSV extract (overrides LOADER_CSV_PATH)")
	status := flag.Bool("status", false, "print the last recorded run and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.File); err != nil {
		logger.Fatal("Failed to configure logger: %v", err)
	}
	if *csvPath != "" {
		cfg.Loader.CSVPath = *csvPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *status {
		err = printStatus(ctx, cfg)
	} else {
		err = run(ctx, cfg)
	}
	if err != nil {
		logger.Error("❌ %v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger.Info("🚀 Starting CSV load from %s", cfg.Loader.CSVPath)

	rdb, err := db.ConnectRedis(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "connect redis")
	}
	if rdb != nil {
		defer rdb.Close()

		lock, err := loader.AcquireRunLock(ctx, rdb, uuid.NewString(), cfg.Loader.LockTTL)
		if err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(context.Background()); err != nil {
				logger.Warn("%v", err)
			}
		}()
	} else {
		logger.Warn("REDIS_URL not set; running without the single-run guard")
	}

	conn, err := db.Connect(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "connect database")
	}
	defer db.Close(conn)

	if err := db.Migrate(conn); err != nil {
		return errors.Wrap(err, "migrate")
	}

	f, err := os.Open(cfg.Loader.CSVPath)
	if err != nil {
		return errors.Wrap(err, "open csv")
	}
	defer f.Close()

	report := loader.New(conn, cfg.Loader.BatchSize).Run(ctx, f, cfg.Loader.Category)

	logger.WithFields(logger.Fields{
		"run_id":      report.RunID,
		"rows_read":   report.RowsRead,
		"rows_kept":   report.RowsKept,
		"markets":     report.Markets,
		"commodities": report.Commodities,
		"prices":      report.Prices,
		"duration":    report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("load finished")

	if rdb != nil {
		if err := loader.RecordReport(context.Background(), rdb, report); err != nil {
			logger.Warn("%v", err)
		}
	}

	if !report.Succeeded() {
		var stepErr *loader.StepError
		if errors.As(report.Err, &stepErr) && stepErr.Duplicate {
			logger.Warn("Step %q hit existing rows; the database looks already loaded", stepErr.Step)
		}
		return errors.Wrapf(report.Err, "load run %s", report.RunID)
	}
	return nil
}

func printStatus(ctx context.Context, cfg *config.Config) error {
	rdb, err := db.ConnectRedis(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "connect redis")
	}
	if rdb == nil {
		return errors.New("REDIS_URL is required for -status")
	}
	defer rdb.Close()

	return writeStatus(ctx, rdb)
}

func writeStatus(ctx context.Context, rdb *redis.Client) error {
	fields, err := loader.LastReport(ctx, rdb)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		fmt.Println("no loader run recorded")
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-12s %s\n", k, fields[k])
	}
	return nil
}
