/**
 * @description
 * Batch loader: writes a cleaned dataset into markets, commodities and prices.
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/jackc/pgx/v5/pgconn: Postgres error codes
 * - github.com/mattn/go-sqlite3: SQLite error codes
 *
 * @notes
 * - Each entity type is its own all-or-nothing transaction. A failed step rolls
 *   back only itself and stops the run; earlier steps stay committed.
 */

package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/foodprices-project/backend/internal/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Step names, in execution order
const (
	StepMarkets     = "markets"
	StepCommodities = "commodities"
	StepPrices      = "prices"
)

const pgUniqueViolation = "23505"

// Report summarises one run
type Report struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	RowsRead    int
	RowsKept    int
	Markets     int
	Commodities int
	Prices      int
	FailedStep  string
	Err         error
}

// Succeeded reports whether every step committed
func (r Report) Succeeded() bool {
	return r.Err == nil
}

// StepError identifies the step whose transaction was rolled back
type StepError struct {
	Step      string
	Duplicate bool
	Err       error
}

func (e *StepError) Error() string {
	if e.Duplicate {
		return fmt.Sprintf("insert %s: rows already present: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("insert %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Loader writes datasets through GORM
type Loader struct {
	db        *gorm.DB
	batchSize int
}

// New creates a Loader inserting batchSize rows per statement
func New(db *gorm.DB, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &Loader{db: db, batchSize: batchSize}
}

// Run reads, cleans and loads a CSV extract
func (l *Loader) Run(ctx context.Context, r io.Reader, category string) Report {
	report := Report{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}

	rows, err := ReadRows(r)
	if err != nil {
		report.Err = fmt.Errorf("read csv: %w", err)
		report.FinishedAt = time.Now().UTC()
		return report
	}

	records, stats := Clean(rows, category)
	report.RowsRead, report.RowsKept = stats.Read, stats.Kept
	logger.WithFields(logger.Fields{
		"run_id":           report.RunID,
		"read":             stats.Read,
		"kept":             stats.Kept,
		"no_country":       stats.NoCountry,
		"other_category":   stats.OtherCategory,
		"missing_price":    stats.MissingPrice,
		"invalid_id":       stats.InvalidID,
		"unparsable_dates": stats.UnparsableDates,
	}).Info("cleaned csv")

	l.Load(ctx, BuildDataset(records), &report)
	return report
}

// Load inserts markets, then commodities, then prices, filling in report
func (l *Loader) Load(ctx context.Context, ds Dataset, report *Report) {
	defer func() { report.FinishedAt = time.Now().UTC() }()

	steps := []struct {
		name  string
		count int
		rows  interface{}
		into  *int
	}{
		{StepMarkets, len(ds.Markets), &ds.Markets, &report.Markets},
		{StepCommodities, len(ds.Commodities), &ds.Commodities, &report.Commodities},
		{StepPrices, len(ds.Prices), &ds.Prices, &report.Prices},
	}

	for _, step := range steps {
		if err := l.insert(ctx, step.name, step.count, step.rows); err != nil {
			report.FailedStep = step.name
			report.Err = err
			logger.Error("Error loading CSV: %v", err)
			return
		}
		*step.into = step.count
		logger.Info("Inserted %d %s", step.count, step.name)
	}
	logger.Info("✨ CSV data loaded successfully!")
}

func (l *Loader) insert(ctx context.Context, step string, count int, rows interface{}) error {
	if count == 0 {
		return nil
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, l.batchSize).Error
	})
	if err != nil {
		return &StepError{Step: step, Duplicate: isDuplicateKey(err), Err: err}
	}
	return nil
}

// isDuplicateKey recognises primary-key/unique violations from either store
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
