package loader

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockKey   = "loader:lock"
	reportKey = "loader:last_run"
)

// ErrLoadInProgress means another loader run holds the lock
var ErrLoadInProgress = errors.New("another load is in progress")

// releaseScript deletes the lock only if this run still owns it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock guards against concurrent loader runs
type RunLock struct {
	rdb   *redis.Client
	token string
}

// AcquireRunLock takes the loader lock for at most ttl
func AcquireRunLock(ctx context.Context, rdb *redis.Client, runID string, ttl time.Duration) (*RunLock, error) {
	ok, err := rdb.SetNX(ctx, lockKey, runID, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire loader lock: %w", err)
	}
	if !ok {
		holder, _ := rdb.Get(ctx, lockKey).Result()
		return nil, fmt.Errorf("%w (held by run %s)", ErrLoadInProgress, holder)
	}
	return &RunLock{rdb: rdb, token: runID}, nil
}

// Release frees the lock if it has not expired and been retaken
func (l *RunLock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.rdb, []string{lockKey}, l.token).Err(); err != nil {
		return fmt.Errorf("release loader lock: %w", err)
	}
	return nil
}

// RecordReport stores the run summary for `loader -status`
func RecordReport(ctx context.Context, rdb *redis.Client, r Report) error {
	status := "succeeded"
	errText := ""
	if r.Err != nil {
		status = "failed"
		errText = r.Err.Error()
	}
	fields := map[string]interface{}{
		"run_id":      r.RunID,
		"status":      status,
		"started_at":  r.StartedAt.Format(time.RFC3339),
		"finished_at": r.FinishedAt.Format(time.RFC3339),
		"rows_read":   strconv.Itoa(r.RowsRead),
		"rows_kept":   strconv.Itoa(r.RowsKept),
		"markets":     strconv.Itoa(r.Markets),
		"commodities": strconv.Itoa(r.Commodities),
		"prices":      strconv.Itoa(r.Prices),
		"failed_step": r.FailedStep,
		"error":       errText,
	}
	pipe := rdb.TxPipeline()
	pipe.Del(ctx, reportKey)
	pipe.HSet(ctx, reportKey, fields)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record loader report: %w", err)
	}
	return nil
}

// LastReport returns the most recent run summary; empty when none was recorded
func LastReport(ctx context.Context, rdb *redis.Client) (map[string]string, error) {
	fields, err := rdb.HGetAll(ctx, reportKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read loader report: %w", err)
	}
	return fields, nil
}
