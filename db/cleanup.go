package db

import (
	"context"
	"fmt"
	"time"
)

// CleanupResult describes one retention pass.
type CleanupResult struct {
	Deleted  int64
	Duration time.Duration
}

// Cleanup deletes generation records older than retentionDays. Zero keeps
// everything.
//
// Example:
//
//	result, err := database.Cleanup(ctx, 30)
func (d *Database) Cleanup(ctx context.Context, retentionDays int) (CleanupResult, error) {
	start := time.Now()
	var result CleanupResult

	if retentionDays < 0 {
		return result, fmt.Errorf("retentionDays must be non-negative, got %d", retentionDays)
	}
	if retentionDays == 0 {
		return result, nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.db == nil {
		return result, errClosed
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format(timeLayout)
	res, err := d.db.ExecContext(ctx, "DELETE FROM generation_log WHERE created_at < ?", cutoff)
	if err != nil {
		return result, fmt.Errorf("failed to delete old generation records: %w", err)
	}
	result.Deleted, _ = res.RowsAffected()
	result.Duration = time.Since(start)
	return result, nil
}

// RunCleanupScheduler runs Cleanup immediately and then every interval
// until ctx is cancelled. onCleanup, if set, receives every result.
func (d *Database) RunCleanupScheduler(ctx context.Context, retentionDays int, interval time.Duration, onCleanup func(CleanupResult, error)) {
	run := func() {
		result, err := d.Cleanup(ctx, retentionDays)
		if onCleanup != nil && ctx.Err() == nil {
			onCleanup(result, err)
		}
	}

	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
