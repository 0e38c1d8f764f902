package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicateURL is returned when an article with the same url is already stored
	ErrDuplicateURL = errors.New("article url already exists")
	// ErrDuplicateFeed is returned when a feed with the same url is already subscribed
	ErrDuplicateFeed = errors.New("feed url already exists")
)

// isLockError checks if an error is a SQLite lock/busy error
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked")
}

// isUniqueViolation checks if an error is a SQLite unique constraint failure
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// withRetry runs fn with backoff while it fails on lock errors, any other error stops
// retrying and is returned as is
func withRetry(ctx context.Context, fn func() error) error {
	var critical error
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	err := retrier.Do(ctx, func() error {
		err := fn()
		if err == nil || isLockError(err) {
			return err // nil stops, lock error is retried
		}
		critical = err
		return nil
	})
	if critical != nil {
		return critical
	}
	return err
}

// advanceSyncTime moves last_synced_at of the feed forward to ts, never backward
func advanceSyncTime(ctx context.Context, tx *sqlx.Tx, feedID int64, ts time.Time) error {
	var current sql.NullTime
	err := tx.GetContext(ctx, &current, "SELECT last_synced_at FROM feeds WHERE id = ?", feedID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("feed %d: %w", feedID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get last sync time: %w", err)
	}

	ts = ts.UTC()
	if current.Valid && !ts.After(current.Time) {
		return nil
	}
	if _, err := tx.ExecContext(ctx, "UPDATE feeds SET last_synced_at = ? WHERE id = ?", ts, feedID); err != nil {
		return fmt.Errorf("update last sync time: %w", err)
	}
	return nil
}
