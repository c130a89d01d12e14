package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	DefaultReadyAttempts = 10
	DefaultReadyInterval = time.Second
)

// WaitReady pings db until it answers, up to attempts times.
func WaitReady(ctx context.Context, db *sql.DB, attempts int, interval time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("database not ready after %d attempts: %w", attempts, err)
}
