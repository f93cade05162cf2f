// Package store holds the Postgres, Elasticsearch and Redis adapters behind the
// analysis collaborators.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"
)

//go:embed schema.sql
var Schema string

// Migrate creates the tables used by the adapters when they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// windowStart is the inclusive lower bound of a daysBack window ending at now.
func windowStart(now time.Time, daysBack int) time.Time {
	if daysBack < 0 {
		daysBack = 0
	}
	return now.UTC().AddDate(0, 0, -daysBack)
}
