// Package db pkg/db/db.go provides SQLite storage for pulse samples and alerts.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	// Upper bound for any single store query. Aggregate scans over large
	// sample tables must not hold a request open indefinitely.
	defaultQueryTimeout = 5 * time.Second

	// SQL statements for database initialization.
	createTablesSQL = `
	-- Per-request API samples, append-only
	CREATE TABLE IF NOT EXISTS api_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		method TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		response_time_ms REAL NOT NULL,
		user_id TEXT,
		remote_addr TEXT,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Host resource snapshots, one row per collector tick
	CREATE TABLE IF NOT EXISTS system_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cpu_percent REAL NOT NULL,
		mem_percent REAL NOT NULL,
		disk_percent REAL,
		connections INTEGER,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Reported failures with context
	CREATE TABLE IF NOT EXISTS error_records (
		id TEXT PRIMARY KEY,
		error_type TEXT NOT NULL,
		message TEXT NOT NULL,
		stack TEXT,
		component TEXT NOT NULL,
		user_id TEXT,
		request_id TEXT,
		metadata TEXT,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Deduplicated threshold-breach alerts
	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY NOT NULL,
		alert_type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		severity TEXT NOT NULL,
		severity_rank INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		occurrence_count INTEGER NOT NULL DEFAULT 1,
		first_occurrence TIMESTAMP NOT NULL,
		last_occurrence TIMESTAMP NOT NULL,
		metadata TEXT
	);

	-- Dedup invariant: at most one active alert per type. The partial
	-- unique index makes the raise path a single atomic upsert.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_active_type
		ON alerts(alert_type) WHERE status = 'active';

	-- Indexes for range scans
	CREATE INDEX IF NOT EXISTS idx_api_metrics_time
		ON api_metrics(timestamp);
	CREATE INDEX IF NOT EXISTS idx_api_metrics_path_time
		ON api_metrics(path, timestamp);
	CREATE INDEX IF NOT EXISTS idx_system_metrics_time
		ON system_metrics(timestamp);
	CREATE INDEX IF NOT EXISTS idx_error_records_time
		ON error_records(timestamp);
	CREATE INDEX IF NOT EXISTS idx_error_records_component_time
		ON error_records(component, timestamp);
	CREATE INDEX IF NOT EXISTS idx_alerts_last_occurrence
		ON alerts(last_occurrence);

	PRAGMA foreign_keys=ON;
	`
)

// DB wraps the database connection and implements Service.
type DB struct {
	*sql.DB
	queryTimeout time.Duration
}

// New creates a new database connection and initializes the schema.
func New(dbPath string) (Service, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToEnableWAL, err)
	}

	db := &DB{DB: sqlDB, queryTimeout: defaultQueryTimeout}
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return db, nil
}

// initSchema creates the database tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.Exec(createTablesSQL)

	return err
}

// bound attaches the store-level query timeout to ctx.
func (db *DB) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.queryTimeout)
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("failed to close rows: %v", err)
	}
}

// CleanOldData removes samples older than the retention period. Alerts
// are kept: they are the operational record, not raw samples.
func (db *DB) CleanOldData(ctx context.Context, retentionPeriod time.Duration) error {
	cutoff := time.Now().Add(-retentionPeriod)

	ctx, cancel := db.bound(ctx)
	defer cancel()

	for _, table := range []string{"api_metrics", "system_metrics", "error_records"} {
		query := fmt.Sprintf("DELETE FROM %s WHERE timestamp < ?", table) //nolint:gosec // table names are fixed

		if _, err := db.ExecContext(ctx, query, cutoff); err != nil {
			return fmt.Errorf("%w %s: %w", ErrFailedToClean, table, err)
		}
	}

	return nil
}
