package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/atelierhq/pulse/pkg/models"
)

// StoreAPIMetric records one API request sample. Samples are write-once.
func (db *DB) StoreAPIMetric(ctx context.Context, m *models.APIMetric) error {
	ctx, cancel := db.bound(ctx)
	defer cancel()

	_, err := db.ExecContext(ctx, `
        INSERT INTO api_metrics
            (path, method, status_code, response_time_ms, user_id, remote_addr, timestamp)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Path,
		m.Method,
		m.StatusCode,
		m.ResponseTimeMs,
		nullable(m.UserID),
		nullable(m.RemoteAddr),
		m.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w api metric: %w", ErrFailedToInsert, err)
	}

	return nil
}

// StoreSystemMetric records one host resource snapshot.
func (db *DB) StoreSystemMetric(ctx context.Context, m *models.SystemMetric) error {
	ctx, cancel := db.bound(ctx)
	defer cancel()

	_, err := db.ExecContext(ctx, `
        INSERT INTO system_metrics
            (cpu_percent, mem_percent, disk_percent, connections, timestamp)
        VALUES (?, ?, ?, ?, ?)`,
		m.CPUPercent,
		m.MemPercent,
		m.DiskPercent,
		m.Connections,
		m.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w system metric: %w", ErrFailedToInsert, err)
	}

	return nil
}

// StoreError records a reported failure.
func (db *DB) StoreError(ctx context.Context, rec *models.ErrorRecord) error {
	metadataJSON, err := serializeMetadata(rec.Metadata)
	if err != nil {
		return fmt.Errorf("%w error record metadata: %w", ErrFailedToInsert, err)
	}

	ctx, cancel := db.bound(ctx)
	defer cancel()

	_, err = db.ExecContext(ctx, `
        INSERT INTO error_records
            (id, error_type, message, stack, component, user_id, request_id, metadata, timestamp)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Type,
		rec.Message,
		nullable(rec.Stack),
		rec.Component,
		nullable(rec.UserID),
		nullable(rec.RequestID),
		nullable(metadataJSON),
		rec.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w error record: %w", ErrFailedToInsert, err)
	}

	return nil
}

// GetAPIMetrics retrieves API samples within [start, end), optionally
// filtered by path and method.
func (db *DB) GetAPIMetrics(ctx context.Context, rng models.TimeRange, path, method string) ([]models.APIMetric, error) {
	query := `
        SELECT id, path, method, status_code, response_time_ms, user_id, remote_addr, timestamp
        FROM api_metrics
        WHERE timestamp >= ? AND timestamp < ?`
	args := []any{rng.Start.UTC(), rng.End.UTC()}

	if path != "" {
		query += " AND path = ?"
		args = append(args, path)
	}

	if method != "" {
		query += " AND method = ?"
		args = append(args, method)
	}

	query += " ORDER BY timestamp ASC"

	ctx, cancel := db.bound(ctx)
	defer cancel()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w api metrics: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	var samples []models.APIMetric

	for rows.Next() {
		var (
			m          models.APIMetric
			user, addr sql.NullString
		)

		if err := rows.Scan(&m.ID, &m.Path, &m.Method, &m.StatusCode, &m.ResponseTimeMs, &user, &addr, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("%w api metric row: %w", ErrFailedToScan, err)
		}

		m.UserID = user.String
		m.RemoteAddr = addr.String
		samples = append(samples, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w api metrics: %w", ErrFailedToQuery, err)
	}

	return samples, nil
}

// CountAPIMetrics returns the number of API samples in [start, end).
func (db *DB) CountAPIMetrics(ctx context.Context, rng models.TimeRange) (int, error) {
	ctx, cancel := db.bound(ctx)
	defer cancel()

	var count int

	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM api_metrics WHERE timestamp >= ? AND timestamp < ?",
		rng.Start.UTC(), rng.End.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w api metric count: %w", ErrFailedToQuery, err)
	}

	return count, nil
}

// GetSystemMetrics retrieves host snapshots within [start, end) in
// chronological order.
func (db *DB) GetSystemMetrics(ctx context.Context, rng models.TimeRange) ([]models.SystemMetric, error) {
	ctx, cancel := db.bound(ctx)
	defer cancel()

	rows, err := db.QueryContext(ctx, `
        SELECT id, cpu_percent, mem_percent, disk_percent, connections, timestamp
        FROM system_metrics
        WHERE timestamp >= ? AND timestamp < ?
        ORDER BY timestamp ASC`,
		rng.Start.UTC(), rng.End.UTC())
	if err != nil {
		return nil, fmt.Errorf("%w system metrics: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	var samples []models.SystemMetric

	for rows.Next() {
		var (
			m     models.SystemMetric
			disk  sql.NullFloat64
			conns sql.NullInt64
		)

		if err := rows.Scan(&m.ID, &m.CPUPercent, &m.MemPercent, &disk, &conns, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("%w system metric row: %w", ErrFailedToScan, err)
		}

		m.DiskPercent = disk.Float64
		m.Connections = int(conns.Int64)
		samples = append(samples, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w system metrics: %w", ErrFailedToQuery, err)
	}

	return samples, nil
}

// GetErrors retrieves error records within [start, end), optionally
// filtered by component, most recent first.
func (db *DB) GetErrors(ctx context.Context, rng models.TimeRange, component string) ([]models.ErrorRecord, error) {
	query := `
        SELECT id, error_type, message, stack, component, user_id, request_id, metadata, timestamp
        FROM error_records
        WHERE timestamp >= ? AND timestamp < ?`
	args := []any{rng.Start.UTC(), rng.End.UTC()}

	if component != "" {
		query += " AND component = ?"
		args = append(args, component)
	}

	query += " ORDER BY timestamp DESC"

	ctx, cancel := db.bound(ctx)
	defer cancel()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w error records: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	var records []models.ErrorRecord

	for rows.Next() {
		var (
			rec                         models.ErrorRecord
			stack, user, reqID, rawMeta sql.NullString
		)

		if err := rows.Scan(&rec.ID, &rec.Type, &rec.Message, &stack, &rec.Component, &user, &reqID, &rawMeta, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("%w error record row: %w", ErrFailedToScan, err)
		}

		rec.Stack = stack.String
		rec.UserID = user.String
		rec.RequestID = reqID.String

		rec.Metadata, err = deserializeMetadata(rawMeta.String)
		if err != nil {
			return nil, fmt.Errorf("%w error record metadata: %w", ErrFailedToScan, err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w error records: %w", ErrFailedToQuery, err)
	}

	return records, nil
}

// nullable maps "" to NULL so optional columns stay queryable as NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// serializeMetadata converts a map to a JSON string.
func serializeMetadata(metadata map[string]any) (string, error) {
	if metadata == nil {
		return "", nil
	}

	data, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// deserializeMetadata converts a JSON string to a map.
func deserializeMetadata(data string) (map[string]any, error) {
	if data == "" {
		return nil, nil
	}

	var metadata map[string]any
	if err := json.Unmarshal([]byte(data), &metadata); err != nil {
		return nil, err
	}

	return metadata, nil
}
