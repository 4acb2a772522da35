package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atelierhq/pulse/pkg/models"
)

// UpsertAlert raises an alert for occ.Type. If no active alert exists for
// that type a new row is created; otherwise the existing row's count is
// incremented, its last occurrence refreshed, and its severity raised to
// the maximum of old and new. The whole operation is a single upsert
// against the partial unique index on (alert_type) WHERE status='active',
// so concurrent raisers cannot race a duplicate row into existence.
// The returned alert reflects the post-upsert row.
func (db *DB) UpsertAlert(ctx context.Context, occ *models.Alert) (*models.Alert, error) {
	if !occ.Severity.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeverity, occ.Severity)
	}

	metadataJSON, err := serializeMetadata(occ.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w alert metadata: %w", ErrFailedToInsert, err)
	}

	ctx, cancel := db.bound(ctx)
	defer cancel()

	row := db.QueryRowContext(ctx, `
        INSERT INTO alerts
            (id, alert_type, title, message, severity, severity_rank, status,
             occurrence_count, first_occurrence, last_occurrence, metadata)
        VALUES (?, ?, ?, ?, ?, ?, 'active', 1, ?, ?, ?)
        ON CONFLICT(alert_type) WHERE status = 'active' DO UPDATE SET
            occurrence_count = occurrence_count + 1,
            last_occurrence  = excluded.last_occurrence,
            message          = excluded.message,
            severity         = CASE WHEN excluded.severity_rank > severity_rank
                                    THEN excluded.severity ELSE severity END,
            severity_rank    = MAX(severity_rank, excluded.severity_rank)
        RETURNING id, alert_type, title, message, severity, status,
                  occurrence_count, first_occurrence, last_occurrence, metadata`,
		occ.ID,
		occ.Type,
		occ.Title,
		occ.Message,
		occ.Severity,
		occ.Severity.Rank(),
		occ.LastOccurrence.UTC(),
		occ.LastOccurrence.UTC(),
		nullable(metadataJSON),
	)

	alert, err := scanAlertRow(row)
	if err != nil {
		return nil, fmt.Errorf("%w alert: %w", ErrFailedToInsert, err)
	}

	return alert, nil
}

// ResolveAlert transitions an active alert to resolved. Resolution is
// always an explicit external action; nothing in the collection path
// resolves alerts. A later breach of the same type creates a fresh
// active alert rather than reopening this one.
func (db *DB) ResolveAlert(ctx context.Context, id string) error {
	ctx, cancel := db.bound(ctx)
	defer cancel()

	result, err := db.ExecContext(ctx,
		"UPDATE alerts SET status = 'resolved' WHERE id = ? AND status = 'active'", id)
	if err != nil {
		return fmt.Errorf("%w alert resolution: %w", ErrFailedToUpdate, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w alert resolution: %w", ErrFailedToUpdate, err)
	}

	if affected == 0 {
		return ErrAlertNotFound
	}

	return nil
}

// GetAlert retrieves a single alert by ID.
func (db *DB) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	ctx, cancel := db.bound(ctx)
	defer cancel()

	row := db.QueryRowContext(ctx, `
        SELECT id, alert_type, title, message, severity, status,
               occurrence_count, first_occurrence, last_occurrence, metadata
        FROM alerts
        WHERE id = ?`, id)

	alert, err := scanAlertRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlertNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w alert: %w", ErrFailedToQuery, err)
	}

	return alert, nil
}

// AlertFilter narrows ListAlerts output.
type AlertFilter struct {
	Status   models.AlertStatus
	Severity models.Severity
	Limit    int
}

const defaultAlertLimit = 100

// ListAlerts returns alerts most recent first, optionally filtered by
// status and severity.
func (db *DB) ListAlerts(ctx context.Context, filter AlertFilter) ([]models.Alert, error) {
	query := `
        SELECT id, alert_type, title, message, severity, status,
               occurrence_count, first_occurrence, last_occurrence, metadata
        FROM alerts
        WHERE 1=1`

	var args []any

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	if filter.Severity != "" {
		query += " AND severity = ?"
		args = append(args, filter.Severity)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAlertLimit
	}

	query += " ORDER BY last_occurrence DESC LIMIT ?"
	args = append(args, limit)

	ctx, cancel := db.bound(ctx)
	defer cancel()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w alerts: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	var alerts []models.Alert

	for rows.Next() {
		alert, err := scanAlertRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w alert row: %w", ErrFailedToScan, err)
		}

		alerts = append(alerts, *alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w alerts: %w", ErrFailedToQuery, err)
	}

	return alerts, nil
}

// CountAlertsByStatus returns alert counts grouped by status.
func (db *DB) CountAlertsByStatus(ctx context.Context) (map[models.AlertStatus]int, error) {
	ctx, cancel := db.bound(ctx)
	defer cancel()

	rows, err := db.QueryContext(ctx, "SELECT status, COUNT(*) FROM alerts GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("%w alert status counts: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	counts := make(map[models.AlertStatus]int)

	for rows.Next() {
		var (
			status models.AlertStatus
			count  int
		)

		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%w alert status count: %w", ErrFailedToScan, err)
		}

		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w alert status counts: %w", ErrFailedToQuery, err)
	}

	return counts, nil
}

// CountAlertsBySeverity returns active alert counts grouped by severity.
func (db *DB) CountAlertsBySeverity(ctx context.Context) (map[models.Severity]int, error) {
	ctx, cancel := db.bound(ctx)
	defer cancel()

	rows, err := db.QueryContext(ctx,
		"SELECT severity, COUNT(*) FROM alerts WHERE status = 'active' GROUP BY severity")
	if err != nil {
		return nil, fmt.Errorf("%w alert severity counts: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	counts := make(map[models.Severity]int)

	for rows.Next() {
		var (
			severity models.Severity
			count    int
		)

		if err := rows.Scan(&severity, &count); err != nil {
			return nil, fmt.Errorf("%w alert severity count: %w", ErrFailedToScan, err)
		}

		counts[severity] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w alert severity counts: %w", ErrFailedToQuery, err)
	}

	return counts, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAlertRow(s scanner) (*models.Alert, error) {
	var (
		alert   models.Alert
		rawMeta sql.NullString
	)

	err := s.Scan(
		&alert.ID,
		&alert.Type,
		&alert.Title,
		&alert.Message,
		&alert.Severity,
		&alert.Status,
		&alert.Count,
		&alert.FirstOccurrence,
		&alert.LastOccurrence,
		&rawMeta,
	)
	if err != nil {
		return nil, err
	}

	alert.Metadata, err = deserializeMetadata(rawMeta.String)
	if err != nil {
		return nil, err
	}

	return &alert, nil
}
