// Package db pkg/db/interfaces.go
package db

import (
	"context"
	"time"

	"github.com/atelierhq/pulse/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/atelierhq/pulse/pkg/db AlertStore,SampleStore,QueryStore

// AlertStore covers the alert engine's write path.
type AlertStore interface {
	UpsertAlert(ctx context.Context, occ *models.Alert) (*models.Alert, error)
	ResolveAlert(ctx context.Context, id string) error
	GetAlert(ctx context.Context, id string) (*models.Alert, error)
}

// SampleStore covers sample ingestion. All samples are write-once.
type SampleStore interface {
	StoreAPIMetric(ctx context.Context, m *models.APIMetric) error
	StoreSystemMetric(ctx context.Context, m *models.SystemMetric) error
	StoreError(ctx context.Context, rec *models.ErrorRecord) error
}

// QueryStore covers the query facade's read path.
type QueryStore interface {
	GetAPIMetrics(ctx context.Context, rng models.TimeRange, path, method string) ([]models.APIMetric, error)
	CountAPIMetrics(ctx context.Context, rng models.TimeRange) (int, error)
	GetSystemMetrics(ctx context.Context, rng models.TimeRange) ([]models.SystemMetric, error)
	GetErrors(ctx context.Context, rng models.TimeRange, component string) ([]models.ErrorRecord, error)
	ListAlerts(ctx context.Context, filter AlertFilter) ([]models.Alert, error)
	CountAlertsByStatus(ctx context.Context) (map[models.AlertStatus]int, error)
	CountAlertsBySeverity(ctx context.Context) (map[models.Severity]int, error)
}

// Service represents all database operations.
type Service interface {
	AlertStore
	SampleStore
	QueryStore

	// Maintenance operations.

	CleanOldData(ctx context.Context, retentionPeriod time.Duration) error
	Close() error

	// Ping verifies the underlying connection, used by health checks.
	Ping() error
}
