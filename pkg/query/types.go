// Package query serves the read side: dashboard summaries, error and
// API breakdowns, alert listings, health and performance snapshots. Every
// response has a fixed shape; internal failures degrade to the zero
// value of that shape so a partial backend outage never takes the
// dashboard down with it.
package query

import (
	"time"

	"github.com/atelierhq/pulse/pkg/models"
)

// Params carries the caller's time selection: a timeframe token, an
// explicit start/end pair, or neither. An explicit pair wins over the
// token when both are set.
type Params struct {
	Timeframe string
	Start     time.Time
	End       time.Time
}

func (p Params) explicit() bool {
	return !p.Start.IsZero() && !p.End.IsZero()
}

// SummaryMetrics is the headline-number block of the summary response.
type SummaryMetrics struct {
	RequestCount        int     `json:"request_count"`
	AverageResponseTime float64 `json:"average_response_time"`
	ErrorRate           float64 `json:"error_rate"`
	CPUPercent          float64 `json:"cpu_percent"`
	MemPercent          float64 `json:"mem_percent"`
	ActiveAlerts        int     `json:"active_alerts"`
}

// SummaryResponse is the dashboard's landing view.
type SummaryResponse struct {
	Status    string         `json:"status"`
	Metrics   SummaryMetrics `json:"metrics"`
	Timestamp time.Time      `json:"timestamp"`
}

// APIStatsResponse is the per-endpoint traffic breakdown.
type APIStatsResponse struct {
	RequestCount        int                      `json:"request_count"`
	AverageResponseTime float64                  `json:"average_response_time"`
	ErrorRate           float64                  `json:"error_rate"`
	TopEndpoints        []models.EndpointSummary `json:"top_endpoints"`
	TimeRange           models.TimeRange         `json:"time_range"`
}

// ErrorStatsResponse groups reported errors by component and type.
type ErrorStatsResponse struct {
	Total       int              `json:"total"`
	ByComponent map[string]int   `json:"by_component"`
	ByType      map[string]int   `json:"by_type"`
	TimeRange   models.TimeRange `json:"time_range"`
}

// AlertSummaryResponse lists recent alerts with status/severity tallies.
type AlertSummaryResponse struct {
	Total      int                        `json:"total"`
	ByStatus   map[models.AlertStatus]int `json:"by_status"`
	BySeverity map[models.Severity]int    `json:"by_severity"`
	Recent     []models.Alert             `json:"recent"`
	TimeRange  models.TimeRange           `json:"time_range"`
}

// ComponentHealth is one entry in the health response.
type ComponentHealth struct {
	Status string  `json:"status"`
	Detail string  `json:"detail,omitempty"`
	Value  float64 `json:"value,omitempty"`
}

// HealthResponse reports overall and per-component health.
type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	Timestamp  time.Time                  `json:"timestamp"`
}

// CurrentStats is the live host reading in the performance response.
type CurrentStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemPercent    float64 `json:"mem_percent"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// PerformanceResponse pairs a live host reading with bucketed history.
type PerformanceResponse struct {
	Current    CurrentStats         `json:"current"`
	Historical []models.SeriesPoint `json:"historical"`
	TimeRange  models.TimeRange     `json:"time_range"`
}

// Component health labels. Ordered worst-first for the rollup.
const (
	HealthOK       = "healthy"
	HealthDegraded = "degraded"
	HealthDown     = "unhealthy"
)
