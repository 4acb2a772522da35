// Package models pkg/models/metrics.go
package models

import "time"

// APIMetric is a single observed API request. Write-once.
type APIMetric struct {
	ID             int64     `json:"id,omitempty"`
	Path           string    `json:"path"`
	Method         string    `json:"method"`
	StatusCode     int       `json:"status_code"`
	ResponseTimeMs float64   `json:"response_time_ms"`
	UserID         string    `json:"user_id,omitempty"`
	RemoteAddr     string    `json:"remote_addr,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// SystemMetric is one host resource snapshot taken by the collector. Write-once.
type SystemMetric struct {
	ID          int64     `json:"id,omitempty"`
	CPUPercent  float64   `json:"cpu_percent"`
	MemPercent  float64   `json:"mem_percent"`
	DiskPercent float64   `json:"disk_percent,omitempty"`
	Connections int       `json:"connections,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ErrorRecord captures a reported failure with its context. Write-once.
type ErrorRecord struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Stack     string         `json:"stack,omitempty"`
	Component string         `json:"component"`
	UserID    string         `json:"user_id,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// EndpointSummary is a per-(method,path) aggregate.
type EndpointSummary struct {
	Method          string  `json:"method"`
	Path            string  `json:"path"`
	Count           int     `json:"count"`
	AvgResponseTime float64 `json:"avg_response_time"`
	ErrorRate       float64 `json:"error_rate"`
}

// SeriesPoint is one bucket in a charted time series.
type SeriesPoint struct {
	Bucket     time.Time `json:"bucket"`
	CPUPercent float64   `json:"cpu_percent"`
	MemPercent float64   `json:"mem_percent"`
	Samples    int       `json:"samples"`
}

// TimeRange bounds a query. Start is inclusive, End exclusive.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
