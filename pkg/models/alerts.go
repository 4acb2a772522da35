// Package models pkg/models/alerts.go
package models

import "time"

// Severity orders alert importance. Comparisons use Rank, never the label.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the numeric ordering of a severity. Unknown labels rank
// below low so a corrupt row can never out-escalate a real one.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Valid reports whether s is one of the four known labels.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// MaxSeverity returns the higher-ranked of two severities.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}

	return a
}

type AlertStatus string

const (
	AlertActive   AlertStatus = "active"
	AlertResolved AlertStatus = "resolved"
)

// Alert is a deduplicated record of a sustained or repeated threshold
// breach. At most one active alert exists per Type; re-occurrence bumps
// Count and LastOccurrence and may raise (never lower) Severity.
type Alert struct {
	ID              string         `json:"id"`
	Type            string         `json:"type"`
	Title           string         `json:"title"`
	Message         string         `json:"message"`
	Severity        Severity       `json:"severity"`
	Status          AlertStatus    `json:"status"`
	Count           int            `json:"count"`
	FirstOccurrence time.Time      `json:"first_occurrence"`
	LastOccurrence  time.Time      `json:"last_occurrence"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}
