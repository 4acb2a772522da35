// Package alerting pkg/alerting/engine.go converts threshold breaches
// into deduplicated alert records.
package alerting

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/pulse/pkg/config"
	"github.com/atelierhq/pulse/pkg/db"
	"github.com/atelierhq/pulse/pkg/models"
)

// Well-known alert type tags. The type is the dedup key: at most one
// active alert exists per tag.
const (
	TypeSystemCPU    = "system-cpu"
	TypeSystemMemory = "system-mem"
	TypeAPIErrorRate = "api-error-rate"
)

// Engine evaluates observed values against configured thresholds and
// maintains the alert lifecycle through the store's atomic upsert.
type Engine struct {
	store      db.AlertStore
	thresholds config.ThresholdConfig
	notifiers  []Notifier
	now        func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithNotifier registers an outbound sink for raised alerts.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		e.notifiers = append(e.notifiers, n)
	}
}

// WithClock overrides the engine's time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an alert engine. Thresholds come from configuration;
// zero-valued fields were already defaulted by config validation.
func NewEngine(store db.AlertStore, thresholds config.ThresholdConfig, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		thresholds: thresholds,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// EvaluateSystem checks one CPU/memory observation against the
// configured bounds and raises alerts for any breach. Store or notifier
// failures are logged and swallowed: evaluation must never block the
// sampling pipeline that triggered it. Returns the post-upsert alerts
// raised by this observation, if any.
func (e *Engine) EvaluateSystem(ctx context.Context, cpuPercent, memPercent float64) []models.Alert {
	var raised []models.Alert

	if alert := e.evaluateGauge(ctx, TypeSystemCPU, "CPU usage high", "CPU",
		cpuPercent, e.thresholds.CPUWarn, e.thresholds.CPUCrit); alert != nil {
		raised = append(raised, *alert)
	}

	if alert := e.evaluateGauge(ctx, TypeSystemMemory, "Memory usage high", "Memory",
		memPercent, e.thresholds.MemWarn, e.thresholds.MemCrit); alert != nil {
		raised = append(raised, *alert)
	}

	return raised
}

func (e *Engine) evaluateGauge(ctx context.Context, alertType, title, label string, value, warn, crit float64) *models.Alert {
	var severity models.Severity

	switch {
	case value > crit:
		severity = models.SeverityHigh
	case value > warn:
		severity = models.SeverityMedium
	default:
		return nil
	}

	return e.raise(ctx, &models.Alert{
		Type:     alertType,
		Title:    title,
		Severity: severity,
		Message:  fmt.Sprintf("%s usage at %.1f%%", label, value),
		Metadata: map[string]any{"value": value},
	})
}

// EvaluateErrorRate checks a rolling API error rate (percentage) against
// the configured bound. The alert message cites the measured rate and
// the window it was measured over.
func (e *Engine) EvaluateErrorRate(ctx context.Context, ratePercent float64, window time.Duration) *models.Alert {
	if ratePercent <= e.thresholds.ErrorRatePercent {
		return nil
	}

	return e.raise(ctx, &models.Alert{
		Type:     TypeAPIErrorRate,
		Title:    "API error rate high",
		Severity: models.SeverityHigh,
		Message:  fmt.Sprintf("API error rate at %.2f%% over the last %s", ratePercent, window),
		Metadata: map[string]any{"rate_percent": ratePercent, "window": window.String()},
	})
}

// Resolve explicitly transitions an active alert to resolved. There is
// no automatic resolution path; a human or a remediation job owns it.
func (e *Engine) Resolve(ctx context.Context, id string) error {
	return e.store.ResolveAlert(ctx, id)
}

// raise runs the dedup upsert and fans out notifications. All failures
// are terminal here: logged, never returned to the sampling path.
func (e *Engine) raise(ctx context.Context, occ *models.Alert) *models.Alert {
	occ.ID = uuid.New().String()
	occ.Status = models.AlertActive
	occ.Count = 1
	occ.LastOccurrence = e.now()
	occ.FirstOccurrence = occ.LastOccurrence

	alert, err := e.store.UpsertAlert(ctx, occ)
	if err != nil {
		log.Printf("failed to raise %s alert: %v", occ.Type, err)
		return nil
	}

	for _, n := range e.notifiers {
		if err := n.Notify(ctx, alert); err != nil {
			log.Printf("alert notification failed for %s: %v", alert.Type, err)
		}
	}

	return alert
}
