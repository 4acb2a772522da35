// Package alerting pkg/alerting/interfaces.go
package alerting

import (
	"context"

	"github.com/atelierhq/pulse/pkg/models"
)

//go:generate mockgen -destination=mock_alerting.go -package=alerting github.com/atelierhq/pulse/pkg/alerting Notifier

// Notifier delivers a raised alert to an external sink (webhook,
// dashboard stream). Delivery failures never propagate into the
// collection path.
type Notifier interface {
	Notify(ctx context.Context, alert *models.Alert) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, alert *models.Alert) error

func (f NotifierFunc) Notify(ctx context.Context, alert *models.Alert) error {
	return f(ctx, alert)
}
