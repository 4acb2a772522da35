// Package cache provides the short-TTL query-result cache and the
// time-ordered recent feeds backing the dashboard, on Redis. The cache
// is a pure performance layer: every failure here degrades to a miss
// and the store answers instead.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// schemaVersion tags every cached payload. A version bump across a
// deploy invalidates stale blobs instead of letting them corrupt reads.
const schemaVersion = 1

// AlertFeed is the sorted-set feed of recently raised alerts.
const AlertFeed = "alerts:recent"

// envelope wraps cached payloads so their shape is explicit on the wire.
type envelope struct {
	Version int             `json:"v"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Cache is the query facade's view of the cache layer.
type Cache interface {
	// GetQuery loads a cached result into dst, reporting whether a
	// usable (version-matched) entry existed.
	GetQuery(ctx context.Context, key, kind string, dst any) bool

	// SetQuery stores a result with a TTL. Failures are swallowed.
	SetQuery(ctx context.Context, key, kind string, value any, ttl time.Duration)

	// PushRecent appends an entry to a time-ordered feed, scored by its
	// timestamp, and trims the feed to a bounded length.
	PushRecent(ctx context.Context, feed string, value any, at time.Time) error

	// Recent returns up to limit feed entries, most recent first.
	Recent(ctx context.Context, feed string, limit int64) ([]json.RawMessage, error)

	// Ping verifies the backend is reachable, used by health checks.
	Ping(ctx context.Context) error

	Close() error
}

// Noop is the cache used when Redis is not configured: every read is a
// miss and every write a no-op.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (*Noop) GetQuery(context.Context, string, string, any) bool { return false }

func (*Noop) SetQuery(context.Context, string, string, any, time.Duration) {}

func (*Noop) PushRecent(context.Context, string, any, time.Time) error { return nil }

func (*Noop) Recent(context.Context, string, int64) ([]json.RawMessage, error) {
	return nil, nil
}

func (*Noop) Ping(context.Context) error { return nil }
func (*Noop) Close() error               { return nil }
