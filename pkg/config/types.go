package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration unmarshals either a JSON number (nanoseconds) or a
// time.ParseDuration string ("90s", "15m").
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

// ThresholdConfig holds the alert engine's tunable bounds. Values are
// percentages. All bounds are configuration, not algorithmic constants.
type ThresholdConfig struct {
	CPUWarn          float64  `json:"cpu_warn"`           // -> medium
	CPUCrit          float64  `json:"cpu_crit"`           // -> high
	MemWarn          float64  `json:"mem_warn"`           // -> medium
	MemCrit          float64  `json:"mem_crit"`           // -> high
	ErrorRatePercent float64  `json:"error_rate_percent"` // -> high
	ErrorRateWindow  Duration `json:"error_rate_window"`
}

// RedisConfig locates the cache.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db,omitempty"`
}

// WebhookConfig represents an outbound alert notification target.
type WebhookConfig struct {
	Enabled  bool     `json:"enabled"`
	URL      string   `json:"url"`
	Cooldown Duration `json:"cooldown"`
	Headers  []Header `json:"headers,omitempty"` // Optional custom headers
}

// Header represents a custom HTTP header.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PulseConfig is the full service configuration.
type PulseConfig struct {
	ListenAddr      string          `json:"listen_addr"`             // e.g., :8090
	DBPath          string          `json:"db_path"`                 // e.g., /var/lib/pulse/pulse.db
	Redis           *RedisConfig    `json:"redis,omitempty"`         // nil disables caching
	CollectInterval Duration        `json:"collect_interval"`        // system sampling cadence
	Retention       Duration        `json:"retention"`               // raw sample retention
	DiskPath        string          `json:"disk_path,omitempty"`     // mount point for disk usage
	Thresholds      ThresholdConfig `json:"thresholds"`
	Webhooks        []WebhookConfig `json:"webhooks,omitempty"`
	RateLimitPerSec float64         `json:"rate_limit_per_sec,omitempty"` // per-client API limit
}

var (
	errMissingListenAddr = fmt.Errorf("listen_addr is required")
	errMissingDBPath     = fmt.Errorf("db_path is required")
)

const (
	defaultCollectInterval = 60 * time.Second
	defaultRetention       = 30 * 24 * time.Hour
)

// Validate fills defaults and rejects unusable configurations.
func (c *PulseConfig) Validate() error {
	if c.ListenAddr == "" {
		return errMissingListenAddr
	}

	if c.DBPath == "" {
		return errMissingDBPath
	}

	if c.CollectInterval <= 0 {
		c.CollectInterval = Duration(defaultCollectInterval)
	}

	if c.Retention <= 0 {
		c.Retention = Duration(defaultRetention)
	}

	c.Thresholds.applyDefaults()

	return nil
}

func (t *ThresholdConfig) applyDefaults() {
	if t.CPUWarn <= 0 {
		t.CPUWarn = 75
	}

	if t.CPUCrit <= 0 {
		t.CPUCrit = 90
	}

	if t.MemWarn <= 0 {
		t.MemWarn = 75
	}

	if t.MemCrit <= 0 {
		t.MemCrit = 90
	}

	if t.ErrorRatePercent <= 0 {
		t.ErrorRatePercent = 5
	}

	if t.ErrorRateWindow <= 0 {
		t.ErrorRateWindow = Duration(15 * time.Minute)
	}
}
