// Package timeframe parses the short relative-window tokens used by the
// query API ("5m", "1h", "24h", "7d", or generic "<n>h|d|w").
package timeframe

import (
	"strconv"
	"strings"
	"time"
)

const (
	Preset5m  = "5m"
	Preset1h  = "1h"
	Preset24h = "24h"
	Preset7d  = "7d"
)

var presets = map[string]time.Duration{
	Preset5m:  5 * time.Minute,
	Preset1h:  time.Hour,
	Preset24h: 24 * time.Hour,
	Preset7d:  7 * 24 * time.Hour,
}

// Duration resolves a token to a window length. The second return value
// is false for unrecognized tokens; callers fall back to their own
// default instead of erroring.
func Duration(token string) (time.Duration, bool) {
	token = strings.TrimSpace(strings.ToLower(token))
	if token == "" {
		return 0, false
	}

	if d, ok := presets[token]; ok {
		return d, true
	}

	return parseGeneric(token)
}

// parseGeneric handles the <int>[h|d|w] grammar.
func parseGeneric(token string) (time.Duration, bool) {
	unit := token[len(token)-1]

	n, err := strconv.Atoi(token[:len(token)-1])
	if err != nil || n <= 0 {
		return 0, false
	}

	switch unit {
	case 'h':
		return time.Duration(n) * time.Hour, true
	case 'd':
		return time.Duration(n) * 24 * time.Hour, true
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// Window resolves a token to a [start, end] pair ending at now. Unknown
// tokens resolve to the supplied fallback window.
func Window(token string, now time.Time, fallback time.Duration) (start, end time.Time) {
	d, ok := Duration(token)
	if !ok {
		d = fallback
	}

	return now.Add(-d), now
}
