package query

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/atelierhq/pulse/pkg/aggregate"
	"github.com/atelierhq/pulse/pkg/cache"
	"github.com/atelierhq/pulse/pkg/config"
	"github.com/atelierhq/pulse/pkg/db"
	"github.com/atelierhq/pulse/pkg/models"
	"github.com/atelierhq/pulse/pkg/sysinfo"
	"github.com/atelierhq/pulse/pkg/timeframe"
)

// Default windows per endpoint when the caller sends no usable range.
const (
	defaultSummaryWindow = time.Hour
	defaultStatsWindow   = 24 * time.Hour
)

// Cache TTLs, scaled by query cost.
const (
	ttlSummary     = 60 * time.Second
	ttlStats       = 120 * time.Second
	ttlPerformance = 300 * time.Second
)

const recentAlertLimit = 20

// Cached payload kinds.
const (
	kindSummary     = "summary"
	kindAPIStats    = "api"
	kindErrors      = "errors"
	kindPerformance = "performance"
)

// DBPinger is the liveness slice of the store, used by Health.
type DBPinger interface {
	Ping() error
}

// Service answers read queries by composing the sample store, the
// aggregation helpers and the alert listings, with a short-TTL cache in
// front of the expensive ones. The cache is never the source of truth:
// any cache failure is a miss and the store answers.
type Service struct {
	store      db.QueryStore
	pinger     DBPinger
	cache      cache.Cache
	host       sysinfo.Provider
	thresholds config.ThresholdConfig
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(
	store db.QueryStore,
	pinger DBPinger,
	c cache.Cache,
	host sysinfo.Provider,
	thresholds config.ThresholdConfig,
	opts ...Option,
) *Service {
	if c == nil {
		c = cache.NewNoop()
	}

	s := &Service{
		store:      store,
		pinger:     pinger,
		cache:      c,
		host:       host,
		thresholds: thresholds,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// resolveRange turns the caller's time selection into a concrete range.
// An explicit pair wins; otherwise the timeframe token is parsed, with
// unrecognized tokens falling back to the endpoint's default window.
func (s *Service) resolveRange(p Params, fallback time.Duration) models.TimeRange {
	if p.explicit() {
		return models.TimeRange{Start: p.Start.UTC(), End: p.End.UTC()}
	}

	start, end := timeframe.Window(p.Timeframe, s.now().UTC(), fallback)

	return models.TimeRange{Start: start, End: end}
}

// cacheKey derives the cache key for a query. Explicit ranges key on
// their exact instants. Relative timeframes end at now, which moves
// every call, so they key on the token with now truncated to a
// TTL-sized bucket; calls within the TTL share an entry instead of
// minting a fresh key each second.
func (s *Service) cacheKey(kind, token string, explicit bool, rng models.TimeRange, ttl time.Duration) string {
	if explicit {
		return cache.QueryKey(kind, token, rng.Start, rng.End)
	}

	bucket := s.now().UTC().Truncate(ttl)

	return cache.QueryKey(kind, token, bucket, bucket)
}

// Summary returns the dashboard's headline numbers over the last hour.
// Any backing failure yields the zero-filled shape with status degraded.
func (s *Service) Summary(ctx context.Context) SummaryResponse {
	now := s.now()
	rng := models.TimeRange{Start: now.Add(-defaultSummaryWindow).UTC(), End: now.UTC()}

	key := s.cacheKey(kindSummary, "", false, rng, ttlSummary)

	var cached SummaryResponse
	if s.cache.GetQuery(ctx, key, kindSummary, &cached) {
		return cached
	}

	resp := SummaryResponse{Status: "ok", Timestamp: now.UTC()}

	samples, err := s.store.GetAPIMetrics(ctx, rng, "", "")
	if err != nil {
		log.Printf("summary query failed: %v", err)
		return SummaryResponse{Status: "degraded", Timestamp: now.UTC()}
	}

	resp.Metrics.RequestCount = len(samples)
	resp.Metrics.AverageResponseTime = aggregate.AverageResponseTime(samples)
	resp.Metrics.ErrorRate = aggregate.ErrorRate(samples)

	if sys, err := s.store.GetSystemMetrics(ctx, rng); err != nil {
		log.Printf("summary system read failed: %v", err)
	} else if len(sys) > 0 {
		latest := sys[len(sys)-1]
		resp.Metrics.CPUPercent = latest.CPUPercent
		resp.Metrics.MemPercent = latest.MemPercent
	}

	if byStatus, err := s.store.CountAlertsByStatus(ctx); err != nil {
		log.Printf("summary alert count failed: %v", err)
	} else {
		resp.Metrics.ActiveAlerts = byStatus[models.AlertActive]
	}

	s.cache.SetQuery(ctx, key, kindSummary, resp, ttlSummary)

	return resp
}

// APIStats returns the traffic breakdown over the requested window,
// optionally filtered by path and method.
func (s *Service) APIStats(ctx context.Context, p Params, path, method string) APIStatsResponse {
	rng := s.resolveRange(p, defaultStatsWindow)

	token := fmt.Sprintf("%s|%s|%s", p.Timeframe, path, method)
	key := s.cacheKey(kindAPIStats, token, p.explicit(), rng, ttlStats)

	var cached APIStatsResponse
	if s.cache.GetQuery(ctx, key, kindAPIStats, &cached) {
		return cached
	}

	resp := APIStatsResponse{
		TopEndpoints: []models.EndpointSummary{},
		TimeRange:    rng,
	}

	samples, err := s.store.GetAPIMetrics(ctx, rng, path, method)
	if err != nil {
		log.Printf("api stats query failed: %v", err)
		return resp
	}

	resp.RequestCount = len(samples)
	resp.AverageResponseTime = aggregate.AverageResponseTime(samples)
	resp.ErrorRate = aggregate.ErrorRate(samples)

	if top := aggregate.TopEndpoints(samples, aggregate.DefaultTopN); top != nil {
		resp.TopEndpoints = top
	}

	s.cache.SetQuery(ctx, key, kindAPIStats, resp, ttlStats)

	return resp
}

// ErrorStats groups reported errors over the requested window by
// component and by type.
func (s *Service) ErrorStats(ctx context.Context, p Params, component string) ErrorStatsResponse {
	rng := s.resolveRange(p, defaultStatsWindow)

	key := s.cacheKey(kindErrors, p.Timeframe+"|"+component, p.explicit(), rng, ttlStats)

	var cached ErrorStatsResponse
	if s.cache.GetQuery(ctx, key, kindErrors, &cached) {
		return cached
	}

	resp := ErrorStatsResponse{
		ByComponent: map[string]int{},
		ByType:      map[string]int{},
		TimeRange:   rng,
	}

	records, err := s.store.GetErrors(ctx, rng, component)
	if err != nil {
		log.Printf("error stats query failed: %v", err)
		return resp
	}

	resp.Total = len(records)
	for i := range records {
		resp.ByComponent[records[i].Component]++
		resp.ByType[records[i].Type]++
	}

	s.cache.SetQuery(ctx, key, kindErrors, resp, ttlStats)

	return resp
}

// AlertSummary lists recent alerts with tallies. Never cached: a stale
// alert view is worse than a slow one.
func (s *Service) AlertSummary(ctx context.Context, filter db.AlertFilter) AlertSummaryResponse {
	now := s.now()

	resp := AlertSummaryResponse{
		ByStatus:   map[models.AlertStatus]int{},
		BySeverity: map[models.Severity]int{},
		Recent:     []models.Alert{},
		TimeRange:  models.TimeRange{Start: now.Add(-defaultStatsWindow).UTC(), End: now.UTC()},
	}

	if filter.Limit <= 0 {
		filter.Limit = recentAlertLimit
	}

	alerts, err := s.store.ListAlerts(ctx, filter)
	if err != nil {
		log.Printf("alert listing failed: %v", err)
		return resp
	}

	resp.Recent = alerts
	resp.Total = len(alerts)

	if byStatus, err := s.store.CountAlertsByStatus(ctx); err != nil {
		log.Printf("alert status count failed: %v", err)
	} else {
		resp.ByStatus = byStatus
	}

	if bySeverity, err := s.store.CountAlertsBySeverity(ctx); err != nil {
		log.Printf("alert severity count failed: %v", err)
	} else {
		resp.BySeverity = bySeverity
	}

	return resp
}

// Health reports per-component health and a worst-wins rollup. CPU and
// memory degrade at the warn thresholds and go unhealthy at the critical
// ones; the database is binary; an unreachable cache only degrades since
// every cache failure is survivable.
func (s *Service) Health(ctx context.Context) HealthResponse {
	resp := HealthResponse{
		Components: map[string]ComponentHealth{},
		Timestamp:  s.now().UTC(),
	}

	stats, err := s.host.Snapshot(ctx)
	if err != nil {
		log.Printf("health snapshot failed: %v", err)

		resp.Components["cpu"] = ComponentHealth{Status: HealthDown, Detail: "host stats unavailable"}
		resp.Components["memory"] = ComponentHealth{Status: HealthDown, Detail: "host stats unavailable"}
	} else {
		resp.Components["cpu"] = gaugeHealth(stats.CPUPercent, s.thresholds.CPUWarn, s.thresholds.CPUCrit)
		resp.Components["memory"] = gaugeHealth(stats.MemPercent, s.thresholds.MemWarn, s.thresholds.MemCrit)
	}

	dbHealth := ComponentHealth{Status: HealthOK}
	if err := s.pinger.Ping(); err != nil {
		dbHealth = ComponentHealth{Status: HealthDown, Detail: err.Error()}
	}

	resp.Components["database"] = dbHealth

	cacheHealth := ComponentHealth{Status: HealthOK}
	if err := s.cache.Ping(ctx); err != nil {
		cacheHealth = ComponentHealth{Status: HealthDegraded, Detail: err.Error()}
	}

	resp.Components["cache"] = cacheHealth

	resp.Status = HealthOK

	for _, c := range resp.Components {
		switch {
		case c.Status == HealthDown:
			resp.Status = HealthDown
		case c.Status == HealthDegraded && resp.Status == HealthOK:
			resp.Status = HealthDegraded
		}
	}

	return resp
}

// Performance pairs a live host reading with bucketed history over the
// requested window.
func (s *Service) Performance(ctx context.Context, p Params) PerformanceResponse {
	rng := s.resolveRange(p, defaultStatsWindow)

	key := s.cacheKey(kindPerformance, p.Timeframe, p.explicit(), rng, ttlPerformance)

	var cached PerformanceResponse
	if s.cache.GetQuery(ctx, key, kindPerformance, &cached) {
		return cached
	}

	resp := PerformanceResponse{
		Historical: []models.SeriesPoint{},
		TimeRange:  rng,
	}

	if stats, err := s.host.Snapshot(ctx); err != nil {
		log.Printf("performance snapshot failed: %v", err)
	} else {
		resp.Current = CurrentStats{
			CPUPercent:    stats.CPUPercent,
			MemPercent:    stats.MemPercent,
			UptimeSeconds: stats.Uptime.Seconds(),
		}
	}

	samples, err := s.store.GetSystemMetrics(ctx, rng)
	if err != nil {
		log.Printf("performance history query failed: %v", err)
		return resp
	}

	if buckets := aggregate.TimeBuckets(samples, granularityFor(rng.End.Sub(rng.Start))); buckets != nil {
		resp.Historical = buckets
	}

	s.cache.SetQuery(ctx, key, kindPerformance, resp, ttlPerformance)

	return resp
}

func gaugeHealth(value, warn, crit float64) ComponentHealth {
	h := ComponentHealth{Status: HealthOK, Value: value}

	switch {
	case value > crit:
		h.Status = HealthDown
	case value > warn:
		h.Status = HealthDegraded
	}

	return h
}

// granularityFor keeps charted series near a constant point count as the
// window grows.
func granularityFor(window time.Duration) time.Duration {
	switch {
	case window <= time.Hour:
		return time.Minute
	case window <= 24*time.Hour:
		return 15 * time.Minute
	default:
		return time.Hour
	}
}
