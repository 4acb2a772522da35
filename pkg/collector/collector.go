// Package collector pkg/collector/collector.go samples host resources on
// a fixed interval, persists each snapshot, and hands the observed values
// to the alert engine.
package collector

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/atelierhq/pulse/pkg/aggregate"
	"github.com/atelierhq/pulse/pkg/alerting"
	"github.com/atelierhq/pulse/pkg/db"
	"github.com/atelierhq/pulse/pkg/models"
	"github.com/atelierhq/pulse/pkg/sysinfo"
)

// SystemCollector owns the sampling schedule. One instance runs per
// process; Start and Stop bound its lifecycle explicitly.
type SystemCollector struct {
	store     db.SampleStore
	engine    *alerting.Engine
	host      sysinfo.Provider
	interval  time.Duration
	clock     Clock
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	// optional rolling error-rate check
	rateStore  db.QueryStore
	rateWindow time.Duration
}

// NewSystemCollector creates a collector. A nil clock means wall-clock
// time.
func NewSystemCollector(store db.SampleStore, engine *alerting.Engine, host sysinfo.Provider, interval time.Duration, clock Clock) (*SystemCollector, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid collection interval: %v", interval)
	}

	if clock == nil {
		clock = NewRealClock()
	}

	return &SystemCollector{
		store:    store,
		engine:   engine,
		host:     host,
		interval: interval,
		clock:    clock,
		done:     make(chan struct{}),
	}, nil
}

// EnableErrorRateCheck makes each tick also evaluate the API error rate
// over the given rolling window. Must be called before Start.
func (c *SystemCollector) EnableErrorRateCheck(store db.QueryStore, window time.Duration) {
	c.rateStore = store
	c.rateWindow = window
}

// Start launches the collection loop. It returns immediately; the loop
// runs until Stop is called or ctx is canceled.
func (c *SystemCollector) Start(ctx context.Context) error {
	c.wg.Add(1)

	go c.run(ctx)

	return nil
}

// Stop terminates the schedule and waits for an in-flight tick to finish.
func (c *SystemCollector) Stop(_ context.Context) error {
	c.closeOnce.Do(func() {
		close(c.done)
	})

	c.wg.Wait()

	return nil
}

func (c *SystemCollector) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	// Take an initial sample so dashboards have data before the first
	// full interval elapses
	c.collectOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.Chan():
			c.collectOnce(ctx)
		}
	}
}

// collectOnce performs a single tick: snapshot, persist, evaluate. The
// sample write happens before alert evaluation for that tick. Every
// failure is logged and dropped so the next tick always fires.
func (c *SystemCollector) collectOnce(ctx context.Context) {
	stats, err := c.host.Snapshot(ctx)
	if err != nil {
		log.Printf("system snapshot failed, skipping tick: %v", err)
		return
	}

	sample := &models.SystemMetric{
		CPUPercent:  stats.CPUPercent,
		MemPercent:  stats.MemPercent,
		DiskPercent: stats.DiskPercent,
		Timestamp:   c.clock.Now(),
	}

	if err := c.store.StoreSystemMetric(ctx, sample); err != nil {
		log.Printf("failed to store system sample: %v", err)
	}

	if c.engine != nil {
		c.engine.EvaluateSystem(ctx, stats.CPUPercent, stats.MemPercent)
		c.checkErrorRate(ctx)
	}
}

// checkErrorRate evaluates the rolling API error rate if configured.
func (c *SystemCollector) checkErrorRate(ctx context.Context) {
	if c.rateStore == nil {
		return
	}

	now := c.clock.Now()

	samples, err := c.rateStore.GetAPIMetrics(ctx, models.TimeRange{
		Start: now.Add(-c.rateWindow),
		End:   now,
	}, "", "")
	if err != nil {
		log.Printf("error-rate check query failed: %v", err)
		return
	}

	if len(samples) == 0 {
		return
	}

	c.engine.EvaluateErrorRate(ctx, aggregate.ErrorRate(samples), c.rateWindow)
}
