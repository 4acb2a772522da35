package collector

import (
	"context"
	"log"
	"sync"
	"time"
)

// Cleaner is the retention side of the store.
type Cleaner interface {
	CleanOldData(ctx context.Context, retentionPeriod time.Duration) error
}

const janitorInterval = time.Hour

// Janitor drops raw samples older than the retention period on a slow
// cadence. Like the collector, a failed pass never stops the schedule.
type Janitor struct {
	store     Cleaner
	retention time.Duration
	clock     Clock
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewJanitor(store Cleaner, retention time.Duration, clock Clock) *Janitor {
	if clock == nil {
		clock = NewRealClock()
	}

	return &Janitor{
		store:     store,
		retention: retention,
		clock:     clock,
		done:      make(chan struct{}),
	}
}

func (j *Janitor) Start(ctx context.Context) error {
	j.wg.Add(1)

	go j.run(ctx)

	return nil
}

func (j *Janitor) Stop(_ context.Context) error {
	j.closeOnce.Do(func() {
		close(j.done)
	})

	j.wg.Wait()

	return nil
}

func (j *Janitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := j.clock.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.done:
			return
		case <-ticker.Chan():
			if err := j.store.CleanOldData(ctx, j.retention); err != nil {
				log.Printf("retention cleanup failed: %v", err)
			}
		}
	}
}
