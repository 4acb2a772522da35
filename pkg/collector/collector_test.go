package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/pulse/pkg/db"
	"github.com/atelierhq/pulse/pkg/models"
	"github.com/atelierhq/pulse/pkg/sysinfo"
)

// fakeClock drives ticks manually so tests never sleep through real
// intervals.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	tick chan time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start, tick: make(chan time.Time)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	return &fakeTicker{c: c.tick}
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()

	c.tick <- now
}

type fakeTicker struct {
	c chan time.Time
}

func (t *fakeTicker) Chan() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()                  {}

// fakeProvider returns queued snapshots in order, then repeats the last.
type fakeProvider struct {
	mu    sync.Mutex
	stats []*sysinfo.Stats
	errs  []error
	calls int
}

func (p *fakeProvider) Snapshot(context.Context) (*sysinfo.Stats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.calls
	p.calls++

	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}

	if i >= len(p.stats) {
		i = len(p.stats) - 1
	}

	return p.stats[i], nil
}

// recordingStore collects stored samples and can fail selectively.
type recordingStore struct {
	db.SampleStore

	mu      sync.Mutex
	samples []models.SystemMetric
	fail    int // fail the first n writes
}

func (s *recordingStore) StoreSystemMetric(_ context.Context, m *models.SystemMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail > 0 {
		s.fail--
		return errors.New("store unavailable")
	}

	s.samples = append(s.samples, *m)

	return nil
}

func (s *recordingStore) stored() []models.SystemMetric {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.SystemMetric(nil), s.samples...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.After(2 * time.Second)

	for {
		if cond() {
			return
		}

		select {
		case <-deadline:
			t.Fatal("condition not reached in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestCollectorPersistsSampleEachTick(t *testing.T) {
	start := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)

	provider := &fakeProvider{stats: []*sysinfo.Stats{{CPUPercent: 42, MemPercent: 55}}}
	store := &recordingStore{}

	c, err := NewSystemCollector(store, nil, provider, time.Minute, clock)
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))

	// Initial sample fires without waiting for the first interval
	waitFor(t, func() bool { return len(store.stored()) == 1 })

	clock.advance(time.Minute)
	waitFor(t, func() bool { return len(store.stored()) == 2 })

	clock.advance(time.Minute)
	waitFor(t, func() bool { return len(store.stored()) == 3 })

	require.NoError(t, c.Stop(context.Background()))

	samples := store.stored()
	assert.InDelta(t, 42.0, samples[0].CPUPercent, 0.0001)
	assert.Equal(t, start, samples[0].Timestamp)
	assert.Equal(t, start.Add(2*time.Minute), samples[2].Timestamp)
}

func TestCollectorSurvivesFailures(t *testing.T) {
	clock := newFakeClock(time.Now())

	// First snapshot fails, then the store fails once, then all good
	provider := &fakeProvider{
		stats: []*sysinfo.Stats{nil, {CPUPercent: 30, MemPercent: 40}, {CPUPercent: 31, MemPercent: 41}},
		errs:  []error{errors.New("sensors unavailable")},
	}
	store := &recordingStore{fail: 1}

	c, err := NewSystemCollector(store, nil, provider, time.Minute, clock)
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))

	// Tick 1: snapshot error. Tick 2: store error. Tick 3: success.
	waitFor(t, func() bool {
		provider.mu.Lock()
		defer provider.mu.Unlock()

		return provider.calls == 1
	})

	clock.advance(time.Minute)

	waitFor(t, func() bool {
		provider.mu.Lock()
		defer provider.mu.Unlock()

		return provider.calls == 2
	})

	clock.advance(time.Minute)
	waitFor(t, func() bool { return len(store.stored()) == 1 })

	require.NoError(t, c.Stop(context.Background()))

	assert.InDelta(t, 31.0, store.stored()[0].CPUPercent, 0.0001)
}

func TestCollectorRejectsBadInterval(t *testing.T) {
	_, err := NewSystemCollector(&recordingStore{}, nil, &fakeProvider{}, 0, nil)
	assert.Error(t, err)
}

func TestJanitorCleansOnSchedule(t *testing.T) {
	clock := newFakeClock(time.Now())

	var (
		mu    sync.Mutex
		calls int
	)

	cleaner := cleanerFunc(func(_ context.Context, retention time.Duration) error {
		mu.Lock()
		defer mu.Unlock()

		calls++
		assert.Equal(t, 30*24*time.Hour, retention)

		if calls == 1 {
			return errors.New("db busy")
		}

		return nil
	})

	j := NewJanitor(cleaner, 30*24*time.Hour, clock)
	require.NoError(t, j.Start(context.Background()))

	clock.advance(janitorInterval)
	waitFor(t, func() bool { mu.Lock(); defer mu.Unlock(); return calls == 1 })

	// A failed pass must not stop the schedule
	clock.advance(janitorInterval)
	waitFor(t, func() bool { mu.Lock(); defer mu.Unlock(); return calls == 2 })

	require.NoError(t, j.Stop(context.Background()))
}

type cleanerFunc func(ctx context.Context, retention time.Duration) error

func (f cleanerFunc) CleanOldData(ctx context.Context, retention time.Duration) error {
	return f(ctx, retention)
}
