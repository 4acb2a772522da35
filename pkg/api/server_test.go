package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/atelierhq/pulse/pkg/cache"
	"github.com/atelierhq/pulse/pkg/config"
	"github.com/atelierhq/pulse/pkg/db"
	"github.com/atelierhq/pulse/pkg/models"
	"github.com/atelierhq/pulse/pkg/query"
	"github.com/atelierhq/pulse/pkg/sysinfo"
)

type okPinger struct{}

func (okPinger) Ping() error { return nil }

func testQueryService(t *testing.T, ctrl *gomock.Controller, store *db.MockQueryStore) *query.Service {
	t.Helper()

	host := sysinfo.NewMockProvider(ctrl)
	host.EXPECT().
		Snapshot(gomock.Any()).
		Return(&sysinfo.Stats{CPUPercent: 10, MemPercent: 20, Uptime: time.Hour}, nil).
		AnyTimes()

	return query.NewService(store, okPinger{}, cache.NewNoop(), host, config.ThresholdConfig{
		CPUWarn: 75, CPUCrit: 90, MemWarn: 75, MemCrit: 90,
	})
}

func emptyQueryStore(ctrl *gomock.Controller) *db.MockQueryStore {
	store := db.NewMockQueryStore(ctrl)
	store.EXPECT().GetAPIMetrics(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	store.EXPECT().GetSystemMetrics(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	store.EXPECT().GetErrors(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	store.EXPECT().ListAlerts(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	store.EXPECT().CountAlertsByStatus(gomock.Any()).Return(map[models.AlertStatus]int{}, nil).AnyTimes()
	store.EXPECT().CountAlertsBySeverity(gomock.Any()).Return(map[models.Severity]int{}, nil).AnyTimes()

	return store
}

func TestSummaryEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := NewServer(testQueryService(t, ctrl, emptyQueryStore(ctrl)), db.NewMockAlertStore(ctrl), NewHub())

	req := httptest.NewRequest(http.MethodGet, "/api/metrics/summary", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp query.SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestBadTimeRangeIsClientError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := NewServer(testQueryService(t, ctrl, emptyQueryStore(ctrl)), db.NewMockAlertStore(ctrl), NewHub())

	tests := []struct {
		name string
		url  string
	}{
		{name: "malformed start", url: "/api/metrics/errors?startTime=yesterday&endTime=2025-04-01T00:00:00Z"},
		{name: "missing end", url: "/api/metrics/errors?startTime=2025-04-01T00:00:00Z"},
		{name: "inverted range", url: "/api/metrics/api?startTime=2025-04-02T00:00:00Z&endTime=2025-04-01T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()

			srv.Router().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUnknownTimeframeFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := NewServer(testQueryService(t, ctrl, emptyQueryStore(ctrl)), db.NewMockAlertStore(ctrl), NewHub())

	req := httptest.NewRequest(http.MethodGet, "/api/metrics/api?timeframe=banana", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp query.APIStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 24*time.Hour, resp.TimeRange.End.Sub(resp.TimeRange.Start))
}

func TestResolveAlert(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	alerts := db.NewMockAlertStore(ctrl)
	alerts.EXPECT().ResolveAlert(gomock.Any(), "abc-123").Return(nil)

	srv := NewServer(testQueryService(t, ctrl, emptyQueryStore(ctrl)), alerts, NewHub())

	req := httptest.NewRequest(http.MethodPost, "/api/alerts/abc-123/resolve", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "resolved", resp["status"])
}

func TestResolveMissingAlertIs404(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	alerts := db.NewMockAlertStore(ctrl)
	alerts.EXPECT().ResolveAlert(gomock.Any(), "nope").Return(db.ErrAlertNotFound)

	srv := NewServer(testQueryService(t, ctrl, emptyQueryStore(ctrl)), alerts, NewHub())

	req := httptest.NewRequest(http.MethodPost, "/api/alerts/nope/resolve", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAlertsRejectsInvalidSeverity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := NewServer(testQueryService(t, ctrl, emptyQueryStore(ctrl)), db.NewMockAlertStore(ctrl), NewHub())

	req := httptest.NewRequest(http.MethodGet, "/api/alerts?severity=apocalyptic", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := NewServer(testQueryService(t, ctrl, emptyQueryStore(ctrl)), db.NewMockAlertStore(ctrl), NewHub())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp query.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, query.HealthOK, resp.Status)
	assert.Contains(t, resp.Components, "database")
}

func TestCORSPreflight(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := NewServer(testQueryService(t, ctrl, emptyQueryStore(ctrl)), db.NewMockAlertStore(ctrl), NewHub())

	// No EXPECT on the alert store: preflight must short-circuit in the
	// middleware without reaching any handler
	for _, path := range []string{
		"/api/metrics/summary",
		"/api/metrics/errors",
		"/api/metrics/api",
		"/api/alerts",
		"/api/alerts/abc-123/resolve",
		"/api/health",
		"/api/performance",
	} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		rec := httptest.NewRecorder()

		srv.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), path)
	}
}

func TestRateLimitKicksIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := NewServer(
		testQueryService(t, ctrl, emptyQueryStore(ctrl)),
		db.NewMockAlertStore(ctrl),
		NewHub(),
		WithRateLimit(1), // burst of 2
	)

	codes := make([]int, 0, 3)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/metrics/summary", nil)
		req.RemoteAddr = "10.0.0.9:55555"
		rec := httptest.NewRecorder()

		srv.Router().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	srv.Close()
	srv.Close() // idempotent
}

func TestRateLimiterStopsOnClose(t *testing.T) {
	rl := &rateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   1,
		burst:   1,
		done:    make(chan struct{}),
	}

	exited := make(chan struct{})

	go func() {
		rl.evictLoop()
		close(exited)
	}()

	rl.close()

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("eviction loop did not stop")
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := newRateLimiter(1)
	defer rl.close()

	rl.allow("10.0.0.1")
	rl.allow("10.0.0.2")

	rl.mu.Lock()
	rl.clients["10.0.0.1"].lastSeen = time.Now().Add(-2 * limiterIdleTTL)
	rl.mu.Unlock()

	rl.evictIdle()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	assert.NotContains(t, rl.clients, "10.0.0.1")
	assert.Contains(t, rl.clients, "10.0.0.2")
}

func TestRequestCaptureRecordsMetric(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	captured := make(chan *models.APIMetric, 1)

	samples := db.NewMockSampleStore(ctrl)
	samples.EXPECT().
		StoreAPIMetric(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *models.APIMetric) error {
			captured <- m
			return nil
		})

	srv := NewServer(
		testQueryService(t, ctrl, emptyQueryStore(ctrl)),
		db.NewMockAlertStore(ctrl),
		NewHub(),
		WithRequestCapture(samples),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/metrics/summary", nil)
	req.RemoteAddr = "10.0.0.7:40000"
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	select {
	case m := <-captured:
		assert.Equal(t, "/api/metrics/summary", m.Path)
		assert.Equal(t, http.MethodGet, m.Method)
		assert.Equal(t, http.StatusOK, m.StatusCode)
		assert.Equal(t, "10.0.0.7", m.RemoteAddr)
	case <-time.After(2 * time.Second):
		t.Fatal("no metric captured")
	}
}

type chanSubscriber struct {
	ch        chan []byte
	err       error
	closed    chan struct{}
	closeOnce sync.Once
}

func newChanSubscriber(err error) *chanSubscriber {
	return &chanSubscriber{ch: make(chan []byte, 1), err: err, closed: make(chan struct{})}
}

func (s *chanSubscriber) Send(payload []byte) error {
	if s.err != nil {
		return s.err
	}

	s.ch <- payload

	return nil
}

func (s *chanSubscriber) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
}

func TestHubBroadcastsAlerts(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	sub := newChanSubscriber(nil)
	hub.Register(sub)

	alert := &models.Alert{ID: "a1", Type: "system-cpu", Severity: models.SeverityHigh}
	require.NoError(t, hub.Notify(context.Background(), alert))

	select {
	case payload := <-sub.ch:
		var got models.Alert
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, "a1", got.ID)
		assert.Equal(t, models.SeverityHigh, got.Severity)
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast received")
	}
}

func TestHubDropsFailingSubscriber(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	bad := newChanSubscriber(errors.New("gone"))
	good := newChanSubscriber(nil)

	hub.Register(bad)
	hub.Register(good)

	require.NoError(t, hub.Notify(context.Background(), &models.Alert{ID: "a2"}))

	select {
	case <-good.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy subscriber missed broadcast")
	}

	select {
	case <-bad.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("failing subscriber was not dropped")
	}
}
