// Package api exposes the read surface over HTTP: metric summaries,
// error and traffic breakdowns, alert listings with an explicit resolve
// action, health, performance history and a live alert stream.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/atelierhq/pulse/pkg/cache"
	"github.com/atelierhq/pulse/pkg/db"
	"github.com/atelierhq/pulse/pkg/models"
	"github.com/atelierhq/pulse/pkg/query"
)

// Server wires the query facade and the alert store into an HTTP router.
type Server struct {
	queries *query.Service
	alerts  db.AlertStore
	hub     *Hub
	feed    cache.Cache
	limiter *rateLimiter
	router  *mux.Router
}

// Option configures a Server before its routes are registered.
type Option func(*Server, *middlewares)

type middlewares struct {
	capture func(http.Handler) http.Handler
	limit   func(http.Handler) http.Handler
}

// WithRequestCapture records one APIMetric per inbound request into the
// given store.
func WithRequestCapture(store db.SampleStore) Option {
	return func(_ *Server, m *middlewares) {
		m.capture = captureMiddleware(store)
	}
}

// WithRateLimit applies a per-client request limit. Non-positive rates
// disable limiting.
func WithRateLimit(perSec float64) Option {
	return func(s *Server, m *middlewares) {
		if perSec > 0 {
			s.limiter = newRateLimiter(perSec)
			m.limit = s.limiter.middleware
		}
	}
}

// WithAlertFeed replays the cache's recent-alerts feed to newly
// connected stream clients.
func WithAlertFeed(c cache.Cache) Option {
	return func(s *Server, _ *middlewares) {
		s.feed = c
	}
}

func NewServer(queries *query.Service, alerts db.AlertStore, hub *Hub, opts ...Option) *Server {
	s := &Server{
		queries: queries,
		alerts:  alerts,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	var m middlewares

	for _, opt := range opts {
		opt(s, &m)
	}

	s.setupRoutes(&m)

	return s
}

// Router returns the configured handler for serving.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases server-owned background resources. Safe to call more
// than once.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.close()
	}
}

func (s *Server) setupRoutes(m *middlewares) {
	// CORS middleware
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	if m.limit != nil {
		s.router.Use(m.limit)
	}

	if m.capture != nil {
		s.router.Use(m.capture)
	}

	// OPTIONS is registered alongside each route's real method so
	// preflight requests match and reach the middleware's short-circuit
	// instead of mux's bare 405 handler
	s.router.HandleFunc("/api/metrics/summary", s.getSummary).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/metrics/errors", s.getErrorStats).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/metrics/api", s.getAPIStats).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/alerts", s.getAlerts).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/alerts/{id}/resolve", s.resolveAlert).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/api/health", s.getHealth).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/performance", s.getPerformance).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/ws", s.handleWS).Methods(http.MethodGet)
}

// parseTimeParams reads timeframe/startTime/endTime. A malformed or
// inverted explicit range is the one caller error this API surfaces.
func parseTimeParams(r *http.Request) (query.Params, error) {
	q := r.URL.Query()

	p := query.Params{Timeframe: q.Get("timeframe")}

	startRaw, endRaw := q.Get("startTime"), q.Get("endTime")
	if startRaw == "" && endRaw == "" {
		return p, nil
	}

	if startRaw == "" || endRaw == "" {
		return p, errors.New("startTime and endTime must be given together")
	}

	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return p, errors.New("invalid startTime, want RFC3339")
	}

	end, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		return p, errors.New("invalid endTime, want RFC3339")
	}

	if !end.After(start) {
		return p, errors.New("endTime must be after startTime")
	}

	p.Start, p.End = start, end

	return p, nil
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.queries.Summary(r.Context()))
}

func (s *Server) getErrorStats(w http.ResponseWriter, r *http.Request) {
	p, err := parseTimeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	component := r.URL.Query().Get("component")

	writeJSON(w, http.StatusOK, s.queries.ErrorStats(r.Context(), p, component))
}

func (s *Server) getAPIStats(w http.ResponseWriter, r *http.Request) {
	p, err := parseTimeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()

	writeJSON(w, http.StatusOK, s.queries.APIStats(r.Context(), p, q.Get("path"), q.Get("method")))
}

func (s *Server) getAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := db.AlertFilter{
		Status:   models.AlertStatus(q.Get("status")),
		Severity: models.Severity(q.Get("severity")),
	}

	if filter.Severity != "" && !filter.Severity.Valid() {
		writeError(w, http.StatusBadRequest, "invalid severity")
		return
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}

		filter.Limit = limit
	}

	writeJSON(w, http.StatusOK, s.queries.AlertSummary(r.Context(), filter))
}

func (s *Server) resolveAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.alerts.ResolveAlert(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, "no active alert with that id")
			return
		}

		writeError(w, http.StatusInternalServerError, "failed to resolve alert")

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(models.AlertResolved)})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	health := s.queries.Health(r.Context())

	status := http.StatusOK
	if health.Status == query.HealthDown {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, health)
}

func (s *Server) getPerformance(w http.ResponseWriter, r *http.Request) {
	p, err := parseTimeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.queries.Performance(r.Context(), p))
}
