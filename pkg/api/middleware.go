package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/atelierhq/pulse/pkg/db"
	"github.com/atelierhq/pulse/pkg/models"
)

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// captureMiddleware records one APIMetric per inbound request. The
// service observes its own traffic through the same store external
// reporters use. Writes are fire-and-forget so a slow store never adds
// request latency; the websocket route is skipped because its hijacked
// connection has no meaningful status or duration.
func captureMiddleware(store db.SampleStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/ws" {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			metric := &models.APIMetric{
				Path:           r.URL.Path,
				Method:         r.Method,
				StatusCode:     rec.status,
				ResponseTimeMs: float64(time.Since(start).Microseconds()) / 1000,
				RemoteAddr:     clientIP(r),
				Timestamp:      start,
			}

			// The request context is gone once the handler returns
			go func() {
				_ = store.StoreAPIMetric(context.Background(), metric)
			}()
		})
	}
}

// rateLimiter applies a per-client token bucket. Idle client buckets are
// dropped after an hour so the map stays bounded.
type rateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	done      chan struct{}
	closeOnce sync.Once
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	limiterIdleTTL = time.Hour
	evictInterval  = 10 * time.Minute
)

func newRateLimiter(perSec float64) *rateLimiter {
	burst := int(perSec * 2)
	if burst < 1 {
		burst = 1
	}

	rl := &rateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(perSec),
		burst:   burst,
		done:    make(chan struct{}),
	}

	go rl.evictLoop()

	return rl
}

// close stops the eviction goroutine.
func (rl *rateLimiter) close() {
	rl.closeOnce.Do(func() {
		close(rl.done)
	})
}

func (rl *rateLimiter) allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.clients[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[client] = cl
	}

	cl.lastSeen = time.Now()

	return cl.limiter.Allow()
}

func (rl *rateLimiter) evictLoop() {
	ticker := time.NewTicker(evictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *rateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for client, cl := range rl.clients {
		if time.Since(cl.lastSeen) > limiterIdleTTL {
			delete(rl.clients, client)
		}
	}
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
