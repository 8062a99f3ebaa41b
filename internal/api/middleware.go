package api

import (
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// ClientIDHeader identifies the calling service for rate limiting and logs.
const ClientIDHeader = "X-Client-ID"

// AdminAuthMiddleware requires "Authorization: Bearer <token>". An empty
// token leaves the admin routes open.
func AdminAuthMiddleware(token string) func(http.Handler) http.Handler {
	want := []byte("Bearer " + token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), want) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.LogAttrs(r.Context(), level, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("client", r.Header.Get(ClientIDHeader)),
				slog.String("request_id", chiMiddleware.GetReqID(r.Context())),
			)
		})
	}
}

// clientKey is the X-Client-ID header, or the remote host without port.
func clientKey(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(ClientIDHeader)); id != "" {
		return id
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// slidingWindow admits at most limit hits per key within window. Keys with
// no hit left in the window are dropped, at most one window after going idle.
type slidingWindow struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	limit     int
	window    time.Duration
	lastSweep time.Time
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	return &slidingWindow{hits: make(map[string][]time.Time), limit: limit, window: window}
}

func (s *slidingWindow) allow(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-s.window)
	if now.Sub(s.lastSweep) >= s.window {
		s.sweep(cutoff)
		s.lastSweep = now
	}

	kept := inWindow(s.hits[key], cutoff)
	if len(kept) == 0 {
		delete(s.hits, key)
	}
	if len(kept) >= s.limit {
		s.hits[key] = kept
		return false
	}
	s.hits[key] = append(kept, now)
	return true
}

// sweep drops every key whose newest hit is outside the window.
func (s *slidingWindow) sweep(cutoff time.Time) {
	for key, ts := range s.hits {
		if len(ts) == 0 || !ts[len(ts)-1].After(cutoff) {
			delete(s.hits, key)
		}
	}
}

func (s *slidingWindow) keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hits)
}

func inWindow(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// RateLimitMiddleware allows requestsPerMinute per client. Zero or less
// disables limiting.
func RateLimitMiddleware(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	sw := newSlidingWindow(requestsPerMinute, time.Minute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sw.allow(clientKey(r), time.Now()) {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
