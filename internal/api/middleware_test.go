package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSlidingWindow(t *testing.T) {
	sw := newSlidingWindow(2, time.Minute)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	if !sw.allow("helpdesk", start) || !sw.allow("helpdesk", start.Add(time.Second)) {
		t.Fatal("first two hits should pass")
	}
	if sw.allow("helpdesk", start.Add(2*time.Second)) {
		t.Error("third hit inside the window should be rejected")
	}
	if !sw.allow("portal", start.Add(2*time.Second)) {
		t.Error("other clients have their own window")
	}
	if !sw.allow("helpdesk", start.Add(time.Minute+time.Millisecond)) {
		t.Error("first hit should have expired")
	}
}

func TestSlidingWindowForgetsIdleClients(t *testing.T) {
	sw := newSlidingWindow(5, time.Minute)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := range 100 {
		sw.allow(fmt.Sprintf("spoofed-%d", i), start)
	}
	if got := sw.keys(); got != 100 {
		t.Fatalf("expected 100 keys inside the window, got %d", got)
	}

	sw.allow("helpdesk", start.Add(2*time.Minute))
	if got := sw.keys(); got != 1 {
		t.Errorf("expected idle keys to be dropped, got %d keys", got)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		clients  []string
		wantLast int
	}{
		{"within limit", 3, []string{"svc-a", "svc-a", "svc-a"}, http.StatusOK},
		{"over limit", 2, []string{"svc-a", "svc-a", "svc-a"}, http.StatusTooManyRequests},
		{"keyed per client", 2, []string{"svc-a", "svc-a", "svc-b"}, http.StatusOK},
		{"disabled", 0, []string{"svc-a", "svc-a", "svc-a"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RateLimitMiddleware(tt.limit)(okHandler())
			var code int
			for _, c := range tt.clients {
				req := httptest.NewRequest("POST", "/ai/assign", nil)
				req.Header.Set(ClientIDHeader, c)
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)
				code = w.Code
			}
			if code != tt.wantLast {
				t.Errorf("expected %d on last request, got %d", tt.wantLast, code)
			}
		})
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if got := clientKey(req); got != "10.0.0.1" {
		t.Errorf("expected remote host, got %q", got)
	}
	req.Header.Set(ClientIDHeader, " helpdesk ")
	if got := clientKey(req); got != "helpdesk" {
		t.Errorf("expected client id, got %q", got)
	}
}

func TestAdminAuthMiddleware(t *testing.T) {
	tests := []struct {
		token, header string
		want          int
	}{
		{"secret", "Bearer secret", http.StatusOK},
		{"secret", "Bearer other", http.StatusUnauthorized},
		{"secret", "", http.StatusUnauthorized},
		{"", "", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		w := httptest.NewRecorder()
		AdminAuthMiddleware(tt.token)(okHandler()).ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Errorf("token=%q header=%q: expected %d, got %d", tt.token, tt.header, tt.want, w.Code)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	req := httptest.NewRequest("POST", "/ai/assign", nil)
	req.Header.Set(ClientIDHeader, "helpdesk")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	for _, want := range []string{"level=WARN", "status=503", "client=helpdesk", "path=/ai/assign"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %q: %s", want, line)
		}
	}
}
