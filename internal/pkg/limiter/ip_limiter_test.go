package limiter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestMiddleware_LimitsPerIP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewIPRateLimiter(ctx, rate.Every(time.Hour), 2)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ws/rooms/x", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for n := 0; n < 2; n++ {
		if rec := do("198.51.100.1:4000"); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: status=%d", n, rec.Code)
		}
	}

	rec := do("198.51.100.1:4001")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d, want 429", rec.Code)
	}

	var body struct {
		Error struct {
			Message string `json:"message"`
			Status  int    `json:"status"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Status != http.StatusTooManyRequests {
		t.Fatalf("body=%+v", body)
	}

	if rec := do("198.51.100.2:4000"); rec.Code != http.StatusNoContent {
		t.Fatalf("other IP status=%d", rec.Code)
	}
}

func TestSweep_RemovesIdleLimiters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewIPRateLimiter(ctx, rate.Every(time.Second), 1)

	l.GetLimiter("a").Allow()
	l.GetLimiter("b")

	if removed := l.sweep(time.Now()); removed != 1 {
		t.Fatalf("removed=%d, want 1", removed)
	}
	if l.Len() != 1 {
		t.Fatalf("len=%d, want 1", l.Len())
	}

	if removed := l.sweep(time.Now().Add(2 * time.Second)); removed != 1 {
		t.Fatalf("removed=%d after refill, want 1", removed)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "203.0.113.9:555"
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Fatalf("got %q", got)
	}

	req.RemoteAddr = "203.0.113.9"
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Fatalf("got %q", got)
	}

	req.RemoteAddr = ""
	if got := ClientIP(req); got != "unknown_ip" {
		t.Fatalf("got %q", got)
	}
}
