package limiter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestMiddlewareRejectsOverBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewIPRateLimiter(ctx, "test", rate.Limit(0.001), 2)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "192.0.2.10:5555"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		codes = append(codes, w.Code)
	}

	want := []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}

	other := httptest.NewRequest("GET", "/", nil)
	other.RemoteAddr = "192.0.2.11:5555"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, other)
	if w.Code != http.StatusNoContent {
		t.Errorf("other client status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestSweepDropsRefilledBuckets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewIPRateLimiter(ctx, "test", rate.Limit(1), 1)
	l.GetLimiter("a").Allow()
	l.GetLimiter("b")

	if removed := l.Sweep(time.Now()); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if removed := l.Sweep(time.Now().Add(time.Minute)); removed != 1 {
		t.Errorf("later Sweep() removed %d, want 1", removed)
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "198.51.100.4:1234"
	if got := ClientIP(r); got != "198.51.100.4" {
		t.Errorf("ClientIP() = %q", got)
	}

	r.RemoteAddr = ""
	if got := ClientIP(r); got != "unknown_ip" {
		t.Errorf("ClientIP() = %q, want unknown_ip", got)
	}
}
