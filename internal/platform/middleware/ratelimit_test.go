package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRateLimitAllowsWithinBurst(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 3})
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		if err := handler(e.NewContext(req, rec)); err != nil {
			t.Fatalf("request %d rejected: %v", i, err)
		}
	}
}

func TestRateLimitRejectsBeyondBurst(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := handler(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("first request rejected: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	err := handler(e.NewContext(req, rec))

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("got %v, want *echo.HTTPError", err)
	}
	if httpErr.Code != http.StatusTooManyRequests {
		t.Errorf("code = %d, want 429", httpErr.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header not set")
	}
}

func TestTokenBucketRefills(t *testing.T) {
	b := newTokenBucket(1000, 1)
	if !b.allow() {
		t.Fatal("first token not granted")
	}
	// Force a refill by rewinding the last refill time.
	b.mu.Lock()
	b.lastRefill = b.lastRefill.Add(-time.Second)
	b.mu.Unlock()
	if !b.allow() {
		t.Fatal("bucket did not refill")
	}
}
