package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, limit int, period time.Duration) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(limit, period)
	t.Cleanup(rl.Stop)
	return rl
}

func TestRateLimiter_DeniesPastLimit(t *testing.T) {
	rl := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _ := rl.allow("10.0.0.1:1234")
		if !ok {
			t.Fatalf("Expected attempt %d to be allowed", i+1)
		}
	}

	ok, retryAfter := rl.allow("10.0.0.1:1234")
	if ok {
		t.Error("Expected attempt 4 to be denied")
	}
	if retryAfter <= 0 {
		t.Errorf("Expected a positive retry delay, got %v", retryAfter)
	}

	// Other clients keep their own window
	if ok, _ := rl.allow("10.0.0.2:1234"); !ok {
		t.Error("Expected a different client to be allowed")
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := newTestLimiter(t, 1, 10*time.Millisecond)

	if ok, _ := rl.allow("10.0.0.1:1234"); !ok {
		t.Fatal("Expected first attempt to be allowed")
	}
	if ok, _ := rl.allow("10.0.0.1:1234"); ok {
		t.Fatal("Expected second attempt in window to be denied")
	}

	time.Sleep(20 * time.Millisecond)
	if ok, _ := rl.allow("10.0.0.1:1234"); !ok {
		t.Error("Expected a fresh window after the period passed")
	}
}

func TestRateLimiter_Middleware_SetsRetryAfter(t *testing.T) {
	rl := newTestLimiter(t, 1, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 within limit, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 past limit, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
}
