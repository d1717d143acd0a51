package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter gates the login endpoint with a fixed window per client IP.
// The admin panel has a single password, so the limit exists to slow down
// guessing, not to shape traffic.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*loginWindow
	limit   int
	period  time.Duration
	stop    chan struct{}
}

type loginWindow struct {
	attempts  int
	startedAt time.Time
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*loginWindow),
		limit:   limit,
		period:  period,
		stop:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Stop ends the background cleanup loop.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.period)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, win := range rl.clients {
				if time.Since(win.startedAt) > rl.period {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// allow counts an attempt against the client's current window. When the
// window is full it returns how long until a fresh window opens.
func (rl *RateLimiter) allow(ip string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	win, ok := rl.clients[ip]
	if !ok || now.Sub(win.startedAt) > rl.period {
		rl.clients[ip] = &loginWindow{attempts: 1, startedAt: now}
		return true, 0
	}

	win.attempts++
	if win.attempts > rl.limit {
		return false, win.startedAt.Add(rl.period).Sub(now)
	}
	return true, 0
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retryAfter := rl.allow(r.RemoteAddr)
		if !ok {
			secs := int(retryAfter.Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many login attempts. Please try again later.", r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
