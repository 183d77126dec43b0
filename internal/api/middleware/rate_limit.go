package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	apiContext "frontdesk/internal/api/context"
	"frontdesk/internal/pkg/errors"
	"frontdesk/internal/platform/config"
	"frontdesk/internal/platform/models"
)

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// RateLimiter applies a per-caller token bucket. Authenticated requests are
// keyed by organization, everything else by remote address.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	cfg     config.RateLimitConfig
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		cfg:     cfg,
	}
}

func (rl *RateLimiter) allow(key string, perMinute int) bool {
	if perMinute <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(perMinute), lastRefill: now}
		rl.buckets[key] = b
	}

	refill := now.Sub(b.lastRefill).Minutes() * float64(perMinute)
	b.tokens += refill
	if b.tokens > float64(perMinute) {
		b.tokens = float64(perMinute)
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) limit(perMinute int, prefix string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := prefix + callerKey(r)
		if !rl.allow(key, perMinute) {
			errors.WriteError(w, http.StatusTooManyRequests, errors.ErrCodeRateLimited, "Too many requests")
			return
		}
		next(w, r)
	}
}

func (rl *RateLimiter) Read(next http.HandlerFunc) http.HandlerFunc {
	return rl.limit(rl.cfg.APIReadPerMinute, "read:", next)
}

func (rl *RateLimiter) Write(next http.HandlerFunc) http.HandlerFunc {
	return rl.limit(rl.cfg.APIWritePerMinute, "write:", next)
}

func (rl *RateLimiter) Webhook(next http.HandlerFunc) http.HandlerFunc {
	return rl.limit(rl.cfg.WebhookPerMinute, "hook:", next)
}

func callerKey(r *http.Request) string {
	if org, ok := r.Context().Value(apiContext.Org).(*models.Organization); ok && org != nil {
		return org.ID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
