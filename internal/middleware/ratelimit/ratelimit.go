// Package ratelimit throttles API clients with fixed one-minute windows.
package ratelimit

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const (
	window   = time.Minute
	idleTTL  = 10 * time.Minute
	retryFor = "60"
)

type Config struct {
	RequestsPerMinute int
	// CleanupInterval is how often idle clients are forgotten.
	CleanupInterval time.Duration
}

func DefaultConfig() Config {
	return Config{RequestsPerMinute: 120, CleanupInterval: 5 * time.Minute}
}

// bucket is one client's current window.
type bucket struct {
	opened time.Time
	seen   time.Time
	hits   int
}

// Limiter counts requests per client key. Stop releases its sweeper.
type Limiter struct {
	limit   int
	every   time.Duration
	now     func() time.Time
	denied  atomic.Int64
	mu      sync.Mutex
	buckets map[string]*bucket
	done    chan struct{}
	stop    sync.Once
}

func NewLimiter(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	l := &Limiter{
		limit:   cfg.RequestsPerMinute,
		every:   cfg.CleanupInterval,
		now:     time.Now,
		buckets: map[string]*bucket{},
		done:    make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Allow records a request for key and reports whether it fits the
// current window.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[key]
	if b == nil || now.Sub(b.opened) >= window {
		l.buckets[key] = &bucket{opened: now, seen: now, hits: 1}
		return true
	}
	b.seen = now
	b.hits++
	if b.hits <= l.limit {
		return true
	}
	l.denied.Add(1)
	return false
}

func (l *Limiter) sweepLoop() {
	t := time.NewTicker(l.every)
	defer t.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-t.C:
			l.sweep()
		}
	}
}

// sweep forgets clients idle longer than idleTTL.
func (l *Limiter) sweep() {
	cutoff := l.now().Add(-idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.seen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

func (l *Limiter) Stop() {
	l.stop.Do(func() { close(l.done) })
}

type Metrics struct {
	Rejected    int64
	ClientCount int64
}

func (l *Limiter) GetMetrics() Metrics {
	l.mu.Lock()
	n := len(l.buckets)
	l.mu.Unlock()
	return Metrics{Rejected: l.denied.Load(), ClientCount: int64(n)}
}

// Middleware rejects requests over the limit with 429 and Retry-After.
// onLimit writes the body; nil falls back to http.Error.
func (l *Limiter) Middleware(key func(*http.Request) string, onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	if onLimit == nil {
		onLimit = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.Allow(key(r)) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", retryFor)
			onLimit(w, r)
		})
	}
}
