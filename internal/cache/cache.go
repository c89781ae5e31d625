// Package cache holds the in-process caches used by the session store and the
// intent classifier.
package cache

import (
	"log/slog"
	"time"
)

// Cache is a keyed store with expiring entries.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	SetWithTTL(key string, data T, ttl time.Duration)
	Delete(key string)
	Len() int
}

// Cleaner is implemented by caches that can drop expired entries on demand.
type Cleaner interface {
	CleanExpired() int
}

// Janitor sweeps registered caches on a fixed interval so that entries that
// are never read again still get released.
type Janitor struct {
	logger  *slog.Logger
	caches  []Cleaner
	stop    chan struct{}
	stopped chan struct{}
}

// NewJanitor creates a janitor. Call Start once every cache is registered.
func NewJanitor(logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		logger:  logger,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Register adds c to the sweep list.
func (j *Janitor) Register(c Cleaner) {
	j.caches = append(j.caches, c)
}

// Start launches the sweep loop.
func (j *Janitor) Start(interval time.Duration) {
	go j.run(interval)
}

func (j *Janitor) run(interval time.Duration) {
	defer close(j.stopped)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := 0
			for _, c := range j.caches {
				removed += c.CleanExpired()
			}
			if removed > 0 {
				j.logger.Debug("Expired cache entries removed", "count", removed)
			}
		case <-j.stop:
			return
		}
	}
}

// Stop ends the sweep loop and waits for it to exit. It must only be called
// after Start.
func (j *Janitor) Stop() {
	close(j.stop)
	<-j.stopped
}
