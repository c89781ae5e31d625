package session

import (
	"context"
	"time"

	"vslim/internal/cache"
	"vslim/internal/core"
)

// MemoryStore keeps pending frames in a process-local LRU.
type MemoryStore struct {
	entries *cache.LRU[[]core.Frame]
}

func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: cache.NewLRU[[]core.Frame](maxEntries, ttl)}
}

// Cache exposes the underlying LRU so it can be registered with a janitor.
func (s *MemoryStore) Cache() *cache.LRU[[]core.Frame] {
	return s.entries
}

func (s *MemoryStore) Get(_ context.Context, conversationID string) ([]core.Frame, bool, error) {
	k, err := key(conversationID)
	if err != nil {
		return nil, false, err
	}
	frames, ok := s.entries.Get(k)
	if !ok {
		return nil, false, nil
	}
	return cloneFrames(frames), true, nil
}

func (s *MemoryStore) Set(_ context.Context, conversationID string, frames []core.Frame) error {
	k, err := key(conversationID)
	if err != nil {
		return err
	}
	s.entries.Set(k, cloneFrames(frames))
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, conversationID string) error {
	k, err := key(conversationID)
	if err != nil {
		return err
	}
	s.entries.Delete(k)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// callers mutate TTLs in place, so stored frames never alias theirs
func cloneFrames(frames []core.Frame) []core.Frame {
	out := make([]core.Frame, len(frames))
	for i, f := range frames {
		out[i] = f.Clone()
	}
	return out
}
