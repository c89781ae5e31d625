package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is a size-bounded cache evicting the least recently used entry. Each
// entry carries its own expiry; a zero TTL means the entry never expires.
type LRU[T any] struct {
	mu         sync.Mutex
	maxEntries int
	defaultTTL time.Duration
	items      map[string]*list.Element
	order      *list.List
	now        func() time.Time
}

type entry[T any] struct {
	key       string
	value     T
	expiresAt time.Time
}

func (e *entry[T]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// NewLRU creates a cache holding at most maxEntries values. maxEntries <= 0
// disables the size bound.
func NewLRU[T any](maxEntries int, defaultTTL time.Duration) *LRU[T] {
	return &LRU[T]{
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		items:      make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}
}

// Get returns the value under key and marks it as recently used.
func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[T])
	if e.expired(c.now()) {
		c.remove(elem)
		return zero, false
	}
	c.order.MoveToFront(elem)
	return e.value, true
}

// Set stores data under key with the default TTL.
func (c *LRU[T]) Set(key string, data T) {
	c.SetWithTTL(key, data, c.defaultTTL)
}

// SetWithTTL stores data under key, replacing any previous value.
func (c *LRU[T]) SetWithTTL(key string, data T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, value: data}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	if elem, ok := c.items[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(e)
	if c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		c.remove(c.order.Back())
	}
}

// Delete removes key. Missing keys are ignored.
func (c *LRU[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

func (c *LRU[T]) remove(elem *list.Element) {
	delete(c.items, elem.Value.(*entry[T]).key)
	c.order.Remove(elem)
}

// CleanExpired removes every expired entry and reports how many were dropped.
func (c *LRU[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if elem.Value.(*entry[T]).expired(now) {
			c.remove(elem)
			removed++
		}
		elem = next
	}
	return removed
}

// Len returns the number of stored entries, expired ones included until they
// are cleaned.
func (c *LRU[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
