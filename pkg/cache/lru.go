// Package cache implements the in-process read-path cache: a bounded LRU with
// per-entry TTL, pattern invalidation, and hit-rate statistics, plus the
// registry of named instances used across the application.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LRUCache is a thread-safe, bounded cache with least-recently-used eviction
// and per-entry TTL. Expired entries are dropped lazily on access and
// actively by the background sweeper (see StartSweep).
type LRUCache[T any] struct {
	mu         sync.Mutex
	items      map[string]*entry[T]
	order      *list.List // front = most recently used
	maxSize    int
	defaultTTL time.Duration

	hits      int64
	misses    int64
	evictions int64

	now    func() time.Time
	logger *zap.Logger

	sweepStop chan struct{}
	sweepDone chan struct{}
}

type entry[T any] struct {
	key        string
	value      T
	insertedAt time.Time
	ttl        time.Duration
	hitCount   int64
	element    *list.Element
}

// Option configures an LRUCache.
type Option[T any] func(*LRUCache[T])

// WithLogger attaches a logger; sweeps and pattern invalidations log at debug.
func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(c *LRUCache[T]) { c.logger = logger }
}

// WithClock overrides the time source. Tests use this to drive TTL expiry
// deterministically.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *LRUCache[T]) { c.now = now }
}

// New creates a cache holding at most maxSize entries, each expiring
// defaultTTL after insertion unless Set overrides it.
func New[T any](maxSize int, defaultTTL time.Duration, opts ...Option[T]) *LRUCache[T] {
	c := &LRUCache[T]{
		items:      make(map[string]*entry[T]),
		order:      list.New(),
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key. An expired entry is removed and counted as
// both a miss and an eviction. A hit moves the entry to the most-recently-used
// position.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if c.expired(e) {
		c.remove(e)
		c.misses++
		c.evictions++
		return zero, false
	}

	c.hits++
	e.hitCount++
	c.order.MoveToFront(e.element)
	return e.value, true
}

// Set stores value under key. A new key at capacity evicts the
// least-recently-used entry first; overwriting an existing key refreshes its
// value, TTL, and position without counting an eviction. An optional ttl
// overrides the cache default.
func (c *LRUCache[T]) Set(key string, value T, ttl ...time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entryTTL := c.defaultTTL
	if len(ttl) > 0 {
		entryTTL = ttl[0]
	}

	if e, ok := c.items[key]; ok {
		e.value = value
		e.insertedAt = c.now()
		e.ttl = entryTTL
		e.hitCount = 0
		c.order.MoveToFront(e.element)
		return
	}

	if c.maxSize <= 0 {
		return
	}
	for len(c.items) >= c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.remove(oldest.Value.(*entry[T]))
		c.evictions++
	}

	e := &entry[T]{
		key:        key,
		value:      value,
		insertedAt: c.now(),
		ttl:        entryTTL,
	}
	e.element = c.order.PushFront(e)
	c.items[key] = e
}

// Delete removes key, reporting whether it was present.
func (c *LRUCache[T]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return false
	}
	c.remove(e)
	return true
}

// Has reports whether key holds a live entry. Unlike Get it does not touch
// the statistics or the recency order, though an expired entry is still
// dropped.
func (c *LRUCache[T]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return false
	}
	if c.expired(e) {
		c.remove(e)
		return false
	}
	return true
}

// DeletePattern removes every key matching the glob pattern, where * matches
// any substring and all other characters match literally. Returns the number
// of entries removed. A pattern that fails to compile is treated as a literal
// key; invalidation must never take down a write path.
func (c *LRUCache[T]) DeletePattern(pattern string) int {
	re := compilePattern(pattern)

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.items {
		match := false
		if re != nil {
			match = re.MatchString(key)
		} else {
			match = key == pattern
		}
		if match {
			c.remove(e)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("cache pattern invalidation",
			zap.String("pattern", pattern),
			zap.Int("removed", removed),
		)
	}
	return removed
}

// Clear drops every entry. The hit/miss/eviction counters are cumulative
// history and survive.
func (c *LRUCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*entry[T])
	c.order.Init()
}

// GetOrSet returns the cached value for key, or invokes producer, stores the
// result, and returns it. Concurrent misses on the same key each call
// producer; in-flight deduplication is intentionally not provided.
func (c *LRUCache[T]) GetOrSet(ctx context.Context, key string, producer func(context.Context) (T, error), ttl ...time.Duration) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := producer(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(key, v, ttl...)
	return v, nil
}

// Len returns the number of entries currently held, expired or not.
func (c *LRUCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats holds cumulative cache counters. HitRate is a percentage.
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Size      int     `json:"size"`
	HitRate   float64 `json:"hitRate"`
	Evictions int64   `json:"evictions"`
}

// Stats returns a snapshot of the counters.
func (c *LRUCache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	rate := float64(0)
	if total := c.hits + c.misses; total > 0 {
		rate = float64(c.hits) / float64(total) * 100
	}
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Size:      len(c.items),
		HitRate:   rate,
		Evictions: c.evictions,
	}
}

// StartSweep launches a background goroutine that removes expired entries
// every interval. Calling it twice is a no-op. The sweeper holds the same
// lock as Get/Set only for the duration of the map walk.
func (c *LRUCache[T]) StartSweep(interval time.Duration) {
	c.mu.Lock()
	if c.sweepStop != nil {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	c.sweepStop = stop
	c.sweepDone = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-stop:
				return
			}
		}
	}()
}

// StopSweep stops the background sweeper and waits for it to exit. Safe to
// call without a running sweeper.
func (c *LRUCache[T]) StopSweep() {
	c.mu.Lock()
	stop, done := c.sweepStop, c.sweepDone
	c.sweepStop = nil
	c.sweepDone = nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// Sweep removes every expired entry immediately and returns how many were
// dropped. The background sweeper calls this on its interval; tests call it
// directly.
func (c *LRUCache[T]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, e := range c.items {
		if c.expired(e) {
			c.remove(e)
			c.evictions++
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("cache sweep", zap.Int("removed", removed))
	}
	return removed
}

// expired and remove require c.mu to be held.

func (c *LRUCache[T]) expired(e *entry[T]) bool {
	return c.now().Sub(e.insertedAt) >= e.ttl
}

func (c *LRUCache[T]) remove(e *entry[T]) {
	if e.element != nil {
		c.order.Remove(e.element)
	}
	delete(c.items, e.key)
}
