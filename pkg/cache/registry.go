package cache

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Cache policies differ per registry instance: category lists rarely change
// so they get a large capacity and a long TTL, while aggregation results must
// stay fresh and get the opposite.

// Policy is the capacity/TTL pair for one named cache.
type Policy struct {
	MaxSize int
	TTL     time.Duration
}

// Config holds the policies for every named cache plus the shared sweep
// interval. A zero SweepInterval disables the background sweepers.
type Config struct {
	Categories    Policy
	User          Policy
	Aggregation   Policy
	General       Policy
	SweepInterval time.Duration
}

// DefaultConfig returns the policies used when configuration does not
// override them.
func DefaultConfig() Config {
	return Config{
		Categories:    Policy{MaxSize: 500, TTL: 30 * time.Minute},
		User:          Policy{MaxSize: 200, TTL: 15 * time.Minute},
		Aggregation:   Policy{MaxSize: 100, TTL: 2 * time.Minute},
		General:       Policy{MaxSize: 300, TTL: 10 * time.Minute},
		SweepInterval: time.Minute,
	}
}

// Registry owns the four named cache instances. It is constructed once at the
// composition root and passed to whatever needs it; there are deliberately no
// package-level singletons, so tests get isolated instances.
type Registry struct {
	Categories  *LRUCache[any]
	User        *LRUCache[any]
	Aggregation *LRUCache[any]
	General     *LRUCache[any]
}

// NewRegistry builds the named caches from cfg and starts their sweepers.
func NewRegistry(cfg Config, logger *zap.Logger, opts ...Option[any]) *Registry {
	build := func(p Policy) *LRUCache[any] {
		cacheOpts := append([]Option[any]{WithLogger[any](logger)}, opts...)
		c := New[any](p.MaxSize, p.TTL, cacheOpts...)
		if cfg.SweepInterval > 0 {
			c.StartSweep(cfg.SweepInterval)
		}
		return c
	}
	return &Registry{
		Categories:  build(cfg.Categories),
		User:        build(cfg.User),
		Aggregation: build(cfg.Aggregation),
		General:     build(cfg.General),
	}
}

// Close stops every background sweeper. Called on shutdown and in tests.
func (r *Registry) Close() {
	for _, c := range r.all() {
		c.StopSweep()
	}
}

// Key builds the canonical cache key user:<userID>:<resource>[:<suffix>...].
// Empty suffixes are dropped entirely so "categories" and "categories:<type>"
// stay distinguishable and no placeholder ever appears in a key.
func Key(userID, resource string, suffix ...string) string {
	parts := make([]string, 0, 3+len(suffix))
	parts = append(parts, "user", userID, resource)
	for _, s := range suffix {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ":")
}

// InvalidateUser removes every entry belonging to userID from all named
// caches and returns the total removed. Safe to call for a user with no
// cached entries. Every successful mutation of a user's data must call this
// before returning; a missed invalidation leaves stale reads visible until
// the TTL lapses.
func (r *Registry) InvalidateUser(userID string) int {
	pattern := "user:" + userID + ":*"
	total := 0
	for _, c := range r.all() {
		total += c.DeletePattern(pattern)
	}
	return total
}

// AllStats returns a stats snapshot per named cache, keyed by cache name.
func (r *Registry) AllStats() map[string]Stats {
	return map[string]Stats{
		"categories":  r.Categories.Stats(),
		"user":        r.User.Stats(),
		"aggregation": r.Aggregation.Stats(),
		"general":     r.General.Stats(),
	}
}

func (r *Registry) all() []*LRUCache[any] {
	return []*LRUCache[any]{r.Categories, r.User, r.Aggregation, r.General}
}
