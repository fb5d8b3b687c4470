package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SweepInterval = 0 // no background goroutines in tests
	r := NewRegistry(cfg, zap.NewNop())
	t.Cleanup(r.Close)
	return r
}

func TestKey_Building(t *testing.T) {
	assert.Equal(t, "user:42:categories", Key("42", "categories"))
	assert.Equal(t, "user:42:categories:expense", Key("42", "categories", "expense"))
	assert.Equal(t, "user:42:timeseries:expense:month", Key("42", "timeseries", "expense", "month"))
}

func TestKey_EmptySuffixesDropped(t *testing.T) {
	// No trailing separator or placeholder when suffixes are empty.
	assert.Equal(t, "user:42:categories", Key("42", "categories", ""))
	assert.Equal(t, "user:42:summary:month", Key("42", "summary", "", "month"))
}

func TestRegistry_InvalidateUser_AllCaches(t *testing.T) {
	r := testRegistry(t)
	r.Categories.Set(Key("42", "categories"), "a")
	r.User.Set(Key("42", "profile"), "b")
	r.Aggregation.Set(Key("42", "summary"), "c")
	r.General.Set(Key("42", "misc"), "d")
	r.Categories.Set(Key("7", "categories"), "other user")

	removed := r.InvalidateUser("42")

	assert.Equal(t, 4, removed)
	assert.False(t, r.Categories.Has(Key("42", "categories")))
	assert.False(t, r.User.Has(Key("42", "profile")))
	assert.False(t, r.Aggregation.Has(Key("42", "summary")))
	assert.False(t, r.General.Has(Key("42", "misc")))
	assert.True(t, r.Categories.Has(Key("7", "categories")))
}

func TestRegistry_InvalidateUser_PrefixIsExact(t *testing.T) {
	// user 42's pattern must not touch users 421 or 4.
	r := testRegistry(t)
	r.Categories.Set(Key("42", "categories"), "a")
	r.Categories.Set(Key("421", "categories"), "b")
	r.Categories.Set(Key("4", "categories"), "c")

	removed := r.InvalidateUser("42")

	assert.Equal(t, 1, removed)
	assert.True(t, r.Categories.Has(Key("421", "categories")))
	assert.True(t, r.Categories.Has(Key("4", "categories")))
}

func TestRegistry_InvalidateUser_NoEntries(t *testing.T) {
	r := testRegistry(t)

	assert.Equal(t, 0, r.InvalidateUser("nobody"))
}

func TestRegistry_AllStats(t *testing.T) {
	r := testRegistry(t)
	r.Categories.Set("k", "v")
	r.Categories.Get("k")
	r.Aggregation.Get("absent")

	stats := r.AllStats()

	assert.Len(t, stats, 4)
	assert.Equal(t, int64(1), stats["categories"].Hits)
	assert.Equal(t, 1, stats["categories"].Size)
	assert.Equal(t, int64(1), stats["aggregation"].Misses)
	assert.Equal(t, int64(0), stats["user"].Hits)
	assert.Equal(t, int64(0), stats["general"].Hits)
}

func TestNewRegistry_AppliesPolicies(t *testing.T) {
	cfg := Config{
		Categories:  Policy{MaxSize: 1, TTL: time.Minute},
		User:        Policy{MaxSize: 2, TTL: time.Minute},
		Aggregation: Policy{MaxSize: 2, TTL: time.Minute},
		General:     Policy{MaxSize: 2, TTL: time.Minute},
	}
	r := NewRegistry(cfg, zap.NewNop())
	defer r.Close()

	r.Categories.Set("a", 1)
	r.Categories.Set("b", 2)

	assert.Equal(t, 1, r.Categories.Len())
}
