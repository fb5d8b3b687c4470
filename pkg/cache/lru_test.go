package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives TTL expiry deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLRUCache_Get_Miss(t *testing.T) {
	c := New[string](10, time.Minute)

	v, ok := c.Get("absent")

	assert.False(t, ok)
	assert.Equal(t, "", v)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestLRUCache_SetGet_RoundTrip(t *testing.T) {
	c := New[string](10, time.Minute)

	c.Set("k", "v")
	v, ok := c.Get("k")

	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestLRUCache_Set_EvictsLeastRecentlyUsed(t *testing.T) {
	// Arrange: capacity 2, access order makes "b" the LRU entry.
	c := New[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	_, ok := c.Get("a")
	require.True(t, ok)

	// Act
	c.Set("c", "3")

	// Assert: "b" evicted, "a" and "c" survive.
	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestLRUCache_Set_OverwriteDoesNotEvict(t *testing.T) {
	c := New[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Set("a", "updated")

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "updated", v)
	_, ok = c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, int64(0), c.Stats().Evictions)
}

func TestLRUCache_Set_MaxSizeOne(t *testing.T) {
	c := New[int](1, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestLRUCache_Get_ExpiredEntry(t *testing.T) {
	clock := newFakeClock()
	c := New[string](10, time.Minute, WithClock[string](clock.Now))
	c.Set("k", "v")

	clock.Advance(61 * time.Second)
	v, ok := c.Get("k")

	assert.False(t, ok)
	assert.Equal(t, "", v)
	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Evictions)
	assert.Equal(t, 0, stats.Size)
}

func TestLRUCache_Set_PerEntryTTLOverride(t *testing.T) {
	clock := newFakeClock()
	c := New[string](10, time.Hour, WithClock[string](clock.Now))
	c.Set("short", "v", time.Second)
	c.Set("long", "v")

	clock.Advance(2 * time.Second)

	_, ok := c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("long")
	assert.True(t, ok)
}

func TestLRUCache_Set_ZeroTTLExpiresImmediately(t *testing.T) {
	c := New[string](10, time.Minute)

	c.Set("k", "v", 0)
	_, ok := c.Get("k")

	assert.False(t, ok)
}

func TestLRUCache_Set_ZeroMaxSizeStoresNothing(t *testing.T) {
	c := New[string](0, time.Minute)

	c.Set("k", "v")

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestLRUCache_Delete(t *testing.T) {
	c := New[string](10, time.Minute)
	c.Set("k", "v")

	assert.True(t, c.Delete("k"))
	assert.False(t, c.Delete("k"))
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestLRUCache_Has_DoesNotTouchStats(t *testing.T) {
	c := New[string](10, time.Minute)
	c.Set("k", "v")

	assert.True(t, c.Has("k"))
	assert.False(t, c.Has("absent"))

	stats := c.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
}

func TestLRUCache_DeletePattern(t *testing.T) {
	c := New[string](10, time.Minute)
	c.Set("user:42:categories", "a")
	c.Set("user:42:summary", "b")
	c.Set("user:7:categories", "c")

	removed := c.DeletePattern("user:42:*")

	assert.Equal(t, 2, removed)
	assert.False(t, c.Has("user:42:categories"))
	assert.False(t, c.Has("user:42:summary"))
	assert.True(t, c.Has("user:7:categories"))
}

func TestLRUCache_DeletePattern_NoMatches(t *testing.T) {
	c := New[string](10, time.Minute)
	c.Set("user:7:categories", "c")

	removed := c.DeletePattern("user:42:*")

	assert.Equal(t, 0, removed)
	assert.Equal(t, 1, c.Len())
}

func TestLRUCache_DeletePattern_LiteralMetacharacters(t *testing.T) {
	// Dots and brackets in keys must match literally, not as regex.
	c := New[string](10, time.Minute)
	c.Set("a.b", "1")
	c.Set("aXb", "2")

	removed := c.DeletePattern("a.b")

	assert.Equal(t, 1, removed)
	assert.True(t, c.Has("aXb"))
}

func TestLRUCache_Clear_PreservesStats(t *testing.T) {
	c := New[string](10, time.Minute)
	c.Set("k", "v")
	c.Get("k")
	c.Get("absent")

	c.Clear()

	stats := c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 0, c.Len())
}

func TestLRUCache_Stats_HitRate(t *testing.T) {
	c := New[string](10, time.Minute)

	assert.Equal(t, float64(0), c.Stats().HitRate)

	c.Set("k", "v")
	c.Get("k")
	c.Get("k")
	c.Get("k")
	c.Get("absent")

	assert.Equal(t, float64(75), c.Stats().HitRate)
}

func TestLRUCache_GetOrSet_PopulatesOnMiss(t *testing.T) {
	c := New[int](10, time.Minute)
	calls := 0
	producer := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	v, err := c.GetOrSet(context.Background(), "k", producer)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = c.GetOrSet(context.Background(), "k", producer)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestLRUCache_GetOrSet_ProducerErrorNotCached(t *testing.T) {
	c := New[int](10, time.Minute)
	boom := errors.New("store down")

	_, err := c.GetOrSet(context.Background(), "k", func(context.Context) (int, error) {
		return 0, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Has("k"))
}

func TestLRUCache_Sweep_RemovesExpiredEntries(t *testing.T) {
	clock := newFakeClock()
	c := New[string](10, time.Minute, WithClock[string](clock.Now))
	c.Set("old", "v")
	clock.Advance(30 * time.Second)
	c.Set("fresh", "v")

	clock.Advance(31 * time.Second)
	removed := c.Sweep()

	assert.Equal(t, 1, removed)
	assert.True(t, c.Has("fresh"))
	assert.False(t, c.Has("old"))
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestLRUCache_StartStopSweep(t *testing.T) {
	c := New[string](10, time.Millisecond)
	c.Set("k", "v")

	c.StartSweep(5 * time.Millisecond)
	c.StartSweep(5 * time.Millisecond) // second call is a no-op
	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)

	c.StopSweep()
	c.StopSweep() // safe without a running sweeper
}

func TestLRUCache_ConcurrentAccess(t *testing.T) {
	c := New[int](64, time.Minute)
	var wg sync.WaitGroup
	keys := []string{"a", "b", "c", "d"}

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				k := keys[(n+j)%len(keys)]
				c.Set(k, j)
				c.Get(k)
				if j%50 == 0 {
					c.DeletePattern("a*")
				}
			}
		}(i)
	}
	wg.Wait()

	stats := c.Stats()
	assert.Equal(t, stats.Hits+stats.Misses, int64(8*500))
}
