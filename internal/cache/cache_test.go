package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache[V any](ttl time.Duration) (*Cache[V], *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[V](ttl)
	c.now = clock.Now
	return c, clock
}

func TestCacheGetSet(t *testing.T) {
	c, clock := newTestCache[string](time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("backend", "up")
	value, ok := c.Get("backend")
	require.True(t, ok)
	assert.Equal(t, "up", value)

	clock.Advance(2 * time.Minute)
	_, ok = c.Get("backend")
	assert.False(t, ok)
}

func TestCacheInvalidateAndCleanup(t *testing.T) {
	c, clock := newTestCache[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	clock.Advance(time.Hour)
	c.Cleanup()
	assert.Equal(t, 0, c.Len())
}

func TestCacheGetOrLoad(t *testing.T) {
	c, clock := newTestCache[bool](30 * time.Second)
	calls := 0
	load := func() (bool, error) {
		calls++
		return true, nil
	}

	for i := 0; i < 3; i++ {
		value, err := c.GetOrLoad("status", load)
		require.NoError(t, err)
		assert.True(t, value)
	}
	assert.Equal(t, 1, calls)

	clock.Advance(time.Minute)
	_, err := c.GetOrLoad("status", load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCacheGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c, _ := newTestCache[bool](time.Minute)
	boom := errors.New("boom")

	_, err := c.GetOrLoad("status", func() (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New[int](time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Set("key", n)
			c.Get("key")
		}(i)
	}
	wg.Wait()
	_, ok := c.Get("key")
	assert.True(t, ok)
}
