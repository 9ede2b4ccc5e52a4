package dedupe

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const window = time.Second

func TestCache_LookupOrReserve(t *testing.T) {
	t.Run("first lookup reserves", func(t *testing.T) {
		c := New(0)
		id, hit := c.LookupOrReserve("k", "toast-1", window)
		assert.False(t, hit)
		assert.Empty(t, id)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("hit within window returns existing id", func(t *testing.T) {
		c, clock := newTestCache()
		c.LookupOrReserve("k", "toast-1", window)

		clock.advance(500 * time.Millisecond)
		id, hit := c.LookupOrReserve("k", "toast-2", window)
		require.True(t, hit)
		assert.Equal(t, "toast-1", id)
	})

	t.Run("miss after window expires", func(t *testing.T) {
		c, clock := newTestCache()
		c.LookupOrReserve("k", "toast-1", window)

		clock.advance(window + time.Millisecond)
		id, hit := c.LookupOrReserve("k", "toast-2", window)
		assert.False(t, hit)
		assert.Empty(t, id)

		// the new reservation is live
		_, hit = c.LookupOrReserve("k", "toast-3", window)
		assert.True(t, hit)
	})

	t.Run("different keys do not collide", func(t *testing.T) {
		c := New(0)
		c.LookupOrReserve("a", "toast-1", window)
		_, hit := c.LookupOrReserve("b", "toast-2", window)
		assert.False(t, hit)
	})

	t.Run("zero window disables and clears", func(t *testing.T) {
		c := New(0)
		c.LookupOrReserve("k", "toast-1", window)
		require.Equal(t, 1, c.Len())

		id, hit := c.LookupOrReserve("k", "toast-2", 0)
		assert.False(t, hit)
		assert.Empty(t, id)
		assert.Equal(t, 0, c.Len())
	})
}

func TestCache_CapacityBound(t *testing.T) {
	c := New(3)
	for i := 0; i < 5; i++ {
		c.LookupOrReserve(fmt.Sprintf("k%d", i), fmt.Sprintf("toast-%d", i), window)
	}
	assert.Equal(t, 3, c.Len())

	// oldest keys were evicted first
	_, hit := c.LookupOrReserve("k0", "new", window)
	assert.False(t, hit)
	_, hit = c.LookupOrReserve("k4", "new", window)
	assert.True(t, hit)
}

func TestCache_Refresh(t *testing.T) {
	c, clock := newTestCache()
	c.LookupOrReserve("k", "toast-1", window)

	// Refresh just before expiry keeps suppressing re-shows, matching the
	// recently-dismissed-duplicate behavior.
	clock.advance(900 * time.Millisecond)
	c.Refresh("toast-1")

	clock.advance(900 * time.Millisecond)
	id, hit := c.LookupOrReserve("k", "toast-2", window)
	require.True(t, hit)
	assert.Equal(t, "toast-1", id)
}

func TestCache_Refresh_UnknownID(t *testing.T) {
	c := New(0)
	c.LookupOrReserve("k", "toast-1", window)
	c.Refresh("nope") // no-op
	assert.Equal(t, 1, c.Len())
}

func TestCache_Clear(t *testing.T) {
	c := New(0)
	c.LookupOrReserve("a", "toast-1", window)
	c.LookupOrReserve("b", "toast-2", window)
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

// Helpers

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	c := New(0)
	c.SetClock(func() time.Time { return clock.now })
	return c, clock
}
