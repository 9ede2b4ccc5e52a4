// Package dedupe implements the bounded, time-windowed duplicate-show cache.
package dedupe

import (
	"container/list"
	"time"
)

// DefaultCapacity bounds cache memory under pathological key churn.
const DefaultCapacity = 64

type entry struct {
	key  string
	id   string
	at   time.Time
	elem *list.Element
}

// Cache maps dedupe keys to the id that most recently claimed them, in
// insertion order. Entries expire after the caller-supplied window and the
// oldest entries are evicted beyond the capacity ceiling. Pruning happens on
// every access so no timer is needed.
//
// Not safe for concurrent use: the lifecycle coordinator owns the cache and
// serializes every access.
type Cache struct {
	entries  map[string]*entry
	order    *list.List // of *entry, oldest first
	capacity int
	now      func() time.Time
}

// New creates a Cache with the given capacity ceiling (DefaultCapacity when
// capacity <= 0).
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries:  make(map[string]*entry),
		order:    list.New(),
		capacity: capacity,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Used by tests.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// LookupOrReserve checks for a live entry under key. On a hit it returns the
// existing id; on a miss it records {id, now} for key and reports no match.
// A window <= 0 disables the cache entirely: it is cleared and every call
// misses.
func (c *Cache) LookupOrReserve(key, id string, window time.Duration) (string, bool) {
	if window <= 0 {
		c.Clear()
		return "", false
	}

	now := c.now()
	c.prune(now, window)

	if e, ok := c.entries[key]; ok && now.Sub(e.at) <= window {
		return e.id, true
	}

	c.put(key, id, now)
	return "", false
}

// Refresh bumps the timestamp of the key currently associated with id, so the
// dedupe window keeps suppressing re-shows briefly after a dismissal. A
// no-op when no key maps to id.
func (c *Cache) Refresh(id string) {
	for _, e := range c.entries {
		if e.id == id {
			e.at = c.now()
			c.order.MoveToBack(e.elem)
			return
		}
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.entries = make(map[string]*entry)
	c.order.Init()
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// put records or overwrites the entry for key.
func (c *Cache) put(key, id string, now time.Time) {
	if e, ok := c.entries[key]; ok {
		e.id = id
		e.at = now
		c.order.MoveToBack(e.elem)
		return
	}

	e := &entry{key: key, id: id, at: now}
	e.elem = c.order.PushBack(e)
	c.entries[key] = e

	for len(c.entries) > c.capacity {
		c.evictOldest()
	}
}

// prune drops entries older than the window, then enforces the capacity
// ceiling oldest-first.
func (c *Cache) prune(now time.Time, window time.Duration) {
	for el := c.order.Front(); el != nil; {
		e := el.Value.(*entry)
		next := el.Next()
		if now.Sub(e.at) > window {
			c.order.Remove(el)
			delete(c.entries, e.key)
		}
		el = next
	}
	for len(c.entries) > c.capacity {
		c.evictOldest()
	}
}

func (c *Cache) evictOldest() {
	el := c.order.Front()
	if el == nil {
		return
	}
	e := el.Value.(*entry)
	c.order.Remove(el)
	delete(c.entries, e.key)
}
