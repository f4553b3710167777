// Package coalesce folds bursts of triggers into one delayed delivery per key.
//
// The first Offer for a key wins: later offers for the same key are dropped
// and do not move the deadline, so a delivery always happens within one
// window of the first trigger.
package coalesce

import (
	"fmt"
	"sync"
	"time"
)

// DefaultWindow is the coalescing window used when none is configured.
const DefaultWindow = time.Second

// Options configures a Cache.
type Options[P any] struct {
	Window time.Duration
	// OnExpire receives the original payload once the window elapses.
	OnExpire func(key string, payload P)
	// OnPanic is called if OnExpire panics. The panic does not escape.
	OnPanic func(key string, err error)
}

type entry[P any] struct {
	payload P
	created time.Time
	expires time.Time
	timer   *time.Timer
}

// Cache is an expiring key to payload store with single delivery per window.
type Cache[P any] struct {
	window   time.Duration
	onExpire func(string, P)
	onPanic  func(string, error)

	mu      sync.Mutex
	entries map[string]*entry[P]
	gates   map[string]*sync.Mutex
	closed  bool
}

// New creates a cache. A nil OnExpire makes the cache a pure deduplicator.
func New[P any](opts Options[P]) *Cache[P] {
	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}
	return &Cache[P]{
		window:   window,
		onExpire: opts.OnExpire,
		onPanic:  opts.OnPanic,
		entries:  make(map[string]*entry[P]),
		gates:    make(map[string]*sync.Mutex),
	}
}

// Offer stores payload under key unless the key is already pending.
// It reports whether a new entry was created.
func (c *Cache[P]) Offer(key string, payload P) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	if _, ok := c.entries[key]; ok {
		return false
	}

	now := time.Now()
	e := &entry[P]{
		payload: payload,
		created: now,
		expires: now.Add(c.window),
	}
	e.timer = time.AfterFunc(c.window, func() {
		c.expire(key, e)
	})
	c.entries[key] = e
	return true
}

// Pending reports whether key has an undelivered entry and its deadline.
func (c *Cache[P]) Pending(key string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return time.Time{}, false
	}
	return e.expires, true
}

// Len returns the number of pending entries.
func (c *Cache[P]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Remove drops a pending entry without delivering it.
func (c *Cache[P]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(c.entries, key)
	return true
}

// Close drops every pending entry without delivering and rejects new offers.
func (c *Cache[P]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for key, e := range c.entries {
		e.timer.Stop()
		delete(c.entries, key)
	}
}

func (c *Cache[P]) expire(key string, e *entry[P]) {
	c.mu.Lock()
	if c.closed || c.entries[key] != e {
		c.mu.Unlock()
		return
	}
	delete(c.entries, key)
	gate := c.gates[key]
	if gate == nil {
		gate = &sync.Mutex{}
		c.gates[key] = gate
	}
	c.mu.Unlock()

	if c.onExpire == nil {
		return
	}

	gate.Lock()
	defer gate.Unlock()
	defer func() {
		if r := recover(); r != nil && c.onPanic != nil {
			c.onPanic(key, fmt.Errorf("coalesce: delivery for %q panicked: %v", key, r))
		}
	}()
	c.onExpire(key, e.payload)
}
