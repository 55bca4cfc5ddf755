package service

import (
	"sync"
	"time"
)

// entry pairs a cached payload with its insertion instant. time.Now
// readings carry Go's monotonic clock, so TTL math is immune to
// wall-clock adjustments.
type entry struct {
	data any
	at   time.Time
}

// ttlCache is a key→(value, instant) store where the TTL is chosen by
// the reader, not the writer. Expiry is checked lazily on Get; stale
// entries stay in the map until overwritten or cleared.
type ttlCache struct {
	mu      sync.Mutex
	entries map[string]entry
}

func newTTLCache() *ttlCache {
	return &ttlCache{entries: make(map[string]entry)}
}

// Get returns the value stored under key if it is younger than ttl.
// A stale entry behaves as absent but is not deleted.
func (c *ttlCache) Get(key string, ttl time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || time.Since(e.at) >= ttl {
		return nil, false
	}
	return e.data, true
}

// Set stores value under key with the current instant, unconditionally
// overwriting any previous entry.
func (c *ttlCache) Set(key string, value any) {
	c.setAt(key, value, time.Now())
}

// setAt stores with an explicit timestamp. Tests use it to age entries
// past their TTL without sleeping.
func (c *ttlCache) setAt(key string, value any, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{data: value, at: at}
}

// Clear drops every entry.
func (c *ttlCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}
