// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/feedrank/internal/metrics"
)

// localEntry is a node in the local tier's doubly-linked LRU list.
type localEntry struct {
	key       string
	value     []byte
	prev      *localEntry
	next      *localEntry
	expiresAt time.Time
}

// Local is the in-process cache tier. It is a thread-safe LRU with
// per-entry TTL and lazy expiration.
//
//   - O(1) Get, Set, Delete and eviction
//   - expired entries are removed on access or by CleanupExpired
//   - GetStale serves expired entries for the degradation path
//
// The doubly-linked list holds recency order and the map gives O(1)
// lookup, following the TheAlgorithms/Go LRU pattern.
type Local struct {
	mu sync.RWMutex

	// capacity is the maximum number of entries
	capacity int

	// items maps keys to linked list nodes for O(1) lookup
	items map[string]*localEntry

	// head and tail are sentinel nodes for the doubly-linked list.
	// head.next is the most recently used, tail.prev is the least.
	head *localEntry
	tail *localEntry

	// stats
	hits   int64
	misses int64
}

// NewLocal creates the local cache tier with the specified capacity.
func NewLocal(capacity int) *Local {
	if capacity <= 0 {
		capacity = 10000 // Default capacity
	}

	c := &Local{
		capacity: capacity,
		items:    make(map[string]*localEntry, capacity),
		head:     &localEntry{},
		tail:     &localEntry{},
	}

	// Initialize linked list sentinels
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get retrieves a live entry from the cache.
// Returns the value and true if found and not expired, false otherwise.
// Found entries are moved to the front (most recently used).
func (c *Local) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.items[key]; exists {
		// Expired entries are left in place rather than evicted here:
		// GetStale still serves them to the degradation path until the
		// janitor sweep reclaims them.
		if time.Now().After(entry.expiresAt) {
			c.misses++
			return nil, false
		}

		c.moveToFront(entry)
		c.hits++
		return entry.value, true
	}

	c.misses++
	return nil, false
}

// GetStale retrieves an entry regardless of expiration. The second
// return reports whether anything was found, the third whether the
// entry is past its TTL. Stale reads do not update recency or remove
// the entry, so a later janitor sweep still reclaims it.
func (c *Local) GetStale(key string) (value []byte, found, stale bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.items[key]
	if !exists {
		return nil, false, false
	}
	return entry.value, true, time.Now().After(entry.expiresAt)
}

// Contains checks if a key exists and is live without updating access order.
func (c *Local) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if entry, exists := c.items[key]; exists {
		return !time.Now().After(entry.expiresAt)
	}
	return false
}

// Set adds or updates an entry with the given TTL.
// If the cache is at capacity, the least recently used entry is evicted.
// The value is copied so callers may reuse their buffer.
func (c *Local) Set(key string, value []byte, ttl time.Duration) {
	buf := make([]byte, len(value))
	copy(buf, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(ttl)

	if entry, exists := c.items[key]; exists {
		entry.value = buf
		entry.expiresAt = expiresAt
		c.moveToFront(entry)
		return
	}

	entry := &localEntry{
		key:       key,
		value:     buf,
		expiresAt: expiresAt,
	}

	c.addToFront(entry)
	c.items[key] = entry

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Delete removes an entry from the cache.
// Returns true if the entry was found and removed.
func (c *Local) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.items[key]; exists {
		c.removeEntry(entry)
		return true
	}
	return false
}

// DeletePrefix removes every entry whose key starts with prefix.
// Returns the number of entries removed.
func (c *Local) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.removeEntry(entry)
			removed++
		}
	}
	return removed
}

// Len returns the current number of entries in the cache.
func (c *Local) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries.
func (c *Local) Capacity() int {
	return c.capacity
}

// Clear removes all entries from the cache.
func (c *Local) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*localEntry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// CleanupExpired removes all expired entries from the cache.
// Returns the number of entries removed.
func (c *Local) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0

	// Walk from tail (oldest) to head (newest)
	for entry := c.tail.prev; entry != c.head; {
		prev := entry.prev
		if now.After(entry.expiresAt) {
			c.removeEntry(entry)
			removed++
		}
		entry = prev
	}

	if removed > 0 {
		metrics.CacheEvictions.WithLabelValues("expired").Add(float64(removed))
	}
	return removed
}

// Stats returns cache hit/miss statistics and current size.
func (c *Local) Stats() (hits, misses int64, size int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses, len(c.items)
}

// Internal methods (must be called with lock held)

// addToFront adds an entry to the front of the list (most recently used).
func (c *Local) addToFront(entry *localEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

// moveToFront moves an existing entry to the front of the list.
func (c *Local) moveToFront(entry *localEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

// removeEntry removes an entry from both the list and the map.
func (c *Local) removeEntry(entry *localEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}

// evictOldest removes the least recently used entry.
func (c *Local) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return // List is empty
	}
	c.removeEntry(oldest)
	metrics.CacheEvictions.WithLabelValues("capacity").Inc()
}
