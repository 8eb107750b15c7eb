// Package cache provides the bounded TTL cache the service layer memoizes
// extraction and KPI results in. The core stays pure; caching by content
// hash plus filter parameters is valid only because identical inputs always
// produce identical outputs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"
)

// Entry is a cached value with its expiry bookkeeping.
type Entry struct {
	Value     any
	CachedAt  time.Time
	ExpiresAt time.Time
}

// Cache is a capacity- and TTL-bounded in-memory cache. Expired entries are
// dropped lazily on read and by a background sweep.
type Cache struct {
	entries   map[string]Entry
	mutex     sync.RWMutex
	ttl       time.Duration
	maxSize   int
	hitCount  int64
	missCount int64
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// New creates a cache with the given TTL and capacity and starts its sweep
// goroutine. Call Stop when the owner shuts down.
func New(ttl time.Duration, maxSize int) *Cache {
	c := &Cache{
		entries:  make(map[string]Entry),
		ttl:      ttl,
		maxSize:  maxSize,
		stopChan: make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Get retrieves a value from the cache.
func (c *Cache) Get(key string) (any, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists || time.Now().After(entry.ExpiresAt) {
		c.missCount++
		return nil, false
	}
	c.hitCount++
	return entry.Value, true
}

// Set stores a value, evicting the oldest entry when at capacity.
func (c *Cache) Set(key string, value any) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.maxSize <= 0 {
		return
	}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	now := time.Now()
	c.entries[key] = Entry{
		Value:     value,
		CachedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}
}

// Invalidate removes a single key.
func (c *Cache) Invalidate(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, key)
}

// InvalidatePrefix removes every key starting with prefix. Upload and flush
// paths use this to drop a client's stale results.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]Entry)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// Stats returns hit/miss counters for the metrics endpoint.
func (c *Cache) Stats() (hits, misses int64, entries int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.hitCount, c.missCount, len(c.entries)
}

// Stop terminates the background sweep.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestAt time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.CachedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.CachedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mutex.Lock()
			for key, entry := range c.entries {
				if now.After(entry.ExpiresAt) {
					delete(c.entries, key)
				}
			}
			c.mutex.Unlock()
		case <-c.stopChan:
			return
		}
	}
}

// Key builds a deterministic cache key from a content hash and the filter
// parameters. Periods and clients are sorted so that request order never
// splits the cache.
func Key(contentHash string, periods, clients []string) string {
	ps := append([]string(nil), periods...)
	cs := append([]string(nil), clients...)
	sort.Strings(ps)
	sort.Strings(cs)
	return contentHash + "|" + strings.Join(ps, ",") + "|" + strings.Join(cs, ",")
}

// HashBytes returns the hex SHA-256 of a blob, the content identity used
// for dedup and cache keys.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
