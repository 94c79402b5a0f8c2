package memory

import (
	"context"
	"sync"
	"time"

	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
)

var _ secondary.ResultCache = (*ResultCache)(nil)

type cacheEntry struct {
	result    string
	expiresAt time.Time
}

// ResultCache is an in-process TTL cache. Expired entries are dropped lazily
// on read and by Sweep.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewResultCache() *ResultCache {
	return NewResultCacheWithClock(time.Now)
}

// NewResultCacheWithClock lets tests drive expiry
func NewResultCacheWithClock(now func() time.Time) *ResultCache {
	return &ResultCache{
		entries: make(map[string]cacheEntry),
		now:     now,
	}
}

func (c *ResultCache) Get(_ context.Context, fingerprint string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[fingerprint]
	if !ok {
		return "", false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, fingerprint)
		return "", false, nil
	}
	return e.result, true, nil
}

func (c *ResultCache) Set(_ context.Context, fingerprint string, result string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = cacheEntry{result: result, expiresAt: c.now().Add(ttl)}
	return nil
}

// Sweep removes expired entries and returns how many were dropped
func (c *ResultCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len is the number of stored entries, expired or not
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
