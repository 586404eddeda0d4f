package analysis

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is the dev-mode ResultCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	result    CachedResult
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, fingerprint string) (CachedResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[fingerprint]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return CachedResult{}, false
	}
	return entry.result, true
}

func (c *MemoryCache) Put(ctx context.Context, fingerprint string, result CachedResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = memoryEntry{result: result, expiresAt: c.now().Add(CacheTTL)}
}

func (c *MemoryCache) Touch(ctx context.Context, fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[fingerprint]; ok {
		entry.expiresAt = c.now().Add(CacheTTL)
		c.entries[fingerprint] = entry
	}
}

var _ ResultCache = (*MemoryCache)(nil)
