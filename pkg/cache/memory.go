package cache

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/layerroute/pkg/observability"
)

// MemoryCache keeps entries in a map guarded by a mutex. Expired entries
// are dropped lazily on Get. When MaxEntries is reached the entry closest
// to expiry (or the oldest, among entries without a TTL) is evicted.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	seq        uint64
	now        func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
	seq       uint64
}

// NewMemoryCache creates an in-process cache holding at most maxEntries
// values. maxEntries <= 0 means unbounded.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get retrieves a value. The returned slice is a copy.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && c.expired(e) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		observability.Cache().OnCacheMiss(ctx, keyType(key))
		return nil, false, nil
	}
	observability.Cache().OnCacheHit(ctx, keyType(key))
	return slices.Clone(e.data), true, nil
}

// Set stores a copy of data.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	e := memoryEntry{data: slices.Clone(data), seq: c.seq}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evict()
	}
	c.entries[key] = e
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

// Delete removes a value.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close drops every entry.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

// evict removes one entry. Caller holds mu.
func (c *MemoryCache) evict() {
	var (
		victim string
		best   memoryEntry
		found  bool
	)
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
			return
		}
		if !found || evictsBefore(e, best) {
			victim, best, found = k, e, true
		}
	}
	if found {
		delete(c.entries, victim)
	}
}

func evictsBefore(a, b memoryEntry) bool {
	switch {
	case a.expiresAt.IsZero() != b.expiresAt.IsZero():
		return !a.expiresAt.IsZero()
	case !a.expiresAt.Equal(b.expiresAt):
		return a.expiresAt.Before(b.expiresAt)
	default:
		return a.seq < b.seq
	}
}

// keyType is the last prefix segment of a key, such as "outcome" for
// "api:outcome:3fa1...".
func keyType(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return key
	}
	prefix := key[:i]
	if j := strings.LastIndexByte(prefix, ':'); j >= 0 {
		return prefix[j+1:]
	}
	return prefix
}

var _ Cache = (*MemoryCache)(nil)
