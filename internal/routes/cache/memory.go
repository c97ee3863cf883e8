package cache

import (
	"context"
	"sync"
	"time"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
)

type memoryEntry[P any] struct {
	plan      P
	expiresAt time.Time
}

// MemoryCache keeps plans in process. Expired entries are dropped on read.
type MemoryCache[P any] struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[P]
	ttl     time.Duration
	clock   func() time.Time
}

var _ ports.RouteCache[struct{}] = (*MemoryCache[struct{}])(nil)

// NewMemory constructs an in-process cache. A zero ttl keeps entries forever.
func NewMemory[P any](ttl time.Duration, clock func() time.Time) *MemoryCache[P] {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryCache[P]{entries: make(map[string]memoryEntry[P]), ttl: ttl, clock: clock}
}

func (c *MemoryCache[P]) Get(_ context.Context, key ports.RouteCacheKey) (P, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key.String()]
	c.mu.RUnlock()

	if !ok {
		var zero P
		return zero, false, nil
	}
	if !entry.expiresAt.IsZero() && !c.clock().Before(entry.expiresAt) {
		c.mu.Lock()
		if current, still := c.entries[key.String()]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key.String())
		}
		c.mu.Unlock()
		var zero P
		return zero, false, nil
	}
	return entry.plan, true, nil
}

func (c *MemoryCache[P]) Put(_ context.Context, key ports.RouteCacheKey, plan P) error {
	entry := memoryEntry[P]{plan: plan}
	if c.ttl > 0 {
		entry.expiresAt = c.clock().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[key.String()] = entry
	c.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired or not.
func (c *MemoryCache[P]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
