package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/istochnik/delivery-backend/pkg/logger"
)

// DefaultTTL applies when Set is called with a non-positive TTL.
const DefaultTTL = 30 * time.Second

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a process-wide TTL map used to short-circuit repeated reads on
// hot list endpoints. Misses fall through to the underlying fetch; there is
// no stampede protection, so concurrent misses for the same key each hit
// the data layer.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// Option configures optional cache behavior.
type Option func(*Cache)

// WithDefaultTTL overrides the default entry lifetime.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Tests use this to expire entries
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New builds an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Set stores value under key with expiry now+ttl. A non-positive ttl uses
// the cache default.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
}

// Get returns the stored value, lazily deleting the entry when it has expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Cleanup sweeps every expired entry and returns how many were removed.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// InvalidateSubstring deletes every key containing substr and returns how
// many were removed. Linear scan; the working set is a handful of endpoint
// keys so this stays cheap.
func (c *Cache) InvalidateSubstring(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if strings.Contains(key, substr) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the current entry count, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RunSweeper sweeps expired entries on the given interval until ctx is
// canceled. Callers run it in its own goroutine.
func (c *Cache) RunSweeper(ctx context.Context, interval time.Duration, logg *logger.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := c.Cleanup()
			if logg != nil && removed > 0 {
				swept := logg.WithField(ctx, "removed", removed)
				logg.Info(swept, "cache sweep complete")
			}
		}
	}
}
