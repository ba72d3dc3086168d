package cache

import (
	"context"
	"sync"
	"time"

	"luminapos/backend/internal/domain"
)

// TemplateCache holds the last demo catalog template fetched from the
// cloud, the middle tier of the template fallback chain.
type TemplateCache interface {
	Get(ctx context.Context, key string) ([]domain.Product, bool, error)
	Set(ctx context.Context, key string, value []domain.Product, ttl time.Duration) error
}

type NoopTemplateCache struct{}

func (NoopTemplateCache) Get(_ context.Context, _ string) ([]domain.Product, bool, error) {
	return nil, false, nil
}

func (NoopTemplateCache) Set(_ context.Context, _ string, _ []domain.Product, _ time.Duration) error {
	return nil
}

// MemoryTemplateCache is the in-process fallback used when no Redis
// address is configured. TTLs are honored on read.
type MemoryTemplateCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     []domain.Product
	expiresAt time.Time
}

func NewMemoryTemplateCache() *MemoryTemplateCache {
	return &MemoryTemplateCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryTemplateCache) Get(_ context.Context, key string) ([]domain.Product, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (c *MemoryTemplateCache) Set(_ context.Context, key string, value []domain.Product, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}
