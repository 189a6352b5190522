package repository

import (
	"context"
	"sync"
	"time"

	"shareit/internal/models"
)

type searchEntry struct {
	items     []*models.Item
	expiresAt time.Time
}

// MemorySearchCache держит результаты поиска в памяти процесса.
// Используется как резерв, когда Redis недоступен или выключен.
type MemorySearchCache struct {
	mu      sync.RWMutex
	entries map[string]searchEntry
	ttl     time.Duration
}

func NewMemorySearchCache(ttl time.Duration) *MemorySearchCache {
	return &MemorySearchCache{
		entries: make(map[string]searchEntry),
		ttl:     ttl,
	}
}

func (c *MemorySearchCache) GetSearch(ctx context.Context, text string) ([]*models.Item, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[text]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, text)
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.items, true, nil
}

func (c *MemorySearchCache) SetSearch(ctx context.Context, text string, items []*models.Item) error {
	c.mu.Lock()
	c.entries[text] = searchEntry{
		items:     items,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
	return nil
}

func (c *MemorySearchCache) InvalidateSearch(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]searchEntry)
	c.mu.Unlock()
	return nil
}
