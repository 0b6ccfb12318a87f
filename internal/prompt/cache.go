// Package prompt manages the modular prompt content used to assemble the
// generator prompt. Prompt modules are named strings loaded from a
// collaborator store; once loaded they are treated as immutable until the
// next explicit refresh.
package prompt

import (
	"context"
	"sync"

	"github.com/Killzin1000/quality-eco/internal/logger"
	"github.com/Killzin1000/quality-eco/internal/metrics"
	"github.com/Killzin1000/quality-eco/internal/storage"
	"golang.org/x/sync/singleflight"
)

// Cache is a process-wide, lazily-populated cache of active prompt modules.
// Concurrent loads are deduplicated via singleflight; refreshes racing to
// repopulate are last-writer-wins, which is acceptable because entries are
// immutable named strings once loaded.
type Cache struct {
	store   storage.PromptRepository
	log     *logger.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	entries map[string]string
	loaded  bool

	group singleflight.Group
}

// NewCache creates a prompt cache backed by the given store.
// The metrics recorder is optional.
func NewCache(store storage.PromptRepository, log *logger.Logger, m *metrics.Metrics) *Cache {
	return &Cache{
		store:   store,
		log:     log.WithModule("prompt"),
		metrics: m,
	}
}

// Loaded reports whether the cache holds at least one prompt module.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Ensure lazily loads the cache if it is empty.
// Returns false when the store has no active prompts or the load failed.
func (c *Cache) Ensure(ctx context.Context) bool {
	if c.Loaded() {
		return true
	}

	_, err, _ := c.group.Do("reload", func() (any, error) {
		_, err := c.Refresh(ctx)
		return nil, err
	})
	return err == nil && c.Loaded()
}

// Refresh reloads all active prompts from the store, replacing the cached
// entries wholesale. Returns the number of loaded modules.
// The store fails closed: on error the previous entries are kept but the
// cache reports the failure.
func (c *Cache) Refresh(ctx context.Context) (int, error) {
	c.log.Info("reloading prompt modules")

	entries, err := c.store.LoadActivePrompts(ctx)
	if err != nil {
		c.log.WithError(err).Error("failed to load prompt modules")
		c.recordReload("error")
		return 0, err
	}

	c.mu.Lock()
	c.entries = entries
	c.loaded = len(entries) > 0
	c.mu.Unlock()

	if len(entries) == 0 {
		c.log.Error("no active prompt modules found")
		c.recordReload("error")
		return 0, nil
	}

	c.log.WithField("count", len(entries)).Info("prompt modules loaded")
	c.recordReload("success")
	if c.metrics != nil {
		c.metrics.PromptCacheSize.Set(float64(len(entries)))
	}
	return len(entries), nil
}

// Get returns the content of one prompt module.
func (c *Cache) Get(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	content, ok := c.entries[name]
	return content, ok
}

// Snapshot returns a copy of all cached prompt modules.
func (c *Cache) Snapshot() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Len returns the number of cached prompt modules.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) recordReload(status string) {
	if c.metrics != nil {
		c.metrics.PromptReloadsTotal.WithLabelValues(status).Inc()
	}
}
