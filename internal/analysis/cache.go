package analysis

import (
	"context"
	"maps"

	"github.com/vytor/lingoflash/internal/models"
)

// Cache memoizes analyses by text and language pair. Entries never expire
// and degraded results are kept like any other; Evict is the only way to
// force a recompute. Not safe for concurrent use.
type Cache struct {
	entries map[string]models.Analysis
}

// NewCache wraps loaded entries keyed by AnalysisKey.String().
func NewCache(entries map[string]models.Analysis) *Cache {
	c := &Cache{entries: make(map[string]models.Analysis, len(entries))}
	maps.Copy(c.entries, entries)
	return c
}

func (c *Cache) Get(key models.AnalysisKey) (models.Analysis, bool) {
	a, ok := c.entries[key.String()]
	return a, ok
}

func (c *Cache) Put(key models.AnalysisKey, a models.Analysis) {
	c.entries[key.String()] = a
}

// Evict drops one entry and reports whether it existed.
func (c *Cache) Evict(key models.AnalysisKey) bool {
	k := key.String()
	_, ok := c.entries[k]
	delete(c.entries, k)
	return ok
}

func (c *Cache) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the table for persisting.
func (c *Cache) Entries() map[string]models.Analysis {
	return maps.Clone(c.entries)
}

func (c *Cache) Clone() *Cache {
	return NewCache(c.entries)
}

// GetOrCompute returns the cached analysis or computes, stores and returns
// a new one. The bool reports a cache hit.
func (c *Cache) GetOrCompute(ctx context.Context, key models.AnalysisKey, a Analyzer) (models.Analysis, bool) {
	if cached, ok := c.Get(key); ok {
		return cached, true
	}
	result := Run(ctx, a, key)
	c.Put(key, result)
	return result, false
}
