package services

import (
	"sync"

	"github.com/ersonp/balance-core/internal/domain/entities"
)

// CacheMode distinguishes raw disk snapshots from editor-prepared ones.
type CacheMode string

const (
	ModeRaw    CacheMode = "raw"
	ModeEditor CacheMode = "editor"
)

var cacheModes = []CacheMode{ModeRaw, ModeEditor}

// EntityCache is a key-value store of loaded entities and category listings
// with explicit invalidation. Values are cloned on the way in and out.
type EntityCache struct {
	mu       sync.RWMutex
	entities map[string]map[string]any
	lists    map[string][]string
}

// NewEntityCache creates an empty cache.
func NewEntityCache() *EntityCache {
	return &EntityCache{
		entities: make(map[string]map[string]any),
		lists:    make(map[string][]string),
	}
}

func entityKey(category entities.Category, mode CacheMode, filename string) string {
	return string(category) + "/" + string(mode) + "/" + filename
}

func listKey(category entities.Category, mode CacheMode) string {
	return string(category) + "/" + string(mode)
}

// GetEntity returns a copy of a cached entity.
func (c *EntityCache) GetEntity(category entities.Category, mode CacheMode, filename string) (map[string]any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.entities[entityKey(category, mode, filename)]
	if !ok {
		return nil, false
	}
	return CloneEntity(doc), true
}

// PutEntity stores a copy of doc.
func (c *EntityCache) PutEntity(category entities.Category, mode CacheMode, filename string, doc map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entities[entityKey(category, mode, filename)] = CloneEntity(doc)
}

// GetList returns a copy of a cached category listing.
func (c *EntityCache) GetList(category entities.Category, mode CacheMode) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names, ok := c.lists[listKey(category, mode)]
	if !ok {
		return nil, false
	}
	return append([]string(nil), names...), true
}

// PutList stores a copy of a category listing.
func (c *EntityCache) PutList(category entities.Category, mode CacheMode, names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[listKey(category, mode)] = append([]string(nil), names...)
}

// Invalidate evicts one entity (in every mode) and its category listing.
// Other entities of the category stay cached.
func (c *EntityCache) Invalidate(category entities.Category, filename string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, mode := range cacheModes {
		delete(c.entities, entityKey(category, mode, filename))
		delete(c.lists, listKey(category, mode))
	}
}

// Len returns the number of cached entities and listings.
func (c *EntityCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entities) + len(c.lists)
}
