package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/balance-core/internal/domain/entities"
)

func TestEntityCache_GetPutEntity(t *testing.T) {
	cache := NewEntityCache()

	_, ok := cache.GetEntity(entities.CategoryUnits, ModeRaw, "footman")
	assert.False(t, ok)

	doc := map[string]any{"id": "footman", "stats": map[string]any{"hp": 120}}
	cache.PutEntity(entities.CategoryUnits, ModeRaw, "footman", doc)
	doc["stats"].(map[string]any)["hp"] = 1

	got, ok := cache.GetEntity(entities.CategoryUnits, ModeRaw, "footman")
	require.True(t, ok)
	assert.Equal(t, 120, got["stats"].(map[string]any)["hp"])

	got["id"] = "changed"
	again, _ := cache.GetEntity(entities.CategoryUnits, ModeRaw, "footman")
	assert.Equal(t, "footman", again["id"])

	_, ok = cache.GetEntity(entities.CategoryUnits, ModeEditor, "footman")
	assert.False(t, ok, "modes are cached separately")
}

func TestEntityCache_Lists(t *testing.T) {
	cache := NewEntityCache()
	names := []string{"archer", "footman"}

	cache.PutList(entities.CategoryUnits, ModeRaw, names)
	names[0] = "mutated"

	got, ok := cache.GetList(entities.CategoryUnits, ModeRaw)
	require.True(t, ok)
	assert.Equal(t, []string{"archer", "footman"}, got)

	_, ok = cache.GetList(entities.CategorySpells, ModeRaw)
	assert.False(t, ok)
}

func TestEntityCache_Invalidate(t *testing.T) {
	cache := NewEntityCache()
	cache.PutEntity(entities.CategoryUnits, ModeRaw, "footman", map[string]any{"id": "footman"})
	cache.PutEntity(entities.CategoryUnits, ModeEditor, "footman", map[string]any{"id": "footman"})
	cache.PutEntity(entities.CategoryUnits, ModeRaw, "archer", map[string]any{"id": "archer"})
	cache.PutEntity(entities.CategoryHeroes, ModeRaw, "footman", map[string]any{"id": "footman"})
	cache.PutList(entities.CategoryUnits, ModeRaw, []string{"archer", "footman"})
	cache.PutList(entities.CategoryHeroes, ModeRaw, []string{"footman"})
	require.Equal(t, 6, cache.Len())

	cache.Invalidate(entities.CategoryUnits, "footman")

	_, ok := cache.GetEntity(entities.CategoryUnits, ModeRaw, "footman")
	assert.False(t, ok)
	_, ok = cache.GetEntity(entities.CategoryUnits, ModeEditor, "footman")
	assert.False(t, ok)
	_, ok = cache.GetList(entities.CategoryUnits, ModeRaw)
	assert.False(t, ok)

	_, ok = cache.GetEntity(entities.CategoryUnits, ModeRaw, "archer")
	assert.True(t, ok)
	_, ok = cache.GetEntity(entities.CategoryHeroes, ModeRaw, "footman")
	assert.True(t, ok)
	_, ok = cache.GetList(entities.CategoryHeroes, ModeRaw)
	assert.True(t, ok)
	assert.Equal(t, 3, cache.Len())
}

func TestEntityCache_ConcurrentAccess(t *testing.T) {
	cache := NewEntityCache()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.PutEntity(entities.CategoryUnits, ModeRaw, "footman", map[string]any{"id": "footman"})
			cache.GetEntity(entities.CategoryUnits, ModeRaw, "footman")
			cache.Invalidate(entities.CategoryUnits, "footman")
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, cache.Len())
}
