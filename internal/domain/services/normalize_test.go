package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func astralMonk() map[string]any {
	return map[string]any{
		"id":         "astral_monk",
		"name":       "Astral Monk",
		"class":      "Monk",
		"health":     300,
		"difficulty": 2,
		"abilities":  monkAbilities(),
	}
}

func TestNormalize_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{name: "nil", input: nil},
		{name: "string", input: "x"},
		{name: "number", input: 3.5},
		{name: "bool", input: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.input, Normalize(tt.input))
		})
	}
}

func TestNormalize_ArrayAbilitiesBecomeObject(t *testing.T) {
	hero := astralMonk()
	hero["abilities"] = ToArrayForm(hero["abilities"])

	result := NormalizeEntity(hero)

	abilities, ok := result["abilities"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, monkAbilities(), abilities)
}

func TestNormalize_ObjectAbilitiesGetEverySlot(t *testing.T) {
	hero := map[string]any{
		"id": "spark_mage",
		"abilities": map[string]any{
			"primary":   map[string]any{"name": "Bolt", "mana_cost": 0},
			"secondary": map[string]any{"name": "Spark"},
			"talents":   []any{"haste"},
		},
	}

	result := NormalizeEntity(hero)

	assert.Equal(t, map[string]any{
		"passive":  []any{},
		"primary":  map[string]any{"name": "Bolt"},
		"defense":  map[string]any{},
		"ultimate": map[string]any{},
		"other":    []any{map[string]any{"name": "Spark", "type": "Secondary"}},
		"talents":  []any{"haste"},
	}, result["abilities"])
}

func TestNormalize_NestedObjectsAndArrays(t *testing.T) {
	input := map[string]any{
		"variants": []any{
			map[string]any{"name": "Elite", "abilities": []any{map[string]any{"name": "Slam", "type": "Primary"}}},
			"plain",
		},
	}

	result := Normalize(input).(map[string]any)
	variants := result["variants"].([]any)
	require.Len(t, variants, 2)
	elite := variants[0].(map[string]any)
	assert.Equal(t, map[string]any{"name": "Slam"}, elite["abilities"].(map[string]any)["primary"])
	assert.Equal(t, "plain", variants[1])
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := map[string]map[string]any{
		"object form": astralMonk(),
		"array form": func() map[string]any {
			h := astralMonk()
			h["abilities"] = ToArrayForm(h["abilities"])
			return h
		}(),
		"no abilities": {"id": "footman", "health": 120},
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			once := Normalize(input)
			assert.Equal(t, once, Normalize(once))
		})
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	hero := astralMonk()
	hero["abilities"] = ToArrayForm(hero["abilities"])
	before := CloneEntity(hero)

	result := NormalizeEntity(hero)
	result["name"] = "Changed"

	assert.Equal(t, before, hero)
}

func TestStripInternal(t *testing.T) {
	doc := map[string]any{
		"id":            "footman",
		"_filename":     "footman.json",
		"_dirty":        true,
		"last_modified": "2026-01-01T00:00:00Z",
		"stats":         map[string]any{"_note": "nested keys are data"},
	}

	result := StripInternal(doc)

	assert.Equal(t, map[string]any{
		"id":    "footman",
		"stats": map[string]any{"_note": "nested keys are data"},
	}, result)
	assert.Contains(t, doc, "_filename", "input is not modified")
	assert.Nil(t, StripInternal(nil))
}

func TestPrepareForEditing(t *testing.T) {
	raw := astralMonk()

	prepared := PrepareForEditing("heroes", raw)

	assert.Equal(t, "Monk", prepared["hero_class"])
	assert.NotContains(t, prepared, "class")
	assert.IsType(t, []any{}, prepared["abilities"])
	assert.Contains(t, raw, "class", "raw snapshot keeps its legacy field")
	assert.IsType(t, map[string]any{}, raw["abilities"])
}

func TestPrepareForEditing_ExistingHeroClassWins(t *testing.T) {
	raw := map[string]any{"class": "Old", "hero_class": "New"}

	prepared := PrepareForEditing("heroes", raw)

	assert.Equal(t, "New", prepared["hero_class"])
	assert.Equal(t, "Old", prepared["class"])
	assert.Equal(t, []any{}, prepared["abilities"])
}

func TestPrepareForEditing_NonHeroes(t *testing.T) {
	raw := map[string]any{"id": "fireball", "class": "Evocation"}

	prepared := PrepareForEditing("spells", raw)

	assert.Equal(t, raw, prepared)
}
