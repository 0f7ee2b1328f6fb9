package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneEntity_SharesNoContainers(t *testing.T) {
	doc := map[string]any{
		"id":   "footman",
		"tags": []any{"melee", map[string]any{"tier": 1}},
		"stats": map[string]any{
			"health": 120,
			"resist": []any{0.1, 0.2},
		},
	}

	clone := CloneEntity(doc)
	require.Equal(t, doc, clone)

	clone["stats"].(map[string]any)["health"] = 140
	clone["stats"].(map[string]any)["resist"].([]any)[0] = 0.5
	clone["tags"].([]any)[1].(map[string]any)["tier"] = 2

	assert.Equal(t, 120, doc["stats"].(map[string]any)["health"])
	assert.Equal(t, 0.1, doc["stats"].(map[string]any)["resist"].([]any)[0])
	assert.Equal(t, 1, doc["tags"].([]any)[1].(map[string]any)["tier"])
}

func TestCloneEntity_Nil(t *testing.T) {
	assert.Nil(t, CloneEntity(nil))
}

func TestCloneValue(t *testing.T) {
	list := []any{"a", map[string]any{"b": 1}}
	clone := cloneValue(list).([]any)
	clone[1].(map[string]any)["b"] = 2
	assert.Equal(t, 1, list[1].(map[string]any)["b"])

	assert.Equal(t, "scalar", cloneValue("scalar"))
	assert.Equal(t, json.Number("3"), cloneValue(json.Number("3")))
	assert.Nil(t, cloneValue(nil))
}
