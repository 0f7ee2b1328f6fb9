package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/balance-core/internal/domain/entities"
)

func TestDiff_Objects(t *testing.T) {
	lhs := map[string]any{"health": 300, "armor": 5, "name": "Footman", "tags": []any{"melee"}}
	rhs := map[string]any{"health": 320, "speed": 1.1, "name": "Footman", "tags": []any{"melee"}}

	diffs, err := Diff(lhs, rhs)
	require.NoError(t, err)

	assert.Equal(t, []entities.DiffEntry{
		{Kind: entities.DiffDeleted, Path: entities.Path{entities.Key("armor")}, LHS: 5},
		{Kind: entities.DiffEdit, Path: entities.Path{entities.Key("health")}, LHS: 300, RHS: 320},
		{Kind: entities.DiffNew, Path: entities.Path{entities.Key("speed")}, RHS: 1.1},
	}, diffs)
}

func TestDiff_Equal(t *testing.T) {
	tests := []struct {
		name string
		lhs  any
		rhs  any
	}{
		{name: "identical objects", lhs: map[string]any{"a": 1}, rhs: map[string]any{"a": 1}},
		{name: "int and float with same value", lhs: map[string]any{"a": 32}, rhs: map[string]any{"a": float64(32)}},
		{name: "both nil", lhs: nil, rhs: nil},
		{name: "empty arrays", lhs: []any{}, rhs: []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diffs, err := Diff(tt.lhs, tt.rhs)
			require.NoError(t, err)
			assert.Empty(t, diffs)
			assert.NotNil(t, diffs)
		})
	}
}

func TestDiff_TypeChangeIsEdit(t *testing.T) {
	lhs := map[string]any{"mechanics": map[string]any{"aoe": true}, "damage": "10", "slow": nil}
	rhs := map[string]any{"mechanics": []any{"aoe"}, "damage": 10, "slow": 0.5}

	diffs, err := Diff(lhs, rhs)
	require.NoError(t, err)
	require.Len(t, diffs, 3)
	for _, d := range diffs {
		assert.Equal(t, entities.DiffEdit, d.Kind)
	}
}

func TestDiff_NestedArrayElements(t *testing.T) {
	lhs := map[string]any{"passive": []any{map[string]any{"name": "Calm", "regen": 2}}}
	rhs := map[string]any{"passive": []any{map[string]any{"name": "Calm", "regen": 3}}}

	diffs, err := Diff(lhs, rhs)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "passive.0.regen", diffs[0].Path.String())
	assert.Equal(t, 2, diffs[0].LHS)
	assert.Equal(t, 3, diffs[0].RHS)
}

func TestDiff_ArrayGrowth(t *testing.T) {
	diffs, err := Diff(
		map[string]any{"tags": []any{"a"}},
		map[string]any{"tags": []any{"a", "b", "c"}},
	)
	require.NoError(t, err)
	require.Len(t, diffs, 2)

	for i, d := range diffs {
		assert.Equal(t, entities.DiffArray, d.Kind)
		assert.Equal(t, "tags", d.Path.String())
		assert.Equal(t, 2-i, d.Index, "additions descend")
		require.NotNil(t, d.Item)
		assert.Equal(t, entities.DiffNew, d.Item.Kind)
	}
	assert.Equal(t, "c", diffs[0].Item.RHS)
	assert.Equal(t, "b", diffs[1].Item.RHS)
}

func TestDiff_ArrayShrink(t *testing.T) {
	diffs, err := Diff(
		map[string]any{"tags": []any{"a", "b", "c"}},
		map[string]any{"tags": []any{"a"}},
	)
	require.NoError(t, err)
	require.Len(t, diffs, 2)

	assert.Equal(t, 2, diffs[0].Index, "removals descend")
	assert.Equal(t, 1, diffs[1].Index)
	assert.Equal(t, entities.DiffDeleted, diffs[0].Item.Kind)
	assert.Equal(t, "c", diffs[0].Item.LHS)
}

func TestDiff_EntriesDoNotAliasInputs(t *testing.T) {
	lhs := map[string]any{}
	rhs := map[string]any{"stats": map[string]any{"hp": 1}}

	diffs, err := Diff(lhs, rhs)
	require.NoError(t, err)
	require.Len(t, diffs, 1)

	rhs["stats"].(map[string]any)["hp"] = 2
	assert.Equal(t, map[string]any{"hp": 1}, diffs[0].RHS)
}

func TestDiff_UnsupportedValue(t *testing.T) {
	_, err := Diff(map[string]any{"cb": func() {}}, map[string]any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = Diff(map[string]any{}, map[string]any{"ch": make(chan int)})
	require.ErrorIs(t, err, ErrUnsupportedValue)
}
