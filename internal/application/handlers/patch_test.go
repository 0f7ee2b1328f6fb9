package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/balance-core/internal/domain/entities"
	"github.com/ersonp/balance-core/internal/domain/services"
)

func TestPatchHandler_CommitAndShow(t *testing.T) {
	f := newHandlerFixture()
	ctx := t.Context()
	f.store.Put(entities.CategoryHeroes, "astral_monk", monkDoc())

	_, err := f.entities.HandleSet(ctx, entities.CategoryHeroes, "astral_monk", "abilities.primary.damage", "35")
	require.NoError(t, err)

	pending, err := f.patches.HandlePending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	patch, err := f.patches.HandleCommit(ctx, services.PatchMeta{Version: "1.1.0", Title: "Monk tuning"})
	require.NoError(t, err)

	shown, err := f.patches.HandleShow(ctx, patch.ID)
	require.NoError(t, err)
	assert.Equal(t, "Monk tuning", shown.Title)
	require.Len(t, shown.Changes, 1)

	list, err := f.patches.HandleList(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, patch.ID, list[0].ID)

	history, err := f.patches.HandleHistory(ctx, entities.CategoryHeroes, "astral_monk.json")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	pending, err = f.patches.HandlePending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPatchHandler_HandleDiscard(t *testing.T) {
	f := newHandlerFixture()
	ctx := t.Context()
	f.store.Put(entities.CategoryUnits, "footman", map[string]any{"id": "footman"})
	_, err := f.entities.HandleSet(ctx, entities.CategoryUnits, "footman", "health", "100")
	require.NoError(t, err)

	pending, err := f.patches.HandlePending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, f.patches.HandleDiscard(ctx, pending[0].ID))

	_, err = f.patches.HandleCommit(ctx, services.PatchMeta{Version: "1.0", Title: "Empty"})
	assert.ErrorIs(t, err, services.ErrNothingToCommit)
}

func TestPatchHandler_HandleRollback(t *testing.T) {
	f := newHandlerFixture()
	ctx := t.Context()
	f.store.Put(entities.CategoryHeroes, "astral_monk", monkDoc())

	_, err := f.entities.HandleSet(ctx, entities.CategoryHeroes, "astral_monk", "abilities.primary.damage", "35")
	require.NoError(t, err)
	patch, err := f.patches.HandleCommit(ctx, services.PatchMeta{Version: "1.1.0", Title: "Monk tuning"})
	require.NoError(t, err)

	result, err := f.patches.HandleRollback(ctx, patch.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"heroes/astral_monk"}, result.Reverted)

	doc, err := f.entities.HandleShow(ctx, entities.CategoryHeroes, "astral_monk", false)
	require.NoError(t, err)
	assert.Equal(t, float64(32), doc["abilities"].(map[string]any)["primary"].(map[string]any)["damage"])
}

func TestPatchHandler_HandleShow_NotFound(t *testing.T) {
	f := newHandlerFixture()

	_, err := f.patches.HandleShow(t.Context(), "missing")

	assert.ErrorIs(t, err, entities.ErrNotFound)
}
