package services

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/balance-core/internal/domain/entities"
	"github.com/ersonp/balance-core/internal/domain/mocks"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type serviceFixture struct {
	entities *EntityService
	patches  *PatchService
	store    *mocks.EntityStore
	db       *mocks.RelationalDB
	hook     *test.Hook
}

func newServiceFixture() *serviceFixture {
	log, hook := test.NewNullLogger()
	store := mocks.NewEntityStore()
	db := mocks.NewRelationalDB()
	cache := NewEntityCache()

	patches := NewPatchService(db, store, cache, log)
	patches.timeNow = func() time.Time { return fixedNow }
	svc := NewEntityService(store, patches, cache, log)
	svc.timeNow = func() time.Time { return fixedNow }

	return &serviceFixture{entities: svc, patches: patches, store: store, db: db, hook: hook}
}

func TestEntityService_SaveWritesOnlyChangedFields(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.store.Put(entities.CategoryHeroes, "astral_monk", astralMonk())

	initial, err := f.entities.LoadForEditing(ctx, entities.CategoryHeroes, "astral_monk")
	require.NoError(t, err)
	assert.Equal(t, "Monk", initial["hero_class"])

	form := CloneEntity(initial)
	form["difficulty"] = float64(3)

	result, err := f.entities.Save(ctx, SaveRequest{
		Category: entities.CategoryHeroes,
		Filename: "astral_monk",
		Initial:  initial,
		Form:     form,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"difficulty"}, result.ChangedFields)

	stored := f.store.Doc(entities.CategoryHeroes, "astral_monk")
	assert.Equal(t, float64(3), stored["difficulty"])
	assert.Equal(t, "Monk", stored["class"])
	assert.NotContains(t, stored, "hero_class")
	assert.IsType(t, map[string]any{}, stored["abilities"])
	assert.Equal(t, "2026-03-14T09:30:00Z", stored["last_modified"])

	require.Len(t, f.db.Pending, 1)
	queued := f.db.Pending[0]
	assert.Equal(t, entities.ChangeEdit, queued.ChangeType)
	assert.Equal(t, "Astral Monk", queued.Name)
	assert.NotEmpty(t, queued.ID)
	require.Len(t, queued.Diffs, 1)
	assert.Equal(t, "difficulty", queued.Diffs[0].Path.String())
}

func TestEntityService_SaveAbilityEditInArrayForm(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	hero := astralMonk()
	hero["abilities"] = ToArrayForm(hero["abilities"])
	f.store.Put(entities.CategoryHeroes, "astral_monk", hero)

	initial, err := f.entities.LoadForEditing(ctx, entities.CategoryHeroes, "astral_monk")
	require.NoError(t, err)

	form := CloneEntity(initial)
	for _, item := range form["abilities"].([]any) {
		ability := item.(map[string]any)
		if ability["type"] == string(entities.RolePrimary) {
			ability["damage"] = float64(35)
		}
	}

	result, err := f.entities.Save(ctx, SaveRequest{
		Category: entities.CategoryHeroes,
		Filename: "astral_monk",
		Initial:  initial,
		Form:     form,
	})
	require.NoError(t, err)

	require.Len(t, result.Change.Diffs, 1)
	d := result.Change.Diffs[0]
	assert.Equal(t, entities.DiffEdit, d.Kind)
	assert.Equal(t, "abilities.primary.damage", d.Path.String())
	assert.Equal(t, float64(32), d.LHS)
	assert.Equal(t, float64(35), d.RHS)
}

func TestEntityService_SaveNothingChanged(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.store.Put(entities.CategoryUnits, "footman", map[string]any{"id": "footman", "health": 120})

	initial, err := f.entities.LoadForEditing(ctx, entities.CategoryUnits, "footman")
	require.NoError(t, err)
	form := CloneEntity(initial)
	form["_dirty"] = true

	_, err = f.entities.Save(ctx, SaveRequest{
		Category: entities.CategoryUnits,
		Filename: "footman",
		Initial:  initial,
		Form:     form,
	})

	require.ErrorIs(t, err, ErrNothingToSave)
	assert.Zero(t, f.store.Writes)
	assert.Empty(t, f.db.Pending)
}

func TestEntityService_SaveMissingEntity(t *testing.T) {
	f := newServiceFixture()

	_, err := f.entities.Save(context.Background(), SaveRequest{
		Category: entities.CategoryUnits,
		Filename: "ghost",
		Form:     map[string]any{"id": "ghost"},
	})

	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestEntityService_CacheInvalidatedOnSave(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.store.Put(entities.CategoryUnits, "footman", map[string]any{"id": "footman", "health": 120})

	first, err := f.entities.LoadRaw(ctx, entities.CategoryUnits, "footman")
	require.NoError(t, err)

	// Out-of-band writes are not seen until the entry is invalidated.
	f.store.Put(entities.CategoryUnits, "footman", map[string]any{"id": "footman", "health": 150})
	cached, err := f.entities.LoadRaw(ctx, entities.CategoryUnits, "footman")
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	_, err = f.entities.SetField(ctx, entities.CategoryUnits, "footman", "armor", 3)
	require.NoError(t, err)

	fresh, err := f.entities.LoadRaw(ctx, entities.CategoryUnits, "footman")
	require.NoError(t, err)
	assert.Equal(t, float64(150), fresh["health"])
	assert.Equal(t, float64(3), fresh["armor"])
}

func TestEntityService_List(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.store.Put(entities.CategorySpells, "fireball", map[string]any{"id": "fireball"})
	f.store.Put(entities.CategorySpells, "blizzard", map[string]any{"id": "blizzard"})
	f.store.Put(entities.CategoryUnits, "footman", map[string]any{"id": "footman"})

	names, err := f.entities.List(ctx, entities.CategorySpells)
	require.NoError(t, err)
	assert.Equal(t, []string{"blizzard", "fireball"}, names)

	_, err = f.entities.Create(ctx, entities.CategorySpells, "arcane_bolt", map[string]any{"id": "arcane_bolt"})
	require.NoError(t, err)

	names, err = f.entities.List(ctx, entities.CategorySpells)
	require.NoError(t, err)
	assert.Equal(t, []string{"arcane_bolt", "blizzard", "fireball"}, names)
}

func TestEntityService_Create(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	result, err := f.entities.Create(ctx, entities.CategoryConsumables, "potion", map[string]any{
		"id":     "potion",
		"name":   "Healing Potion",
		"heal":   50,
		"_dirty": true,
	})
	require.NoError(t, err)

	assert.Equal(t, entities.ChangeAdd, result.Change.ChangeType)
	assert.Empty(t, result.Change.Diffs)
	assert.Equal(t, []string{"heal", "id", "last_modified", "name"}, result.ChangedFields)

	stored := f.store.Doc(entities.CategoryConsumables, "potion")
	assert.NotContains(t, stored, "_dirty")
	assert.Equal(t, "Healing Potion", stored["name"])
	require.Len(t, f.db.Pending, 1)
	assert.Equal(t, "Healing Potion", f.db.Pending[0].Name)

	_, err = f.entities.Create(ctx, entities.CategoryConsumables, "potion", map[string]any{"id": "potion"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestEntityService_SetField(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.store.Put(entities.CategoryHeroes, "astral_monk", astralMonk())

	result, err := f.entities.SetField(ctx, entities.CategoryHeroes, "astral_monk", "abilities.primary.damage", 35)
	require.NoError(t, err)

	require.Len(t, result.Change.Diffs, 1)
	assert.Equal(t, "abilities.primary.damage", result.Change.Diffs[0].Path.String())
	stored := f.store.Doc(entities.CategoryHeroes, "astral_monk")
	primary := stored["abilities"].(map[string]any)["primary"].(map[string]any)
	assert.Equal(t, float64(35), primary["damage"])
}

func TestEntityService_SetFieldRejectsUnsafePath(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.store.Put(entities.CategoryUnits, "footman", map[string]any{"id": "footman"})

	_, err := f.entities.SetField(ctx, entities.CategoryUnits, "footman", "__proto__.admin", true)

	require.ErrorIs(t, err, ErrUnsafePath)
	assert.Zero(t, f.store.Writes)
	assert.Empty(t, f.db.Pending)
	require.NotNil(t, f.hook.LastEntry())
	assert.Equal(t, "rejected unsafe field path", f.hook.LastEntry().Message)
}

func TestEntityService_Delete(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.store.Put(entities.CategoryUnits, "footman", map[string]any{"id": "footman", "name": "Footman"})

	change, err := f.entities.Delete(ctx, entities.CategoryUnits, "footman")
	require.NoError(t, err)

	assert.Equal(t, entities.ChangeDelete, change.ChangeType)
	assert.Equal(t, "Footman", change.Name)
	assert.Nil(t, f.store.Doc(entities.CategoryUnits, "footman"))
	require.Len(t, f.db.Pending, 1)

	_, err = f.entities.Delete(ctx, entities.CategoryUnits, "footman")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestEntityService_Format(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.store.Files["units/footman"] = []byte(`{"z":1,"name":"Footman","id":"footman"}`)

	changed, err := f.entities.Format(ctx, entities.CategoryUnits, "footman")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "{\n  \"id\": \"footman\",\n  \"name\": \"Footman\",\n  \"z\": 1\n}\n", string(f.store.Files["units/footman"]))

	changed, err = f.entities.Format(ctx, entities.CategoryUnits, "footman")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, f.store.Writes)
	assert.Empty(t, f.db.Pending, "formatting is not a balance change")
}

func TestEntityService_FormatInvalidJSON(t *testing.T) {
	f := newServiceFixture()
	f.store.Files["units/broken"] = []byte(`{"id":`)

	_, err := f.entities.Format(context.Background(), entities.CategoryUnits, "broken")

	assert.Error(t, err)
	assert.Zero(t, f.store.Writes)
}
