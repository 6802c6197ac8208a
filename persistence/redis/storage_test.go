package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/persistence"
	"pkg.world.dev/blockshard/persistence/redis"
	"pkg.world.dev/blockshard/scheduler"
	"pkg.world.dev/blockshard/terrain"
	"pkg.world.dev/blockshard/types"
)

func newStorage(t *testing.T) *redis.Storage {
	s := miniredis.RunT(t)
	storage, err := redis.NewRedisStorage(redis.Options{Addr: s.Addr()}, "test")
	assert.NilError(t, err)
	t.Cleanup(func() { assert.NilError(t, storage.Close()) })
	return storage
}

func TestEntitiesRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)

	saved := []persistence.Compound{
		{persistence.TagKey: "Music", "uuid": "a", "note": 3},
		{persistence.TagKey: "Item", "uuid": "b"},
	}
	assert.NilError(t, storage.SaveEntities(ctx, saved))
	assert.NilError(t, storage.SaveEntities(ctx, saved[:1]))

	loaded, err := storage.LoadEntities(ctx)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(loaded))
	assert.Equal(t, "Music", loaded[0].Tag())
	note, err := loaded[0].Int("note")
	assert.NilError(t, err)
	assert.Equal(t, int64(3), note)

	err = storage.SaveEntities(ctx, []persistence.Compound{{persistence.TagKey: "Music"}})
	assert.Check(t, err != nil)
}

func TestChunkRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)
	cp := terrain.ChunkPos{X: -2, Z: 5}

	_, ok, err := storage.LoadChunk(ctx, cp)
	assert.NilError(t, err)
	assert.Check(t, !ok)

	c := &terrain.Chunk{}
	c.Fill(0, 60, types.State(1, 0))
	c.Set(3, 60, 3, types.State(8, 4))
	assert.NilError(t, storage.SaveChunk(ctx, cp, c))

	back, ok, err := storage.LoadChunk(ctx, cp)
	assert.NilError(t, err)
	assert.Check(t, ok)
	assert.Equal(t, types.State(8, 4), back.At(3, 60, 3))
	assert.Equal(t, types.State(1, 0), back.At(0, 0, 0))

	chunks, err := storage.SavedChunks(ctx)
	assert.NilError(t, err)
	assert.DeepEqual(t, []terrain.ChunkPos{cp}, chunks)
}

func TestTasksRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)

	tick, records, err := storage.LoadTasks(ctx)
	assert.NilError(t, err)
	assert.Equal(t, uint64(0), tick)
	assert.Equal(t, 0, len(records))

	saved := []scheduler.Record{{Due: 40, Name: "crop_growth", Payload: []byte(`{"Pos":{"x":1,"y":2,"z":3}}`)}}
	assert.NilError(t, storage.SaveTasks(ctx, 37, saved))
	tick, records, err = storage.LoadTasks(ctx)
	assert.NilError(t, err)
	assert.Equal(t, uint64(37), tick)
	assert.Equal(t, 1, len(records))
	assert.Equal(t, "crop_growth", records[0].Name)
	assert.JSONEq(t, `{"Pos":{"x":1,"y":2,"z":3}}`, string(records[0].Payload))
}

type Mana struct {
	Value int
}

func (Mana) Name() string { return "Mana" }

type ManaV2 struct {
	Current int
}

func (ManaV2) Name() string { return "Mana" }

func TestSchemaStorageRejectsDrift(t *testing.T) {
	storage := newStorage(t)
	_, err := storage.GetSchema("Mana")
	assert.ErrorIs(t, err, component.ErrNoSchemaFound)

	assert.NilError(t, component.Register[Mana](component.NewCatalog(ecs.NewStore(), storage)))
	schema, err := storage.GetSchema("Mana")
	assert.NilError(t, err)
	assert.Check(t, len(schema) > 0)

	err = component.Register[ManaV2](component.NewCatalog(ecs.NewStore(), storage))
	assert.ErrorIs(t, err, component.ErrSchemaMismatch)
}
