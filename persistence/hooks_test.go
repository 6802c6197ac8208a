package persistence_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/persistence"
	"pkg.world.dev/blockshard/types"
)

type Pitch struct {
	Value uint8
}

func (Pitch) Name() string { return "Pitch" }

func loadPitch(c persistence.Compound, b *ecs.Builder) error {
	note, err := c.Int("note")
	if err != nil {
		return err
	}
	b.Add(Pitch{Value: uint8(note)})
	return nil
}

func savePitch(s *ecs.Store, id ecs.EntityID) (persistence.Compound, error) {
	p, err := ecs.Read[Pitch](s, id)
	if err != nil {
		return nil, err
	}
	return persistence.Compound{"note": p.Value}, nil
}

func newCatalog(t *testing.T) *component.Catalog {
	catalog := component.NewCatalog(ecs.NewStore(), nil)
	assert.NilError(t, component.RegisterCore(catalog))
	assert.NilError(t, component.Register[Pitch](catalog))
	return catalog
}

func TestDuplicateTagIsRejected(t *testing.T) {
	hooks := persistence.NewHooks()
	assert.NilError(t, hooks.Register("Music", loadPitch, savePitch))
	err := hooks.Register("Music", loadPitch, savePitch)
	assert.ErrorIs(t, err, persistence.ErrDuplicateTag)
	assert.DeepEqual(t, []string{"Music"}, hooks.Tags())
}

func TestBlockEntityRoundTrip(t *testing.T) {
	catalog := newCatalog(t)
	store := catalog.Store()
	hooks := persistence.NewHooks()
	assert.NilError(t, hooks.Register("Music", loadPitch, savePitch))

	ident := component.NewIdentity("Music")
	id, err := ecs.NewBuilder().
		Add(Pitch{Value: 7}, ident, component.BlockEntity{Pos: types.P(1, 64, -3)}).
		Build(store)
	assert.NilError(t, err)

	c, err := hooks.Save(store, id)
	assert.NilError(t, err)
	assert.Equal(t, "Music", c.Tag())

	// through the wire format, as a save store would
	bz, err := c.Encode()
	assert.NilError(t, err)
	decoded, err := persistence.DecodeCompound(bz)
	assert.NilError(t, err)

	loaded, err := hooks.Load(store, decoded)
	assert.NilError(t, err)
	p, err := ecs.Read[Pitch](store, loaded)
	assert.NilError(t, err)
	assert.Equal(t, uint8(7), p.Value)
	be, err := ecs.Read[component.BlockEntity](store, loaded)
	assert.NilError(t, err)
	assert.Equal(t, types.P(1, 64, -3), be.Pos)
	gotIdent, err := ecs.Read[component.Identity](store, loaded)
	assert.NilError(t, err)
	assert.Equal(t, ident.UUID, gotIdent.UUID)
}

func TestLoadErrors(t *testing.T) {
	store := newCatalog(t).Store()
	hooks := persistence.NewHooks()
	assert.NilError(t, hooks.Register("Music", loadPitch, savePitch))

	_, err := hooks.Load(store, persistence.Compound{"note": 1})
	assert.ErrorIs(t, err, persistence.ErrMissingTag)

	_, err = hooks.Load(store, persistence.Compound{persistence.TagKey: "Chest"})
	assert.ErrorIs(t, err, persistence.ErrUnknownTag)

	before := store.Len()
	_, err = hooks.Load(store, persistence.Compound{persistence.TagKey: "Music", "note": "loud"})
	assert.ErrorIs(t, err, persistence.ErrWrongType)
	assert.Equal(t, before, store.Len())
}

func TestSaveWithoutIdentity(t *testing.T) {
	store := newCatalog(t).Store()
	id := store.Create()
	_, err := persistence.NewHooks().Save(store, id)
	assert.ErrorIs(t, err, persistence.ErrMissingTag)
}

func TestComponentHooks(t *testing.T) {
	catalog := newCatalog(t)
	store := catalog.Store()
	hooks := persistence.NewHooks()
	assert.NilError(t, hooks.Register("Item",
		persistence.ComponentLoader(catalog),
		persistence.ComponentSaver(catalog, "Position", "ItemEntity"),
	))

	id, err := ecs.NewBuilder().Add(
		component.NewIdentity("Item"),
		component.Position{Vec: mgl64.Vec3{0.5, 70, 0.5}},
		component.ItemEntity{Stack: types.Stack(264, 0, 3)},
		component.Velocity{},
	).Build(store)
	assert.NilError(t, err)

	saved, errs := hooks.SaveAll(store)
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, 1, len(saved))

	bz, err := saved[0].Encode()
	assert.NilError(t, err)
	decoded, err := persistence.DecodeCompound(bz)
	assert.NilError(t, err)
	assert.NilError(t, store.Destroy(id))

	loaded, err := hooks.Load(store, decoded)
	assert.NilError(t, err)
	item, err := ecs.Read[component.ItemEntity](store, loaded)
	assert.NilError(t, err)
	assert.Equal(t, types.Stack(264, 0, 3), item.Stack)
	assert.Check(t, !ecs.Has[component.Velocity](store, loaded))
}

func TestCompoundNumbers(t *testing.T) {
	c, err := persistence.DecodeCompound([]byte(`{"a":3,"b":2.5,"c":{"d":true}}`))
	assert.NilError(t, err)
	a, err := c.Int("a")
	assert.NilError(t, err)
	assert.Equal(t, int64(3), a)
	_, err = c.Int("b")
	assert.Check(t, err != nil)
	b, err := c.Float("b")
	assert.NilError(t, err)
	assert.Equal(t, 2.5, b)
	nested, err := c.Compound("c")
	assert.NilError(t, err)
	d, err := nested.Bool("d")
	assert.NilError(t, err)
	assert.Check(t, d)
}
