package behavior

import (
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/types"
)

// Use describes one use of an item.
type Use struct {
	User ecs.EntityID
	// Slot is the inventory slot the item is used from.
	Slot int
	Item types.ItemStack
	// Pos and Face are the clicked block and face. Face is types.Invalid when the use is not aimed at a block.
	Pos  types.Pos
	Face types.Face
	// Target is the entity the item is used on, if HasTarget.
	Target    ecs.EntityID
	HasTarget bool
}

// OnBlock reports whether the use is aimed at a block.
func (u Use) OnBlock() bool {
	return u.Face.Valid()
}

// Item is the behavior of one item key. Embed ItemBase for the defaults.
type Item interface {
	engine.ItemKind

	OnUse(wCtx engine.Context, use Use) types.ActionResult
	OnDigWith(wCtx engine.Context, user ecs.EntityID, pos types.Pos, state types.BlockState) error
	OnEat(wCtx engine.Context, user ecs.EntityID) error
	OnStopUsing(wCtx engine.Context, user ecs.EntityID) error
}

// ItemBase implements every Item operation except Key as a no-op.
type ItemBase struct{}

func (ItemBase) StackSize() uint8 { return 64 }

func (ItemBase) OnUse(engine.Context, Use) types.ActionResult { return types.Pass }

func (ItemBase) OnDigWith(engine.Context, ecs.EntityID, types.Pos, types.BlockState) error {
	return nil
}

func (ItemBase) OnEat(engine.Context, ecs.EntityID) error { return nil }

func (ItemBase) OnStopUsing(engine.Context, ecs.EntityID) error { return nil }

// InertItem is what unregistered item keys resolve to.
type InertItem struct {
	ItemBase
	ItemKey types.ItemKey
}

func (i InertItem) Key() types.ItemKey { return i.ItemKey }
