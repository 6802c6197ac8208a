package items

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/blocks"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/terrain"
	"pkg.world.dev/blockshard/types"
)

// Core returns the core item set: block items for every placeable core block, the wool colors and the tools.
func Core() []behavior.Item {
	out := []behavior.Item{}
	for _, id := range []types.BlockID{
		blocks.Stone, blocks.Grass, blocks.Dirt, blocks.Cobblestone, blocks.Sand, blocks.Gravel,
		blocks.Log, blocks.Leaves, blocks.Glass, blocks.NoteBlock, blocks.Obsidian, blocks.Torch,
	} {
		out = append(out, NewBlockItem(id))
	}
	for color := int16(0); color < 16; color++ {
		out = append(out, BlockItem{BlockID: blocks.Wool, Meta: color})
	}
	return append(out,
		Food{ItemID: blocks.AppleItem, Label: "apple", Restores: 4},
		Food{ItemID: blocks.BreadItem, Label: "bread", Restores: 5},
		Bucket{},
		WaterBucket{},
		Hoe{},
		Seeds{},
		FlintAndSteel{},
		Material{ItemID: blocks.WheatItem, Label: "wheat"},
	)
}

// Register adds the core item set to r.
func Register(r *behavior.Registry) error {
	return r.RegisterItem(Core()...)
}

// Material is an item with no use of its own.
type Material struct {
	behavior.ItemBase
	ItemID types.ItemID
	Label  string
}

func (m Material) Key() types.ItemKey { return types.Key(m.ItemID, types.AnyMeta) }
func (m Material) Name() string       { return m.Label }

// placeTarget returns the cell a use against a block puts something into: the clicked cell itself when it can be
// replaced, otherwise the cell in front of the clicked face.
func placeTarget(wCtx engine.Context, use behavior.Use) (types.Pos, bool) {
	target := use.Pos
	if !behavior.Replaceable(wCtx, target) {
		target = use.Pos.Side(use.Face)
	}
	return target, terrain.InBounds(target) && behavior.Replaceable(wCtx, target)
}

// consume takes n items out of the user's slot. Users without an inventory, such as the console, pay nothing.
func consume(wCtx engine.Context, user ecs.EntityID, slot int, n int) error {
	return withSlot(wCtx, user, slot, func(stack *types.ItemStack) error {
		*stack = stack.Grow(-n)
		return nil
	})
}

// replaceHeld swaps the stack in the user's slot, used by items that turn into another item.
func replaceHeld(wCtx engine.Context, user ecs.EntityID, slot int, with types.ItemStack) error {
	return withSlot(wCtx, user, slot, func(stack *types.ItemStack) error {
		*stack = with
		return nil
	})
}

func withSlot(wCtx engine.Context, user ecs.EntityID, slot int, fn func(*types.ItemStack) error) error {
	inv, err := ecs.Read[component.Inventory](wCtx.Store(), user)
	if eris.Is(err, ecs.ErrComponentMissing) || eris.Is(err, ecs.ErrNoSuchEntity) {
		return nil
	}
	if err != nil {
		return err
	}
	s, err := inv.Slot(slot)
	if err != nil {
		return err
	}
	return s.With(fn)
}

func logFailure(wCtx engine.Context, what string, err error) types.ActionResult {
	wCtx.Logger().Error().Err(err).Msg(what)
	return types.Pass
}
