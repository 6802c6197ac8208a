package blocks

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/types"
)

const (
	ItemTag         = "Item"
	FallingBlockTag = "FallingBlock"
)

// DropItems spawns one item entity per non-empty stack at the centre of pos.
func DropItems(wCtx engine.Context, pos types.Pos, stacks ...types.ItemStack) error {
	for _, stack := range stacks {
		if stack.Empty() {
			continue
		}
		_, err := ecs.NewBuilder().Add(
			component.Position{Vec: pos.Center()},
			component.Velocity{Vec: mgl64.Vec3{0, 0.2, 0}},
			component.ItemEntity{Stack: stack},
			component.NewIdentity(ItemTag),
		).Build(wCtx.Store())
		if err != nil {
			return eris.Wrapf(err, "failed to drop %s at %s", stack, pos)
		}
	}
	return nil
}

// Break removes the block at pos the way a player would: OnBreak, drops, then air.
func Break(wCtx engine.Context, pos types.Pos, breaker ecs.EntityID, held types.ItemStack) error {
	state, b := behavior.At(wCtx, pos)
	if state.IsAir() {
		return nil
	}
	if err := b.OnBreak(wCtx, pos, state, breaker); err != nil {
		return err
	}
	if err := DropItems(wCtx, pos, b.DroppedItems(state, held)...); err != nil {
		return err
	}
	return wCtx.SetBlock(pos, types.Air)
}
