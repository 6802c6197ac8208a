package items

import (
	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/blocks"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/effect"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/types"
)

// Food heals the eater by Restores health points.
type Food struct {
	behavior.ItemBase
	ItemID   types.ItemID
	Label    string
	Restores float64
}

func (f Food) Key() types.ItemKey { return types.Key(f.ItemID, types.AnyMeta) }
func (f Food) Name() string       { return f.Label }

func (f Food) OnEat(wCtx engine.Context, user ecs.EntityID) error {
	err := ecs.Update[component.Health](wCtx.Store(), user, func(h *component.Health) error {
		h.Heal(f.Restores)
		return nil
	})
	if err != nil {
		return err
	}
	inv, err := ecs.Read[component.Inventory](wCtx.Store(), user)
	if err != nil {
		return nil
	}
	return consume(wCtx, user, inv.Held, 1)
}

// Bucket picks up a water source.
type Bucket struct {
	behavior.ItemBase
}

func (Bucket) Key() types.ItemKey { return types.Key(blocks.BucketItem, types.AnyMeta) }
func (Bucket) Name() string       { return "bucket" }
func (Bucket) StackSize() uint8   { return 16 }

func (Bucket) OnUse(wCtx engine.Context, use behavior.Use) types.ActionResult {
	if !use.OnBlock() {
		return types.Pass
	}
	state := wCtx.Block(use.Pos)
	if (state.ID != blocks.Water && state.ID != blocks.FlowingWater) || state.Meta != 0 {
		return types.Pass
	}
	if err := wCtx.SetBlock(use.Pos, types.Air); err != nil {
		return logFailure(wCtx, "failed to pick up water", err)
	}
	if err := replaceHeld(wCtx, use.User, use.Slot, types.Stack(blocks.WaterBucketItem, 0, 1)); err != nil {
		return logFailure(wCtx, "failed to fill bucket", err)
	}
	return types.Success
}

// WaterBucket places a water source and empties.
type WaterBucket struct {
	behavior.ItemBase
}

func (WaterBucket) Key() types.ItemKey { return types.Key(blocks.WaterBucketItem, types.AnyMeta) }
func (WaterBucket) Name() string       { return "water_bucket" }
func (WaterBucket) StackSize() uint8   { return 1 }

func (WaterBucket) OnUse(wCtx engine.Context, use behavior.Use) types.ActionResult {
	if !use.OnBlock() {
		return types.Pass
	}
	target, ok := placeTarget(wCtx, use)
	if !ok {
		return types.Pass
	}
	if err := wCtx.SetBlock(target, types.State(blocks.Water, 0)); err != nil {
		return logFailure(wCtx, "failed to pour water", err)
	}
	if err := replaceHeld(wCtx, use.User, use.Slot, types.Stack(blocks.BucketItem, 0, 1)); err != nil {
		return logFailure(wCtx, "failed to empty bucket", err)
	}
	return types.Success
}

// Hoe tills dirt and grass with nothing on top into farmland.
type Hoe struct {
	behavior.ItemBase
}

func (Hoe) Key() types.ItemKey { return types.Key(blocks.HoeItem, types.AnyMeta) }
func (Hoe) Name() string       { return "hoe" }
func (Hoe) StackSize() uint8   { return 1 }

func (Hoe) OnUse(wCtx engine.Context, use behavior.Use) types.ActionResult {
	if !use.OnBlock() || use.Face == types.Down {
		return types.Pass
	}
	id := wCtx.Block(use.Pos).ID
	if (id != blocks.Dirt && id != blocks.Grass) || !wCtx.Block(use.Pos.Side(types.Up)).IsAir() {
		return types.Pass
	}
	if err := wCtx.SetBlock(use.Pos, types.State(blocks.Farmland, 0)); err != nil {
		return logFailure(wCtx, "failed to till", err)
	}
	return types.Success
}

// Seeds plant wheat on top of farmland.
type Seeds struct {
	behavior.ItemBase
}

func (Seeds) Key() types.ItemKey { return types.Key(blocks.SeedsItem, types.AnyMeta) }
func (Seeds) Name() string       { return "seeds" }

func (Seeds) OnUse(wCtx engine.Context, use behavior.Use) types.ActionResult {
	if !use.OnBlock() || use.Face != types.Up || wCtx.Block(use.Pos).ID != blocks.Farmland {
		return types.Pass
	}
	above := use.Pos.Side(types.Up)
	if !wCtx.Block(above).IsAir() {
		return types.Pass
	}
	if err := wCtx.SetBlock(above, types.State(blocks.Wheat, 0)); err != nil {
		return logFailure(wCtx, "failed to plant", err)
	}
	if err := consume(wCtx, use.User, use.Slot, 1); err != nil {
		return logFailure(wCtx, "failed to consume seeds", err)
	}
	return types.Success
}

// FlintAndSteel sets the targeted entity on fire.
type FlintAndSteel struct {
	behavior.ItemBase
}

const burnTicks = 160

func (FlintAndSteel) Key() types.ItemKey { return types.Key(blocks.FlintAndSteelItem, types.AnyMeta) }
func (FlintAndSteel) Name() string       { return "flint_and_steel" }
func (FlintAndSteel) StackSize() uint8   { return 1 }

func (FlintAndSteel) OnUse(wCtx engine.Context, use behavior.Use) types.ActionResult {
	if !use.HasTarget || !wCtx.Store().Alive(use.Target) {
		return types.Pass
	}
	if err := effect.Add(wCtx, use.Target, effect.New(effect.BurningKind, 1, burnTicks)); err != nil {
		return logFailure(wCtx, "failed to ignite", err)
	}
	return types.Success
}
