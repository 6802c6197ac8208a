package items

import (
	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/types"
)

// BlockItem places the block with the same id. Meta selects a sub-variant, or types.AnyMeta to cover them all.
type BlockItem struct {
	behavior.ItemBase
	BlockID types.BlockID
	Meta    int16
}

func NewBlockItem(id types.BlockID) BlockItem {
	return BlockItem{BlockID: id, Meta: types.AnyMeta}
}

func (b BlockItem) Key() types.ItemKey {
	return types.Key(types.ItemID(b.BlockID), b.Meta)
}

func (b BlockItem) OnUse(wCtx engine.Context, use behavior.Use) types.ActionResult {
	if !use.OnBlock() {
		return types.Pass
	}
	target, ok := placeTarget(wCtx, use)
	if !ok {
		return types.Pass
	}
	block := behavior.BlockOf(wCtx, b.BlockID)
	event, ok := block.Place(wCtx, use.User, use.Item, target, use.Face)
	if !ok || !block.CanPlaceOn(wCtx, event.Pos) {
		return types.Pass
	}
	if err := wCtx.SetBlock(event.Pos, event.State); err != nil {
		return logFailure(wCtx, "failed to place block", err)
	}
	if err := consume(wCtx, use.User, use.Slot, 1); err != nil {
		return logFailure(wCtx, "failed to consume placed block", err)
	}
	return types.Success
}
