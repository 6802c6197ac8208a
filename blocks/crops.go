package blocks

import (
	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/scheduler"
	"pkg.world.dev/blockshard/types"
)

const ripe = 7

// wheat grows one stage per CropGrowth run while it stands on farmland.
type wheat struct {
	behavior.Transparent
}

func (wheat) ID() types.BlockID { return Wheat }
func (wheat) Name() string      { return "wheat" }

func (wheat) CanPlaceOn(wCtx engine.Context, pos types.Pos) bool {
	return wCtx.Block(pos.Side(types.Down)).ID == Farmland
}

func (wheat) DroppedItems(state types.BlockState, _ types.ItemStack) []types.ItemStack {
	if state.Meta >= ripe {
		return []types.ItemStack{types.Stack(WheatItem, 0, 1), types.Stack(SeedsItem, 0, 2)}
	}
	return []types.ItemStack{types.Stack(SeedsItem, 0, 1)}
}

func (wheat) Added(wCtx engine.Context, pos types.Pos, state types.BlockState) error {
	if state.Meta < ripe {
		wCtx.ScheduleIn(wCtx.Tuning().CropGrowthTicks, CropGrowth{Pos: pos})
	}
	return nil
}

func (w wheat) NeighborUpdate(wCtx engine.Context, pos types.Pos, _ types.BlockState, face types.Face,
	_ types.BlockState,
) error {
	if face != types.Down || w.CanPlaceOn(wCtx, pos) {
		return nil
	}
	return Break(wCtx, pos, 0, types.ItemStack{})
}

// CropGrowth advances the crop at Pos by one stage and reschedules itself until the crop is ripe.
type CropGrowth struct {
	Pos types.Pos `json:"pos"`
}

func (CropGrowth) Name() string { return "crop_growth" }

func (t CropGrowth) Apply(wCtx engine.Context) (uint64, bool) {
	state, err := scheduler.ExpectBlock(wCtx, t.Pos, Wheat)
	if err != nil {
		return scheduler.Skip(wCtx, err)
	}
	if state.Meta >= ripe || wCtx.Block(t.Pos.Side(types.Down)).ID != Farmland {
		return 0, false
	}
	state.Meta++
	if err := wCtx.SetBlockSilently(t.Pos, state); err != nil {
		wCtx.Logger().Error().Err(err).Msgf("failed to grow crop at %s", t.Pos)
		return 0, false
	}
	if state.Meta >= ripe {
		return 0, false
	}
	return wCtx.CurrentTick() + wCtx.Tuning().CropGrowthTicks, true
}

// farmland is tilled dirt. It turns back into dirt when something solid covers it.
type farmland struct {
	behavior.Base
}

func (farmland) ID() types.BlockID { return Farmland }
func (farmland) Name() string      { return "farmland" }
func (farmland) Opaque() bool      { return false }
func (farmland) Hardness() float64 { return 0.6 }

func (farmland) CollisionBox(_ types.BlockState, pos types.Pos) (types.BBox, bool) {
	return types.Box(0, 0, 0, 1, 0.9375, 1).At(pos), true
}

func (farmland) DroppedItems(types.BlockState, types.ItemStack) []types.ItemStack {
	return []types.ItemStack{types.Stack(types.ItemID(Dirt), 0, 1)}
}

func (farmland) NeighborUpdate(wCtx engine.Context, pos types.Pos, _ types.BlockState, face types.Face,
	_ types.BlockState,
) error {
	if face == types.Up {
		behavior.ScheduleUpdate(wCtx, pos, 1)
	}
	return nil
}

func (farmland) UpdTick(wCtx engine.Context, pos types.Pos, _ types.BlockState) (uint64, bool) {
	if _, above := behavior.At(wCtx, pos.Side(types.Up)); above.IsSolid() {
		if err := wCtx.SetBlock(pos, types.State(Dirt, 0)); err != nil {
			wCtx.Logger().Error().Err(err).Msgf("failed to revert farmland at %s", pos)
		}
	}
	return 0, false
}
