package behavior

import (
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/scheduler"
	"pkg.world.dev/blockshard/types"
)

// BlockOf resolves the behavior of id through the context's registry.
func BlockOf(wCtx engine.Context, id types.BlockID) Block {
	if b, ok := wCtx.Behaviors().BlockKind(id).(Block); ok {
		return b
	}
	return Inert{BlockID: id}
}

// At returns the state at pos and its behavior.
func At(wCtx engine.Context, pos types.Pos) (types.BlockState, Block) {
	state := wCtx.Block(pos)
	return state, BlockOf(wCtx, state.ID)
}

// FluidAt returns the fluid at pos, if the block there is one.
func FluidAt(wCtx engine.Context, pos types.Pos) (types.BlockState, Fluid, bool) {
	state, b := At(wCtx, pos)
	f, ok := b.(Fluid)
	return state, f, ok
}

func ItemOf(wCtx engine.Context, key types.ItemKey) Item {
	if it, ok := wCtx.Behaviors().ItemKind(key).(Item); ok {
		return it
	}
	return InertItem{ItemKey: key}
}

// Replaceable reports whether a placement may overwrite the block at pos.
func Replaceable(wCtx engine.Context, pos types.Pos) bool {
	state, b := At(wCtx, pos)
	return b.CanPlaceOver(state)
}

// UpdateTask runs the UpdTick of the block at Pos, provided the block is still Expect.
type UpdateTask struct {
	Pos    types.Pos
	Expect types.BlockID
}

func (UpdateTask) Name() string { return "block_update_tick" }

func (t UpdateTask) Apply(wCtx engine.Context) (uint64, bool) {
	state, err := scheduler.ExpectBlock(wCtx, t.Pos, t.Expect)
	if err != nil {
		return scheduler.Skip(wCtx, err)
	}
	return BlockOf(wCtx, state.ID).UpdTick(wCtx, t.Pos, state)
}

// ScheduleUpdate requests an UpdTick of the block currently at pos after delay ticks.
func ScheduleUpdate(wCtx engine.Context, pos types.Pos, delay uint64) {
	wCtx.ScheduleIn(delay, UpdateTask{Pos: pos, Expect: wCtx.Block(pos).ID})
}
