package blocks

import (
	"github.com/go-gl/mathgl/mgl64"

	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/scheduler"
	"pkg.world.dev/blockshard/types"
)

// gravityBlock is sand or gravel: it falls as an entity when the cell below stops supporting it.
type gravityBlock struct {
	behavior.Base
	id    types.BlockID
	label string
}

func (g gravityBlock) ID() types.BlockID { return g.id }
func (g gravityBlock) Name() string      { return g.label }
func (gravityBlock) Hardness() float64   { return 0.5 }

func (gravityBlock) Added(wCtx engine.Context, pos types.Pos, state types.BlockState) error {
	scheduleFall(wCtx, pos, state)
	return nil
}

func (gravityBlock) NeighborUpdate(wCtx engine.Context, pos types.Pos, state types.BlockState, face types.Face,
	_ types.BlockState,
) error {
	if face == types.Down || face == types.Invalid {
		scheduleFall(wCtx, pos, state)
	}
	return nil
}

func scheduleFall(wCtx engine.Context, pos types.Pos, state types.BlockState) {
	wCtx.ScheduleIn(wCtx.Tuning().FallingBlockDelay, FallingBlockCheck{Pos: pos, Expect: state})
}

// FallingBlockCheck turns the block at Pos into a falling entity if it is still Expect and nothing holds it up.
type FallingBlockCheck struct {
	Pos    types.Pos        `json:"pos"`
	Expect types.BlockState `json:"expect"`
}

func (FallingBlockCheck) Name() string { return "falling_block_check" }

func (t FallingBlockCheck) Apply(wCtx engine.Context) (uint64, bool) {
	if err := scheduler.ExpectState(wCtx, t.Pos, t.Expect); err != nil {
		return scheduler.Skip(wCtx, err)
	}
	if t.Pos.Y == 0 {
		return 0, false
	}
	if _, below := behavior.At(wCtx, t.Pos.Side(types.Down)); !below.Passable() {
		return 0, false
	}
	log := wCtx.Logger()
	if err := wCtx.SetBlock(t.Pos, types.Air); err != nil {
		log.Error().Err(err).Msgf("failed to clear falling block at %s", t.Pos)
		return 0, false
	}
	_, err := ecs.NewBuilder().Add(
		component.Position{Vec: t.Pos.Vec().Add(mgl64.Vec3{0.5, 0, 0.5})},
		component.Velocity{Vec: mgl64.Vec3{0, -1, 0}},
		component.FallingBlock{State: t.Expect},
		component.NewIdentity(FallingBlockTag),
	).Build(wCtx.Store())
	if err != nil {
		log.Error().Err(err).Msgf("failed to spawn falling block at %s", t.Pos)
	}
	return 0, false
}

// FallingSystem moves falling blocks down one cell per tick and lands them on the first cell that does not let
// them through.
func FallingSystem(wCtx engine.Context) error {
	store := wCtx.Store()
	q, err := ecs.NewQuery2[component.Position, component.FallingBlock](store)
	if err != nil {
		return err
	}
	for _, id := range q.Collect() {
		if err := fall(wCtx, id); err != nil {
			return err
		}
	}
	return nil
}

func fall(wCtx engine.Context, id ecs.EntityID) error {
	store := wCtx.Store()
	fb, err := ecs.Read[component.FallingBlock](store, id)
	if err != nil {
		return err
	}
	pos, err := ecs.Read[component.Position](store, id)
	if err != nil {
		return err
	}
	cell := pos.BlockPos()
	if below := cell.Side(types.Down); below.Y >= 0 {
		if _, b := behavior.At(wCtx, below); b.Passable() {
			return ecs.Update[component.Position](store, id, func(p *component.Position) error {
				p.Vec = p.Vec.Add(mgl64.Vec3{0, -1, 0})
				return nil
			})
		}
	}
	if err := land(wCtx, cell, fb.State); err != nil {
		return err
	}
	return store.Destroy(id)
}

func land(wCtx engine.Context, cell types.Pos, state types.BlockState) error {
	if behavior.Replaceable(wCtx, cell) {
		return wCtx.SetBlock(cell, state)
	}
	b := behavior.BlockOf(wCtx, state.ID)
	return DropItems(wCtx, cell, b.DroppedItems(state, types.ItemStack{})...)
}

func isFluid(b behavior.Block) bool {
	_, ok := b.(behavior.Fluid)
	return ok
}
