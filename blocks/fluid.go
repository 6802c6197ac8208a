package blocks

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/scheduler"
	"pkg.world.dev/blockshard/terrain"
	"pkg.world.dev/blockshard/types"
)

// maxFlowDistance is the largest meta a flowing fluid spreads from.
const maxFlowDistance = 7

// fluid is one form of water or lava. The flowing form spreads on its FluidCheck; the still form rests until a
// neighbor changes.
type fluid struct {
	behavior.Transparent
	id       types.BlockID
	label    string
	material behavior.Material
	flowing  bool
	rate     uint64
	light    uint8
}

var (
	_ behavior.Fluid = fluid{}

	flowingWater = fluid{id: FlowingWater, label: "flowing_water", material: behavior.Water, flowing: true, rate: 5}
	stillWater   = fluid{id: Water, label: "water", material: behavior.Water, rate: 5}
	flowingLava  = fluid{
		id: FlowingLava, label: "flowing_lava", material: behavior.Lava, flowing: true, rate: 30, light: 15,
	}
	stillLava = fluid{id: Lava, label: "lava", material: behavior.Lava, rate: 30, light: 15}
)

func (f fluid) ID() types.BlockID                { return f.id }
func (f fluid) Name() string                     { return f.label }
func (f fluid) Material() behavior.Material      { return f.material }
func (f fluid) TickRate() uint64                 { return f.rate }
func (f fluid) LightEmittance() uint8            { return f.light }
func (fluid) ItemStackSize() uint8               { return 0 }
func (fluid) Hardness() float64                  { return 100 }
func (fluid) CanPlaceOver(types.BlockState) bool { return true }
func (f fluid) IsSameMaterial(id types.BlockID) bool {
	flowing, still := fluidIDs(f.material)
	return id == flowing || id == still
}

func (fluid) DroppedItems(types.BlockState, types.ItemStack) []types.ItemStack { return nil }

func (fluid) Place(engine.Context, ecs.EntityID, types.ItemStack, types.Pos, types.Face) (
	behavior.PlacementEvent, bool,
) {
	return behavior.PlacementEvent{}, false
}

func fluidIDs(m behavior.Material) (flowing, still types.BlockID) {
	if m == behavior.Lava {
		return FlowingLava, Lava
	}
	return FlowingWater, Water
}

func (f fluid) Added(wCtx engine.Context, pos types.Pos, _ types.BlockState) error {
	wCtx.ScheduleIn(f.rate, FluidCheck{Pos: pos, Material: f.material})
	return nil
}

// NeighborUpdate wakes the fluid when the changed neighbor is somewhere it could flow to, or is water touching
// lava. A still fluid becomes its flowing form until its next check settles it again.
func (f fluid) NeighborUpdate(wCtx engine.Context, pos types.Pos, state types.BlockState, face types.Face,
	neighbor types.BlockState,
) error {
	if face != types.Invalid && !f.reacts(wCtx, pos.Side(face), face, neighbor) {
		return nil
	}
	if !f.flowing {
		flowing, _ := fluidIDs(f.material)
		if err := wCtx.SetBlockSilently(pos, types.State(flowing, state.Meta)); err != nil {
			return err
		}
	}
	wCtx.ScheduleIn(f.rate, FluidCheck{Pos: pos, Material: f.material})
	return nil
}

func (f fluid) reacts(wCtx engine.Context, at types.Pos, face types.Face, neighbor types.BlockState) bool {
	if f.material == behavior.Lava && stillWater.IsSameMaterial(neighbor.ID) {
		return true
	}
	return face != types.Up && canFlowInto(wCtx, at)
}

func canFlowInto(wCtx engine.Context, pos types.Pos) bool {
	if !terrain.InBounds(pos) {
		return false
	}
	state, b := behavior.At(wCtx, pos)
	return !isFluid(b) && b.Passable() && b.CanPlaceOver(state)
}

func touchesWater(wCtx engine.Context, pos types.Pos) bool {
	for _, face := range types.Faces {
		if stillWater.IsSameMaterial(wCtx.Block(pos.Side(face)).ID) {
			return true
		}
	}
	return false
}

// FluidCheck is one spread step of the fluid at Pos.
type FluidCheck struct {
	Pos      types.Pos         `json:"pos"`
	Material behavior.Material `json:"material"`
}

func (FluidCheck) Name() string { return "fluid_check" }

func (t FluidCheck) Apply(wCtx engine.Context) (uint64, bool) {
	state, f, ok := behavior.FluidAt(wCtx, t.Pos)
	if !ok || f.Material() != t.Material {
		return scheduler.Skip(wCtx, eris.Wrapf(scheduler.ErrStaleReference, "no %s at %s", t.Material, t.Pos))
	}
	log := wCtx.Logger()
	if t.Material == behavior.Lava && touchesWater(wCtx, t.Pos) {
		hardened := types.State(Cobblestone, 0)
		if state.Meta == 0 {
			hardened = types.State(Obsidian, 0)
		}
		if err := wCtx.SetBlock(t.Pos, hardened); err != nil {
			log.Error().Err(err).Msgf("failed to harden lava at %s", t.Pos)
		}
		return 0, false
	}

	flowing, still := fluidIDs(t.Material)
	spread := func(to types.Pos, dist uint8) {
		if err := wCtx.SetBlock(to, types.State(flowing, dist)); err != nil {
			log.Error().Err(err).Msgf("failed to spread %s to %s", t.Material, to)
		}
	}
	if down := t.Pos.Side(types.Down); canFlowInto(wCtx, down) {
		spread(down, state.Meta)
	} else if state.Meta < maxFlowDistance {
		for _, face := range types.HorizontalFaces {
			if side := t.Pos.Side(face); canFlowInto(wCtx, side) {
				spread(side, state.Meta+1)
			}
		}
	}
	if state.ID != still {
		if err := wCtx.SetBlockSilently(t.Pos, types.State(still, state.Meta)); err != nil {
			log.Error().Err(err).Msgf("failed to settle %s at %s", t.Material, t.Pos)
		}
	}
	return 0, false
}
