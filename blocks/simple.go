package blocks

import (
	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/types"
)

// Solid is a plain full cube with configurable strength and drop.
type Solid struct {
	behavior.Base
	BlockID  types.BlockID
	Label    string
	Strength float64
	// DropID replaces the dropped block id. Zero drops the block itself.
	DropID types.BlockID
	NoDrop bool
	Burn   int
}

func (s Solid) ID() types.BlockID { return s.BlockID }
func (s Solid) Name() string      { return s.Label }
func (s Solid) Hardness() float64 { return s.Strength }
func (s Solid) BurnRate() int     { return s.Burn }

func (s Solid) DroppedItems(state types.BlockState, held types.ItemStack) []types.ItemStack {
	switch {
	case s.NoDrop:
		return nil
	case s.DropID != 0:
		return []types.ItemStack{types.Stack(types.ItemID(s.DropID), 0, 1)}
	default:
		return s.Base.DroppedItems(state, held)
	}
}

type air struct {
	behavior.Inert
}

func (air) Name() string { return "air" }

type glass struct {
	behavior.Base
}

func (glass) ID() types.BlockID                                                { return Glass }
func (glass) Name() string                                                     { return "glass" }
func (glass) Opaque() bool                                                     { return false }
func (glass) Opacity() uint8                                                   { return 0 }
func (glass) Hardness() float64                                                { return 0.3 }
func (glass) DroppedItems(types.BlockState, types.ItemStack) []types.ItemStack { return nil }

// grass turns into dirt under an opaque block and spreads onto nearby lit dirt.
type grass struct {
	behavior.Base
}

func (grass) ID() types.BlockID { return Grass }
func (grass) Name() string      { return "grass" }
func (grass) Hardness() float64 { return 0.6 }

func (grass) DroppedItems(types.BlockState, types.ItemStack) []types.ItemStack {
	return []types.ItemStack{types.Stack(types.ItemID(Dirt), 0, 1)}
}

func (grass) Tick(wCtx engine.Context, pos types.Pos, _ types.BlockState) error {
	if coveredByOpaque(wCtx, pos) {
		return wCtx.SetBlock(pos, types.State(Dirt, 0))
	}
	rng := wCtx.Rand()
	target := pos.Add(types.P(rng.Intn(3)-1, rng.Intn(5)-3, rng.Intn(3)-1))
	if wCtx.Block(target).ID == Dirt && !coveredByOpaque(wCtx, target) {
		return wCtx.SetBlock(target, types.State(Grass, 0))
	}
	return nil
}

func coveredByOpaque(wCtx engine.Context, pos types.Pos) bool {
	_, above := behavior.At(wCtx, pos.Side(types.Up))
	return above.Opaque()
}

// torch hangs on the block below it and breaks when that block goes away.
type torch struct {
	behavior.Transparent
}

func (torch) ID() types.BlockID     { return Torch }
func (torch) Name() string          { return "torch" }
func (torch) LightEmittance() uint8 { return 14 }

func (torch) CanPlaceOn(wCtx engine.Context, pos types.Pos) bool {
	_, below := behavior.At(wCtx, pos.Side(types.Down))
	return below.IsSolid()
}

func (t torch) NeighborUpdate(wCtx engine.Context, pos types.Pos, _ types.BlockState, face types.Face,
	_ types.BlockState,
) error {
	if face != types.Down || t.CanPlaceOn(wCtx, pos) {
		return nil
	}
	return Break(wCtx, pos, 0, types.ItemStack{})
}

// wool is one block id with 16 colors in meta.
type wool struct {
	behavior.Base
}

func (wool) ID() types.BlockID { return Wool }
func (wool) Name() string      { return "wool" }
func (wool) Hardness() float64 { return 0.8 }
func (wool) BurnRate() int     { return 30 }

func (wool) Place(_ engine.Context, placer ecs.EntityID, item types.ItemStack, pos types.Pos, _ types.Face) (
	behavior.PlacementEvent, bool,
) {
	return behavior.PlacementEvent{Pos: pos, State: types.State(Wool, uint8(item.Meta&0xf)), Placer: placer}, true
}
