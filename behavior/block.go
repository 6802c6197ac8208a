package behavior

import (
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/persistence"
	"pkg.world.dev/blockshard/types"
)

// PlacementEvent is what a block wants written to the world when an item places it.
type PlacementEvent struct {
	Pos    types.Pos
	State  types.BlockState
	Placer ecs.EntityID
}

// Block is the behavior of one block identifier. Embed Base to get a default for every operation, so a minimal
// block only implements ID.
type Block interface {
	engine.BlockKind

	// CollisionBox returns the box entities collide with, in world space. ok is false for blocks without one.
	CollisionBox(state types.BlockState, pos types.Pos) (box types.BBox, ok bool)
	DroppedItems(state types.BlockState, held types.ItemStack) []types.ItemStack

	// Place decides the state written when item is used against face of the block next to pos. ok=false cancels
	// the placement.
	Place(wCtx engine.Context, placer ecs.EntityID, item types.ItemStack, pos types.Pos, face types.Face) (
		event PlacementEvent, ok bool)
	// CanPlaceOn reports whether this block may be put at pos given its surroundings.
	CanPlaceOn(wCtx engine.Context, pos types.Pos) bool
	// CanPlaceOver reports whether a placement may replace this block.
	CanPlaceOver(state types.BlockState) bool

	// Added is called once when the block is placed or loaded.
	Added(wCtx engine.Context, pos types.Pos, state types.BlockState) error
	OnBreak(wCtx engine.Context, pos types.Pos, state types.BlockState, breaker ecs.EntityID) error
	OnCollide(wCtx engine.Context, pos types.Pos, state types.BlockState, entity ecs.EntityID) error
	// NeighborUpdate fires when the neighbor on face changed to neighbor. face is types.Invalid for updates the
	// block requested on itself.
	NeighborUpdate(wCtx engine.Context, pos types.Pos, state types.BlockState, face types.Face,
		neighbor types.BlockState) error
	InteractedWith(wCtx engine.Context, pos types.Pos, state types.BlockState, entity ecs.EntityID,
		face types.Face) types.ActionResult

	// Tick is the random tick.
	Tick(wCtx engine.Context, pos types.Pos, state types.BlockState) error
	// UpdTick is the scheduled update requested with ScheduleUpdate. Returning ok=true reschedules it for tick next.
	UpdTick(wCtx engine.Context, pos types.Pos, state types.BlockState) (next uint64, ok bool)

	// BlockEntity attaches auxiliary per-position state and reports whether the block has any.
	BlockEntity(wCtx engine.Context, pos types.Pos, state types.BlockState) bool
	// BlockEntityLoader registers the persistence hooks of the block's auxiliary state.
	BlockEntityLoader(hooks *persistence.Hooks) error
}

// Named is implemented by blocks and items that have a display name.
type Named interface {
	Name() string
}

// Base is the default block: a solid opaque full cube that drops itself and ignores every event.
type Base struct{}

func (Base) ItemStackSize() uint8  { return 64 }
func (Base) IsSolid() bool         { return true }
func (Base) Opaque() bool          { return true }
func (Base) Opacity() uint8        { return 15 }
func (Base) LightEmittance() uint8 { return 0 }
func (Base) Hardness() float64     { return 1 }
func (Base) BurnRate() int         { return 0 }
func (Base) AbsorbsFall() bool     { return false }
func (Base) Passable() bool        { return false }

func (Base) CollisionBox(_ types.BlockState, pos types.Pos) (types.BBox, bool) {
	return types.FullCube.At(pos), true
}

func (Base) DroppedItems(state types.BlockState, _ types.ItemStack) []types.ItemStack {
	return []types.ItemStack{types.Stack(types.ItemID(state.ID), int16(state.Meta), 1)}
}

func (Base) Place(_ engine.Context, placer ecs.EntityID, item types.ItemStack, pos types.Pos, _ types.Face) (
	PlacementEvent, bool,
) {
	return PlacementEvent{Pos: pos, State: types.State(types.BlockID(item.ID), uint8(item.Meta)), Placer: placer}, true
}

func (Base) CanPlaceOn(engine.Context, types.Pos) bool { return true }
func (Base) CanPlaceOver(types.BlockState) bool        { return false }

func (Base) Added(engine.Context, types.Pos, types.BlockState) error { return nil }

func (Base) OnBreak(engine.Context, types.Pos, types.BlockState, ecs.EntityID) error { return nil }

func (Base) OnCollide(engine.Context, types.Pos, types.BlockState, ecs.EntityID) error { return nil }

func (Base) NeighborUpdate(engine.Context, types.Pos, types.BlockState, types.Face, types.BlockState) error {
	return nil
}

func (Base) InteractedWith(engine.Context, types.Pos, types.BlockState, ecs.EntityID, types.Face) types.ActionResult {
	return types.Pass
}

func (Base) Tick(engine.Context, types.Pos, types.BlockState) error { return nil }

func (Base) UpdTick(engine.Context, types.Pos, types.BlockState) (uint64, bool) { return 0, false }

func (Base) BlockEntity(engine.Context, types.Pos, types.BlockState) bool { return false }

func (Base) BlockEntityLoader(*persistence.Hooks) error { return nil }

// Transparent overrides Base for non-solid see-through blocks that entities walk through.
type Transparent struct{ Base }

func (Transparent) IsSolid() bool     { return false }
func (Transparent) Opaque() bool      { return false }
func (Transparent) Opacity() uint8    { return 0 }
func (Transparent) Passable() bool    { return true }
func (Transparent) Hardness() float64 { return 0 }

func (Transparent) CollisionBox(types.BlockState, types.Pos) (types.BBox, bool) {
	return types.BBox{}, false
}

// Inert is what unregistered block identifiers resolve to: nothing there, nothing happens.
type Inert struct {
	Transparent
	BlockID types.BlockID
}

func (b Inert) ID() types.BlockID { return b.BlockID }

func (Inert) ItemStackSize() uint8 { return 0 }

func (Inert) DroppedItems(types.BlockState, types.ItemStack) []types.ItemStack { return nil }

func (Inert) Place(engine.Context, ecs.EntityID, types.ItemStack, types.Pos, types.Face) (PlacementEvent, bool) {
	return PlacementEvent{}, false
}

func (Inert) CanPlaceOver(types.BlockState) bool { return true }
