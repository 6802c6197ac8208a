package engine

import "pkg.world.dev/blockshard/types"

// BlockKind holds the static traits of a block identifier.
type BlockKind interface {
	ID() types.BlockID
	ItemStackSize() uint8
	IsSolid() bool
	Opaque() bool
	Opacity() uint8
	LightEmittance() uint8
	Hardness() float64
	BurnRate() int
	AbsorbsFall() bool
	Passable() bool
}

// ItemKind holds the static traits of an item identifier.
type ItemKind interface {
	Key() types.ItemKey
	StackSize() uint8
}

// Behaviors resolves identifiers to behaviors. Unregistered identifiers resolve to an inert default, never nil.
type Behaviors interface {
	BlockKind(id types.BlockID) BlockKind
	ItemKind(key types.ItemKey) ItemKind
}
