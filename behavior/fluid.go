package behavior

import "pkg.world.dev/blockshard/types"

type Material uint8

const (
	Water Material = iota + 1
	Lava
)

func (m Material) String() string {
	switch m {
	case Water:
		return "water"
	case Lava:
		return "lava"
	default:
		return "unknown"
	}
}

// Fluid is a block that spreads. Flowing and still forms of a fluid are separate identifiers sharing a Material;
// the meta value is the distance from the source, 0 for a source.
type Fluid interface {
	Block
	IsSameMaterial(id types.BlockID) bool
	Material() Material
	// TickRate is the number of ticks between spread steps.
	TickRate() uint64
}
