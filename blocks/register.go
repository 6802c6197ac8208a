package blocks

import (
	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/scheduler"
	"pkg.world.dev/blockshard/types"
)

// Core returns the core block set.
func Core() []behavior.Block {
	return []behavior.Block{
		air{behavior.Inert{BlockID: Air}},
		Solid{BlockID: Stone, Label: "stone", Strength: 1.5, DropID: Cobblestone},
		grass{},
		Solid{BlockID: Dirt, Label: "dirt", Strength: 0.5},
		Solid{BlockID: Cobblestone, Label: "cobblestone", Strength: 2},
		Solid{BlockID: Bedrock, Label: "bedrock", Strength: -1, NoDrop: true},
		flowingWater,
		stillWater,
		flowingLava,
		stillLava,
		gravityBlock{id: Sand, label: "sand"},
		gravityBlock{id: Gravel, label: "gravel"},
		Solid{BlockID: Log, Label: "log", Strength: 2, Burn: 5},
		leaves{},
		glass{},
		noteBlock{},
		wool{},
		Solid{BlockID: Obsidian, Label: "obsidian", Strength: 50},
		torch{},
		wheat{},
		farmland{},
	}
}

// Register adds the core block set to r.
func Register(r *behavior.Registry) error {
	return r.RegisterBlock(Core()...)
}

// RegisterTasks makes the deferred tasks of the core blocks persistable.
func RegisterTasks(r *scheduler.Registry) error {
	for _, register := range []func(*scheduler.Registry) error{
		scheduler.RegisterTask[FallingBlockCheck],
		scheduler.RegisterTask[FluidCheck],
		scheduler.RegisterTask[LeafDecayCheck],
		scheduler.RegisterTask[CropGrowth],
	} {
		if err := register(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterComponents registers the block entity components of the core blocks.
func RegisterComponents(c *component.Catalog) error {
	return component.Register[NoteBlockState](c)
}

// IsFluid reports whether id is any form of water or lava.
func IsFluid(id types.BlockID) bool {
	return stillWater.IsSameMaterial(id) || stillLava.IsSameMaterial(id)
}
