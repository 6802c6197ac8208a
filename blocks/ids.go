package blocks

import "pkg.world.dev/blockshard/types"

// Block ids of the core block set. These values are part of the save format.
const (
	Air          types.BlockID = 0
	Stone        types.BlockID = 1
	Grass        types.BlockID = 2
	Dirt         types.BlockID = 3
	Cobblestone  types.BlockID = 4
	Bedrock      types.BlockID = 7
	FlowingWater types.BlockID = 8
	Water        types.BlockID = 9
	FlowingLava  types.BlockID = 10
	Lava         types.BlockID = 11
	Sand         types.BlockID = 12
	Gravel       types.BlockID = 13
	Log          types.BlockID = 17
	Leaves       types.BlockID = 18
	Glass        types.BlockID = 20
	NoteBlock    types.BlockID = 25
	Wool         types.BlockID = 35
	Obsidian     types.BlockID = 49
	Torch        types.BlockID = 50
	Wheat        types.BlockID = 59
	Farmland     types.BlockID = 60
)

// Item ids that are not block items.
const (
	FlintAndSteelItem types.ItemID = 259
	AppleItem         types.ItemID = 260
	HoeItem           types.ItemID = 290
	SeedsItem         types.ItemID = 295
	WheatItem         types.ItemID = 296
	BreadItem         types.ItemID = 297
	BucketItem        types.ItemID = 325
	WaterBucketItem   types.ItemID = 326
)
