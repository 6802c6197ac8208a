package blocks_test

import (
	"testing"

	"pkg.world.dev/blockshard"
	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/blocks"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/testutils"
	"pkg.world.dev/blockshard/types"
)

func newWorld(t *testing.T, modify func(*engine.Tuning)) *testutils.TestWorld {
	tuning := engine.DefaultTuning()
	tuning.RandomTickSpeed = 0
	if modify != nil {
		modify(&tuning)
	}
	tw := testutils.NewTestWorld(t, nil, blockshard.WithTuning(tuning))
	tw.StartWorld()
	return tw
}

// fillBox fills every cell between min and max inclusive.
func fillBox(tw *testutils.TestWorld, minPos, maxPos types.Pos, state types.BlockState) {
	for x := minPos.X; x <= maxPos.X; x++ {
		for y := minPos.Y; y <= maxPos.Y; y++ {
			for z := minPos.Z; z <= maxPos.Z; z++ {
				tw.SetBlockSilently(types.P(x, y, z), state)
			}
		}
	}
}

func count[T ecs.Component](tw *testutils.TestWorld) int {
	n := 0
	tw.Do(func(wCtx engine.Context) error {
		q, err := ecs.NewQuery1[T](wCtx.Store())
		if err != nil {
			return err
		}
		n = q.Count()
		return nil
	})
	return n
}

var (
	stone = types.State(blocks.Stone, 0)
	sand  = types.State(blocks.Sand, 0)
)

func TestSandFallsAndLands(t *testing.T) {
	tw := newWorld(t, func(tuning *engine.Tuning) { tuning.FallingBlockDelay = 1 })
	tw.SetBlockSilently(types.P(0, 4, 0), stone)
	tw.SetBlock(types.P(0, 8, 0), sand)

	tw.DoTicks(2)
	assert.Equal(t, types.Air, tw.Block(types.P(0, 8, 0)))
	assert.Equal(t, 1, count[component.FallingBlock](tw))

	tw.DoTicks(5)
	assert.Equal(t, 0, count[component.FallingBlock](tw))
	assert.Equal(t, sand, tw.Block(types.P(0, 5, 0)))
}

func TestStaleFallingCheckIsNoop(t *testing.T) {
	tw := newWorld(t, func(tuning *engine.Tuning) { tuning.FallingBlockDelay = 3 })
	pos := types.P(0, 6, 0)
	tw.SetBlock(pos, sand)

	tw.DoTick()
	gravel := types.State(blocks.Gravel, 0)
	tw.SetBlockSilently(pos, gravel)

	tw.DoTicks(4)
	assert.Equal(t, gravel, tw.Block(pos))
	assert.Equal(t, 0, count[component.FallingBlock](tw))
}

// countRuns wraps task so the ticks it runs on are recorded.
func countRuns(task engine.Task, ran *[]uint64) engine.Task {
	return engine.TaskFunc{Label: task.Name(), Fn: func(wCtx engine.Context) (uint64, bool) {
		*ran = append(*ran, wCtx.CurrentTick())
		return task.Apply(wCtx)
	}}
}

func TestStaleFallingCheckRunsOnceAtDueTick(t *testing.T) {
	tw := newWorld(t, nil)
	pos := types.P(0, 6, 0)
	tw.SetBlockSilently(pos, sand)

	var ran []uint64
	now := tw.CurrentTick()
	tw.Do(func(wCtx engine.Context) error {
		wCtx.ScheduleIn(3, countRuns(blocks.FallingBlockCheck{Pos: pos, Expect: sand}, &ran))
		return nil
	})
	gravel := types.State(blocks.Gravel, 0)
	tw.SetBlockSilently(pos, gravel)

	tw.DoTicks(6)
	assert.DeepEqual(t, []uint64{now + 3}, ran)
	assert.Equal(t, gravel, tw.Block(pos))
	assert.Equal(t, 0, count[component.FallingBlock](tw))
}

func TestStaleTasksEndWithoutChanges(t *testing.T) {
	tw := newWorld(t, nil)
	pos := types.P(2, 5, 2)
	tw.SetBlockSilently(pos, stone)

	tw.Do(func(wCtx engine.Context) error {
		tasks := []engine.Task{
			blocks.CropGrowth{Pos: pos},
			blocks.LeafDecayCheck{Pos: pos},
			blocks.FluidCheck{Pos: pos, Material: behavior.Water},
			blocks.FallingBlockCheck{Pos: pos, Expect: sand},
		}
		for _, task := range tasks {
			_, ok := task.Apply(wCtx)
			assert.Check(t, !ok, task.Name())
		}
		return nil
	})
	assert.Equal(t, stone, tw.Block(pos))
}

func TestSupportedSandStays(t *testing.T) {
	tw := newWorld(t, func(tuning *engine.Tuning) { tuning.FallingBlockDelay = 1 })
	tw.SetBlockSilently(types.P(0, 5, 0), stone)
	tw.SetBlock(types.P(0, 6, 0), sand)

	tw.DoTicks(3)
	assert.Equal(t, sand, tw.Block(types.P(0, 6, 0)))
	assert.Equal(t, 0, count[component.FallingBlock](tw))
}

func TestWaterSpreadsAndSettles(t *testing.T) {
	tw := newWorld(t, nil)
	fillBox(tw, types.P(-3, 4, -3), types.P(3, 4, 3), stone)
	source := types.P(0, 5, 0)
	tw.SetBlock(source, types.State(blocks.FlowingWater, 0))

	// The check is due five ticks after placement and runs on the sixth tick.
	tw.DoTicks(5)
	assert.Equal(t, types.State(blocks.FlowingWater, 0), tw.Block(source))
	tw.DoTick()
	assert.Equal(t, types.State(blocks.Water, 0), tw.Block(source))
	for _, face := range types.HorizontalFaces {
		assert.Equal(t, types.State(blocks.FlowingWater, 1), tw.Block(source.Side(face)))
	}
	assert.Equal(t, stone, tw.Block(source.Side(types.Down)))
}

func TestStillWaterRefillsRemovedNeighbor(t *testing.T) {
	tw := newWorld(t, nil)
	fillBox(tw, types.P(-1, 0, -1), types.P(2, 2, 1), stone)
	still, gap := types.P(0, 1, 0), types.P(1, 1, 0)
	tw.SetBlockSilently(still, types.State(blocks.Water, 3))
	tw.SetBlockSilently(gap, types.State(blocks.FlowingWater, 2))

	tw.SetBlock(gap, types.Air)
	tw.DoTick()
	assert.Equal(t, types.State(blocks.FlowingWater, 3), tw.Block(still))

	tw.DoTicks(5)
	assert.Equal(t, types.State(blocks.FlowingWater, 4), tw.Block(gap))
	assert.Equal(t, types.State(blocks.Water, 3), tw.Block(still))
}

func TestLavaHardensNextToWater(t *testing.T) {
	tw := newWorld(t, nil)
	fillBox(tw, types.P(-1, 4, -1), types.P(2, 6, 1), stone)
	lava, water := types.P(0, 5, 0), types.P(1, 5, 0)
	tw.SetBlockSilently(lava, types.State(blocks.Lava, 0))
	tw.SetBlockSilently(water, types.Air)

	tw.SetBlock(water, types.State(blocks.FlowingWater, 0))
	tw.DoTicks(31)
	assert.Equal(t, types.State(blocks.Obsidian, 0), tw.Block(lava))
	assert.Equal(t, types.State(blocks.Water, 0), tw.Block(water))
}

func TestLeavesDecayWithoutLog(t *testing.T) {
	tw := newWorld(t, func(tuning *engine.Tuning) { tuning.LeafDecayTicks = 2 })
	natural := types.P(0, 6, 0)
	tw.SetBlockSilently(natural, types.State(blocks.Leaves, 0))
	tw.SetBlockSilently(natural.Side(types.Down), types.State(blocks.Log, 0))

	placed := types.P(3, 6, 0)
	tw.SetBlockSilently(placed, types.State(blocks.Leaves, 0x4))

	connected := types.P(6, 6, 0)
	tw.SetBlockSilently(connected, types.State(blocks.Leaves, 1))
	tw.SetBlockSilently(connected.Side(types.East), types.State(blocks.Log, 0))

	tw.SetBlock(natural.Side(types.Down), types.Air)
	tw.SetBlock(placed.Side(types.Down), stone)
	tw.SetBlock(connected.Side(types.Down), stone)
	tw.DoTicks(3)

	assert.Equal(t, types.Air, tw.Block(natural))
	assert.Equal(t, types.State(blocks.Leaves, 0x4), tw.Block(placed))
	assert.Equal(t, types.State(blocks.Leaves, 1), tw.Block(connected))
}

func TestFarmlandRevertsUnderSolidBlock(t *testing.T) {
	tw := newWorld(t, nil)
	soil := types.P(2, 4, 2)
	tw.SetBlockSilently(soil, types.State(blocks.Farmland, 0))

	tw.SetBlock(soil.Side(types.Up), stone)
	tw.DoTicks(2)
	assert.Equal(t, types.State(blocks.Dirt, 0), tw.Block(soil))
}

func TestWheatBreaksWithoutFarmland(t *testing.T) {
	tw := newWorld(t, nil)
	crop := types.P(2, 5, 2)
	tw.SetBlockSilently(crop.Side(types.Down), types.State(blocks.Farmland, 0))
	tw.SetBlockSilently(crop, types.State(blocks.Wheat, 3))

	tw.SetBlock(crop.Side(types.Down), types.State(blocks.Dirt, 0))
	tw.DoTick()
	assert.Equal(t, types.Air, tw.Block(crop))
	assert.Equal(t, 1, count[component.ItemEntity](tw))
}

func TestRipeWheatDrops(t *testing.T) {
	tw := newWorld(t, nil)
	tw.Do(func(wCtx engine.Context) error {
		b := behavior.BlockOf(wCtx, blocks.Wheat)
		assert.DeepEqual(t, []types.ItemStack{types.Stack(blocks.SeedsItem, 0, 1)},
			b.DroppedItems(types.State(blocks.Wheat, 2), types.ItemStack{}))
		assert.DeepEqual(t, []types.ItemStack{types.Stack(blocks.WheatItem, 0, 1), types.Stack(blocks.SeedsItem, 0, 2)},
			b.DroppedItems(types.State(blocks.Wheat, 7), types.ItemStack{}))
		return nil
	})
}

func TestNoteBlockPitchWraps(t *testing.T) {
	tw := newWorld(t, nil)
	pos := types.P(1, 5, 1)
	tw.SetBlock(pos, types.State(blocks.NoteBlock, 0))

	tw.Do(func(wCtx engine.Context) error {
		state, b := behavior.At(wCtx, pos)
		for i := 0; i < 25; i++ {
			assert.Equal(t, types.Success, b.InteractedWith(wCtx, pos, state, 0, types.Up))
		}
		id, ok := wCtx.BlockEntity(pos)
		assert.Assert(t, ok)
		note, err := ecs.Read[blocks.NoteBlockState](wCtx.Store(), id)
		assert.NilError(t, err)
		assert.Equal(t, uint8(0), note.Pitch)
		return nil
	})
}

func TestBreakDropsAndClears(t *testing.T) {
	tw := newWorld(t, nil)
	pos := types.P(1, 5, 1)
	tw.SetBlockSilently(pos, types.State(blocks.Bedrock, 0))
	tw.SetBlockSilently(pos.Side(types.Up), types.State(blocks.Dirt, 0))

	tw.Do(func(wCtx engine.Context) error {
		if err := blocks.Break(wCtx, pos, 0, types.ItemStack{}); err != nil {
			return err
		}
		return blocks.Break(wCtx, pos.Side(types.Up), 0, types.ItemStack{})
	})
	assert.Equal(t, types.Air, tw.Block(pos))
	assert.Equal(t, types.Air, tw.Block(pos.Side(types.Up)))
	assert.Equal(t, 1, count[component.ItemEntity](tw))
}
