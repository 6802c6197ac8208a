package items_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"pkg.world.dev/blockshard"
	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/blocks"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/effect"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/intent"
	"pkg.world.dev/blockshard/testutils"
	"pkg.world.dev/blockshard/types"
)

func newWorld(t *testing.T) *testutils.TestWorld {
	tuning := engine.DefaultTuning()
	tuning.RandomTickSpeed = 0
	tw := testutils.NewTestWorld(t, nil, blockshard.WithTuning(tuning))
	tw.StartWorld()
	return tw
}

// holding spawns a player with stack in the held slot.
func holding(t *testing.T, tw *testutils.TestWorld, name string, stack types.ItemStack) ecs.EntityID {
	player, err := tw.SpawnPlayer(name, mgl64.Vec3{0.5, 10, 0.5})
	assert.NilError(t, err)
	tw.Do(func(wCtx engine.Context) error {
		inv, err := ecs.Read[component.Inventory](wCtx.Store(), player)
		if err != nil {
			return err
		}
		slot, err := inv.HeldSlot()
		if err != nil {
			return err
		}
		return slot.With(func(s *types.ItemStack) error {
			*s = stack
			return nil
		})
	})
	return player
}

func heldStack(tw *testutils.TestWorld, player ecs.EntityID) types.ItemStack {
	var stack types.ItemStack
	tw.Do(func(wCtx engine.Context) error {
		inv, err := ecs.Read[component.Inventory](wCtx.Store(), player)
		if err != nil {
			return err
		}
		slot, err := inv.HeldSlot()
		if err != nil {
			return err
		}
		stack = slot.Stack()
		return nil
	})
	return stack
}

func place(tw *testutils.TestWorld, player ecs.EntityID, pos types.Pos, face types.Face) {
	tw.SubmitIntent(intent.Place{Entity: player, Pos: pos, Face: face})
	tw.DoTick()
}

func TestBucketRoundTrip(t *testing.T) {
	tw := newWorld(t)
	player := holding(t, tw, "alice", types.Stack(blocks.BucketItem, 0, 1))
	source := types.P(0, 5, 0)
	tw.SetBlockSilently(source, types.State(blocks.Water, 0))

	place(tw, player, source, types.Up)
	assert.Equal(t, types.Air, tw.Block(source))
	assert.Equal(t, types.Stack(blocks.WaterBucketItem, 0, 1), heldStack(tw, player))

	ground := types.P(2, 4, 0)
	tw.SetBlockSilently(ground, types.State(blocks.Stone, 0))
	place(tw, player, ground, types.Up)
	assert.Equal(t, types.State(blocks.Water, 0), tw.Block(ground.Side(types.Up)))
	assert.Equal(t, types.Stack(blocks.BucketItem, 0, 1), heldStack(tw, player))
}

func TestBucketIgnoresFlowingWater(t *testing.T) {
	tw := newWorld(t)
	player := holding(t, tw, "alice", types.Stack(blocks.BucketItem, 0, 1))
	pos := types.P(0, 5, 0)
	tw.SetBlockSilently(pos, types.State(blocks.FlowingWater, 3))

	place(tw, player, pos, types.Up)
	assert.Equal(t, types.State(blocks.FlowingWater, 3), tw.Block(pos))
	assert.Equal(t, types.Stack(blocks.BucketItem, 0, 1), heldStack(tw, player))
}

func TestHoeAndSeeds(t *testing.T) {
	tw := newWorld(t)
	farmer := holding(t, tw, "alice", types.Stack(blocks.HoeItem, 0, 1))
	planter := holding(t, tw, "bob", types.Stack(blocks.SeedsItem, 0, 3))
	soil := types.P(4, 4, 4)
	tw.SetBlockSilently(soil, types.State(blocks.Dirt, 0))
	covered := types.P(6, 4, 4)
	tw.SetBlockSilently(covered, types.State(blocks.Dirt, 0))
	tw.SetBlockSilently(covered.Side(types.Up), types.State(blocks.Stone, 0))

	place(tw, farmer, soil, types.Up)
	assert.Equal(t, types.State(blocks.Farmland, 0), tw.Block(soil))
	place(tw, farmer, covered, types.Up)
	assert.Equal(t, types.State(blocks.Dirt, 0), tw.Block(covered))

	place(tw, planter, soil, types.Up)
	assert.Equal(t, types.State(blocks.Wheat, 0), tw.Block(soil.Side(types.Up)))
	assert.Equal(t, uint8(2), heldStack(tw, planter).Count)
}

func TestBlockItemPlacement(t *testing.T) {
	tw := newWorld(t)
	player := holding(t, tw, "alice", types.Stack(types.ItemID(blocks.Wool), 14, 1))
	ground := types.P(0, 4, 0)
	tw.SetBlockSilently(ground, types.State(blocks.Stone, 0))

	place(tw, player, ground, types.East)
	assert.Equal(t, types.State(blocks.Wool, 14), tw.Block(ground.Side(types.East)))
	assert.Check(t, heldStack(tw, player).Empty())

	// Nothing left to place.
	place(tw, player, ground, types.Up)
	assert.Equal(t, types.Air, tw.Block(ground.Side(types.Up)))
}

func TestPlacedLeavesArePlayerPlaced(t *testing.T) {
	tw := newWorld(t)
	player := holding(t, tw, "alice", types.Stack(types.ItemID(blocks.Leaves), 1, 4))
	ground := types.P(0, 4, 0)
	tw.SetBlockSilently(ground, types.State(blocks.Stone, 0))

	place(tw, player, ground, types.Up)
	assert.Equal(t, types.State(blocks.Leaves, 0x4|1), tw.Block(ground.Side(types.Up)))
	assert.Equal(t, uint8(3), heldStack(tw, player).Count)
}

func TestFlintAndSteelIgnitesTarget(t *testing.T) {
	tw := newWorld(t)
	player := holding(t, tw, "alice", types.Stack(blocks.FlintAndSteelItem, 0, 1))
	target := holding(t, tw, "bob", types.ItemStack{})

	tw.SubmitIntent(intent.Interact{Entity: player, Target: target, HasTarget: true})
	tw.DoTick()

	var effects effect.Effects
	tw.Do(func(wCtx engine.Context) error {
		var err error
		effects, err = ecs.Read[effect.Effects](wCtx.Store(), target)
		return err
	})
	assert.Equal(t, 1, len(effects.Pending))
	assert.Equal(t, effect.BurningKind, effects.Pending[0].Kind)

	tw.DoTick()
	tw.Do(func(wCtx engine.Context) error {
		var err error
		effects, err = ecs.Read[effect.Effects](wCtx.Store(), target)
		return err
	})
	assert.Check(t, effects.Active(effect.BurningKind))
}

func TestEatingFood(t *testing.T) {
	tw := newWorld(t)
	player := holding(t, tw, "alice", types.Stack(blocks.AppleItem, 0, 2))
	tw.Do(func(wCtx engine.Context) error {
		return ecs.Set(wCtx.Store(), player, component.Health{Value: 10, Max: 20})
	})

	tw.SubmitIntent(intent.Action{Entity: player, Action: intent.ActionEat})
	tw.DoTick()

	var health component.Health
	tw.Do(func(wCtx engine.Context) error {
		var err error
		health, err = ecs.Read[component.Health](wCtx.Store(), player)
		return err
	})
	assert.Equal(t, float64(14), health.Value)
	assert.Equal(t, uint8(1), heldStack(tw, player).Count)
}
