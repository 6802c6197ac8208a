package blocks

import (
	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/scheduler"
	"pkg.world.dev/blockshard/types"
)

const (
	// playerPlaced marks leaves placed from an item. They never decay.
	playerPlaced = 0x4
	// leafReach is how many leaf steps a log can be away from leaves that stay.
	leafReach   = 4
	appleChance = 20
)

type leaves struct {
	behavior.Base
}

func (leaves) ID() types.BlockID { return Leaves }
func (leaves) Name() string      { return "leaves" }
func (leaves) Opaque() bool      { return false }
func (leaves) Opacity() uint8    { return 1 }
func (leaves) Hardness() float64 { return 0.2 }
func (leaves) BurnRate() int     { return 60 }

func (leaves) DroppedItems(types.BlockState, types.ItemStack) []types.ItemStack { return nil }

func (leaves) Place(_ engine.Context, placer ecs.EntityID, item types.ItemStack, pos types.Pos, _ types.Face) (
	behavior.PlacementEvent, bool,
) {
	return behavior.PlacementEvent{
		Pos:    pos,
		State:  types.State(Leaves, uint8(item.Meta&0x3)|playerPlaced),
		Placer: placer,
	}, true
}

func (leaves) NeighborUpdate(wCtx engine.Context, pos types.Pos, state types.BlockState, _ types.Face,
	_ types.BlockState,
) error {
	if state.Meta&playerPlaced == 0 {
		wCtx.ScheduleIn(wCtx.Tuning().LeafDecayTicks, LeafDecayCheck{Pos: pos})
	}
	return nil
}

// LeafDecayCheck removes the leaves at Pos when no log is reachable through connected leaves.
type LeafDecayCheck struct {
	Pos types.Pos `json:"pos"`
}

func (LeafDecayCheck) Name() string { return "leaf_decay_check" }

func (t LeafDecayCheck) Apply(wCtx engine.Context) (uint64, bool) {
	state, err := scheduler.ExpectBlock(wCtx, t.Pos, Leaves)
	if err != nil {
		return scheduler.Skip(wCtx, err)
	}
	if state.Meta&playerPlaced != 0 || logReachable(wCtx, t.Pos) {
		return 0, false
	}
	log := wCtx.Logger()
	if err := wCtx.SetBlock(t.Pos, types.Air); err != nil {
		log.Error().Err(err).Msgf("failed to decay leaves at %s", t.Pos)
		return 0, false
	}
	if wCtx.Rand().Intn(appleChance) == 0 {
		if err := DropItems(wCtx, t.Pos, types.Stack(AppleItem, 0, 1)); err != nil {
			log.Error().Err(err).Msg("failed to drop apple")
		}
	}
	return 0, false
}

// logReachable walks connected leaves breadth first, at most leafReach steps from start.
func logReachable(wCtx engine.Context, start types.Pos) bool {
	seen := map[types.Pos]bool{start: true}
	frontier := []types.Pos{start}
	for step := 0; step < leafReach && len(frontier) > 0; step++ {
		var next []types.Pos
		for _, pos := range frontier {
			for _, face := range types.Faces {
				n := pos.Side(face)
				if seen[n] {
					continue
				}
				seen[n] = true
				switch wCtx.Block(n).ID {
				case Log:
					return true
				case Leaves:
					next = append(next, n)
				}
			}
		}
		frontier = next
	}
	return false
}
