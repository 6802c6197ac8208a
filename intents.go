package blockshard

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/blocks"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/intent"
	"pkg.world.dev/blockshard/terrain"
	"pkg.world.dev/blockshard/types"
)

var ErrNotAPlayer = eris.New("intent actor is not a player")

// drainIntents applies every intent queued since the last tick, in arrival order. A failing intent is logged and
// does not stop the others.
func drainIntents(wCtx engine.Context, w *World) error {
	for _, in := range w.intents.Drain() {
		if err := applyIntent(wCtx, in); err != nil {
			wCtx.Logger().Warn().
				Str("intent", in.Kind()).
				Str("entity", in.Actor().String()).
				Msgf("intent rejected: %s", eris.ToString(err, true))
		}
	}
	return nil
}

// drainConsole dispatches the console lines read since the last tick.
func drainConsole(wCtx engine.Context, w *World) error {
	if w.console == nil {
		return nil
	}
	for _, line := range w.console.Lines() {
		if err := w.commands.Dispatch(wCtx, line); err != nil {
			wCtx.Logger().Warn().Str("line", line).Msgf("console command failed: %s", eris.ToString(err, false))
		}
	}
	return nil
}

func applyIntent(wCtx engine.Context, in intent.Intent) error {
	if !ecs.Has[component.Player](wCtx.Store(), in.Actor()) {
		return eris.Wrapf(ErrNotAPlayer, "entity %s", in.Actor())
	}
	switch in := in.(type) {
	case intent.Move:
		return move(wCtx, in)
	case intent.Dig:
		return dig(wCtx, in)
	case intent.Place:
		return use(wCtx, in.Entity, behavior.Use{Pos: in.Pos, Face: in.Face})
	case intent.Interact:
		return interact(wCtx, in)
	case intent.Action:
		return action(wCtx, in)
	default:
		return eris.Wrapf(intent.ErrUnknownKind, "%T", in)
	}
}

// held returns the held slot index and a copy of its stack.
func held(wCtx engine.Context, entity ecs.EntityID) (int, types.ItemStack, error) {
	inv, err := ecs.Read[component.Inventory](wCtx.Store(), entity)
	if err != nil {
		return 0, types.ItemStack{}, err
	}
	slot, err := inv.HeldSlot()
	if err != nil {
		return 0, types.ItemStack{}, err
	}
	return inv.Held, slot.Stack(), nil
}

// move teleports the entity and lets the block at its feet react.
func move(wCtx engine.Context, in intent.Move) error {
	var feet types.Pos
	if err := ecs.Update[component.Position](wCtx.Store(), in.Entity, func(p *component.Position) error {
		p.Vec = in.To
		feet = p.BlockPos()
		return nil
	}); err != nil {
		return err
	}
	state, b := behavior.At(wCtx, feet)
	return b.OnCollide(wCtx, feet, state, in.Entity)
}

// dig breaks the block: OnBreak, drops, air, then the held item's OnDigWith.
func dig(wCtx engine.Context, in intent.Dig) error {
	if !terrain.InBounds(in.Pos) {
		return eris.Wrapf(terrain.ErrOutOfBounds, "dig at %s", in.Pos)
	}
	state := wCtx.Block(in.Pos)
	if state.IsAir() {
		return nil
	}
	_, stack, err := held(wCtx, in.Entity)
	if err != nil {
		return err
	}
	if err := blocks.Break(wCtx, in.Pos, in.Entity, stack); err != nil {
		return err
	}
	if stack.Empty() {
		return nil
	}
	return behavior.ItemOf(wCtx, stack.Key()).OnDigWith(wCtx, in.Entity, in.Pos, state)
}

// interact right-clicks a block or an entity. A block that passes falls through to the held item.
func interact(wCtx engine.Context, in intent.Interact) error {
	if in.HasTarget {
		return use(wCtx, in.Entity, behavior.Use{Face: types.Invalid, Target: in.Target, HasTarget: true})
	}
	state, b := behavior.At(wCtx, in.Pos)
	if b.InteractedWith(wCtx, in.Pos, state, in.Entity, in.Face) == types.Success {
		return nil
	}
	return use(wCtx, in.Entity, behavior.Use{Pos: in.Pos, Face: in.Face})
}

// use hands the held stack to its item's OnUse. An empty hand does nothing.
func use(wCtx engine.Context, entity ecs.EntityID, u behavior.Use) error {
	slot, stack, err := held(wCtx, entity)
	if err != nil {
		return err
	}
	if stack.Empty() {
		return nil
	}
	u.User, u.Slot, u.Item = entity, slot, stack
	behavior.ItemOf(wCtx, stack.Key()).OnUse(wCtx, u)
	return nil
}

func action(wCtx engine.Context, in intent.Action) error {
	if in.Action == intent.ActionSelectSlot {
		if in.Slot < 0 || in.Slot >= component.InventorySize {
			return eris.Errorf("slot %d out of range", in.Slot)
		}
		return ecs.Update[component.Inventory](wCtx.Store(), in.Entity, func(inv *component.Inventory) error {
			inv.Held = in.Slot
			return nil
		})
	}
	_, stack, err := held(wCtx, in.Entity)
	if err != nil {
		return err
	}
	if stack.Empty() {
		return nil
	}
	item := behavior.ItemOf(wCtx, stack.Key())
	switch in.Action {
	case intent.ActionEat:
		return item.OnEat(wCtx, in.Entity)
	case intent.ActionStopUsing:
		return item.OnStopUsing(wCtx, in.Entity)
	default:
		return eris.Errorf("unknown action %q", in.Action)
	}
}
