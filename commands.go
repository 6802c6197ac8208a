package blockshard

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/console"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/effect"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/types"
)

func (w *World) registerCommands() error {
	for name, cmd := range map[string]console.Command{
		"tick":     cmdTick,
		"setblock": cmdSetBlock,
		"find":     w.cmdFind,
		"effect":   w.cmdEffect,
		"save":     w.cmdSave,
		"spawn":    w.cmdSpawn,
		"give":     cmdGive,
	} {
		if err := w.commands.Register(name, cmd); err != nil {
			return err
		}
	}
	return nil
}

func usage(format string) error {
	return eris.Wrapf(console.ErrUsage, "usage: %s", format)
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, eris.Wrapf(console.ErrUsage, "%q is not a number", arg)
		}
		out[i] = n
	}
	return out, nil
}

func parseEntity(arg string) (ecs.EntityID, error) {
	n, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, eris.Wrapf(console.ErrUsage, "%q is not an entity id", arg)
	}
	return ecs.EntityID(n), nil
}

func cmdTick(wCtx engine.Context, _ []string) error {
	wCtx.Logger().Info().Uint64("tick", wCtx.CurrentTick()).Msg("current tick")
	return nil
}

// setblock x y z id [meta]
func cmdSetBlock(wCtx engine.Context, args []string) error {
	if len(args) != 4 && len(args) != 5 {
		return usage("setblock x y z id [meta]")
	}
	n, err := parseInts(args)
	if err != nil {
		return err
	}
	meta := 0
	if len(n) == 5 {
		meta = n[4]
	}
	if n[3] < 0 || n[3] > 255 || meta < 0 || meta > 15 {
		return usage("setblock x y z id [meta] with id in [0,255] and meta in [0,15]")
	}
	return wCtx.SetBlock(types.P(n[0], n[1], n[2]), types.State(types.BlockID(n[3]), uint8(meta)))
}

// find <cql>
func (w *World) cmdFind(wCtx engine.Context, args []string) error {
	if len(args) == 0 {
		return usage("find <cql>")
	}
	ids, err := w.search(strings.Join(args, " "))
	if err != nil {
		return err
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = strconv.FormatUint(uint64(id), 10)
	}
	wCtx.Logger().Info().Int("count", len(ids)).Strs("entities", strs).Msg("found entities")
	return nil
}

// effect <entity> <name> <ticks> [level]
func (w *World) cmdEffect(wCtx engine.Context, args []string) error {
	if len(args) != 3 && len(args) != 4 {
		return usage("effect <entity> <name> <ticks> [level]")
	}
	id, err := parseEntity(args[0])
	if err != nil {
		return err
	}
	if _, err := w.effects.Lookup(args[1]); err != nil {
		return err
	}
	n, err := parseInts(args[2:])
	if err != nil {
		return err
	}
	level := 1
	if len(n) == 2 {
		level = n[1]
	}
	if n[0] <= 0 || level <= 0 {
		return usage("effect <entity> <name> <ticks> [level] with positive ticks and level")
	}
	return effect.Add(wCtx, id, effect.New(args[1], level, uint64(n[0])))
}

func (w *World) cmdSave(_ engine.Context, _ []string) error {
	return w.save(context.Background())
}

// spawn <name> x y z
func (w *World) cmdSpawn(wCtx engine.Context, args []string) error {
	if len(args) != 4 {
		return usage("spawn <name> x y z")
	}
	n, err := parseInts(args[1:])
	if err != nil {
		return err
	}
	id, err := w.spawnPlayer(args[0], mgl64.Vec3{float64(n[0]), float64(n[1]), float64(n[2])})
	if err != nil {
		return err
	}
	wCtx.Logger().Info().Str("player", args[0]).Uint64("entity", uint64(id)).Msg("player spawned")
	return nil
}

// give <entity> <item> [meta] [count]
func cmdGive(wCtx engine.Context, args []string) error {
	if len(args) < 2 || len(args) > 4 {
		return usage("give <entity> <item> [meta] [count]")
	}
	id, err := parseEntity(args[0])
	if err != nil {
		return err
	}
	n, err := parseInts(args[1:])
	if err != nil {
		return err
	}
	meta, count := 0, 1
	if len(n) > 1 {
		meta = n[1]
	}
	if len(n) > 2 {
		count = n[2]
	}
	if count <= 0 || count > 255 {
		return usage("give <entity> <item> [meta] [count] with count in [1,255]")
	}
	stack := types.Stack(types.ItemID(n[0]), int16(meta), uint8(count))
	inv, err := ecs.Read[component.Inventory](wCtx.Store(), id)
	if err != nil {
		return err
	}
	left := inv.Add(stack, behavior.ItemOf(wCtx, stack.Key()).StackSize())
	if left.Count > 0 {
		wCtx.Logger().Warn().Str("stack", left.String()).Msg("inventory full")
	}
	return nil
}
