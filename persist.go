package blockshard

import (
	"context"
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/blocks"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/effect"
	"pkg.world.dev/blockshard/persistence"
	"pkg.world.dev/blockshard/statsd"
)

const PlayerTag = "Player"

// registerEntityHooks registers the persistence tags of the entities the core spawns.
func (w *World) registerEntityHooks() error {
	load := persistence.ComponentLoader(w.catalog)
	for tag, names := range map[string][]string{
		blocks.ItemTag: {
			component.ItemEntity{}.Name(), component.Position{}.Name(), component.Velocity{}.Name(),
		},
		blocks.FallingBlockTag: {
			component.FallingBlock{}.Name(), component.Position{}.Name(), component.Velocity{}.Name(),
		},
		PlayerTag: {
			component.Player{}.Name(), component.Position{}.Name(), component.Velocity{}.Name(),
			component.Health{}.Name(), component.Inventory{}.Name(), effect.Effects{}.Name(),
		},
	} {
		if err := w.hooks.Register(tag, load, persistence.ComponentSaver(w.catalog, names...)); err != nil {
			return err
		}
	}
	return nil
}

// registerBlockEntityHooks lets every registered block add the persistence hooks of its block entity. It runs
// once the behavior registry is frozen.
func (w *World) registerBlockEntityHooks() error {
	for _, b := range w.behaviors.Blocks() {
		if err := b.BlockEntityLoader(w.hooks); err != nil {
			return eris.Wrapf(err, "block %d", b.ID())
		}
	}
	return nil
}

// SpawnPlayer creates a player entity with a full health bar and an empty inventory.
func (w *World) SpawnPlayer(username string, at mgl64.Vec3) (ecs.EntityID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.spawnPlayer(username, at)
}

func (w *World) spawnPlayer(username string, at mgl64.Vec3) (ecs.EntityID, error) {
	return ecs.NewBuilder().Add(
		component.Player{Username: username},
		component.Position{Vec: at},
		component.Velocity{},
		component.Health{Value: 20, Max: 20},
		component.NewInventory(),
		component.NewIdentity(PlayerTag),
	).Build(w.store)
}

// Save writes the world to storage between ticks.
func (w *World) Save(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.save(ctx)
}

// save writes every persisted entity, every loaded chunk and the pending deferred tasks. Entities and tasks that
// cannot be encoded are logged and left out; the rest of the world is still saved.
func (w *World) save(ctx context.Context) error {
	if w.storage == nil {
		return eris.New("world has no storage")
	}
	start := time.Now()

	compounds, errs := w.hooks.SaveAll(w.store)
	for _, err := range errs {
		w.logger.Warn().Msgf("entity not saved: %s", eris.ToString(err, true))
	}
	if err := w.storage.SaveEntities(ctx, compounds); err != nil {
		return err
	}

	for _, cp := range w.terrain.Chunks() {
		chunk, _ := w.terrain.Chunk(cp)
		if err := w.storage.SaveChunk(ctx, cp, chunk); err != nil {
			return err
		}
	}

	records, skipped, err := w.scheduler.Snapshot()
	if err != nil {
		return err
	}
	if len(skipped) > 0 {
		w.logger.Warn().Strs("tasks", skipped).Msg("deferred tasks without a registered type were not saved")
	}
	if err := w.storage.SaveTasks(ctx, w.CurrentTick(), records); err != nil {
		return err
	}

	statsd.EmitTickStat(start, "save")
	w.logger.Info().
		Int("entities", len(compounds)).
		Int("chunks", len(w.terrain.Chunks())).
		Int("tasks", len(records)).
		Msg("world saved")
	return nil
}

// load restores a saved world into the empty simulation state. Chunks are written silently, so no block callbacks
// run; the restored deferred tasks carry on where they left off.
func (w *World) load(ctx context.Context) error {
	tick, records, err := w.storage.LoadTasks(ctx)
	if err != nil {
		return err
	}
	w.tick.Store(tick)

	positions, err := w.storage.SavedChunks(ctx)
	if err != nil {
		return err
	}
	for _, cp := range positions {
		chunk, ok, err := w.storage.LoadChunk(ctx, cp)
		if err != nil {
			return err
		}
		if ok {
			w.terrain.SetChunk(cp, chunk)
		}
	}

	compounds, err := w.storage.LoadEntities(ctx)
	if err != nil {
		return err
	}
	var loadErrs []error
	for _, c := range compounds {
		if _, err := w.hooks.Load(w.store, c); err != nil {
			loadErrs = append(loadErrs, err)
		}
	}
	if len(loadErrs) > 0 {
		w.logger.Warn().Msgf("%d entities not loaded: %s", len(loadErrs),
			eris.ToString(errors.Join(loadErrs...), false))
	}

	q, err := ecs.NewQuery1[component.BlockEntity](w.store)
	if err != nil {
		return err
	}
	if err := q.Each(func(id ecs.EntityID, be component.BlockEntity) bool {
		w.blockEntities[be.Pos] = id
		return true
	}); err != nil {
		return err
	}

	if err := w.scheduler.Restore(records); err != nil {
		return err
	}
	w.logger.Info().
		Uint64("tick", tick).
		Int("chunks", len(positions)).
		Int("entities", w.store.Len()).
		Int("tasks", len(records)).
		Msg("world loaded")
	return nil
}
