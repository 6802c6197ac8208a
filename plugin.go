package blockshard

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/blocks"
	"pkg.world.dev/blockshard/effect"
	"pkg.world.dev/blockshard/items"
	"pkg.world.dev/blockshard/scheduler"
)

var ErrPluginLoadFailure = eris.New("plugin failed to load")

// Plugin bundles registrations. Register is called while the world is still in Init.
type Plugin interface {
	Register(world *World) error
}

// RegisterPlugin registers plugin. A failing plugin is logged and reported as ErrPluginLoadFailure; whatever it
// registered before failing stays registered.
func (w *World) RegisterPlugin(plugin Plugin) error {
	if err := plugin.Register(w); err != nil {
		w.logger.Error().Err(err).Msgf("failed to register plugin %T: %s", plugin, eris.ToString(err, true))
		return eris.Wrapf(ErrPluginLoadFailure, "plugin %T: %v", plugin, err)
	}
	return nil
}

func (w *World) registerInternalPlugins() error {
	for _, plugin := range []Plugin{blocksPlugin{}, itemsPlugin{}, effectsPlugin{}} {
		if err := w.RegisterPlugin(plugin); err != nil {
			return err
		}
	}
	return nil
}

// blocksPlugin registers the core block set, the deferred tasks it schedules and the falling block system.
type blocksPlugin struct{}

func (blocksPlugin) Register(world *World) error {
	if err := world.RegisterBlocks(blocks.Core()...); err != nil {
		return err
	}
	if err := blocks.RegisterComponents(world.catalog); err != nil {
		return err
	}
	if err := scheduler.RegisterTask[behavior.UpdateTask](world.scheduler.Registry()); err != nil {
		return err
	}
	if err := blocks.RegisterTasks(world.scheduler.Registry()); err != nil {
		return err
	}
	return world.RegisterSystem("falling_blocks", blocks.FallingSystem)
}

type itemsPlugin struct{}

func (itemsPlugin) Register(world *World) error {
	return world.RegisterItems(items.Core()...)
}

// effectsPlugin registers the core status effects and the system advancing them.
type effectsPlugin struct{}

func (effectsPlugin) Register(world *World) error {
	if err := world.effects.Register(effect.Core()...); err != nil {
		return err
	}
	if err := effect.RegisterComponents(world.catalog); err != nil {
		return err
	}
	return world.RegisterSystem("status_effects", world.effects.System)
}
