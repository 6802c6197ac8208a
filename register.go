package blockshard

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/console"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/effect"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/persistence"
	"pkg.world.dev/blockshard/scheduler"
	"pkg.world.dev/blockshard/system"
	"pkg.world.dev/blockshard/worldstage"
)

func (w *World) checkRegistrationOpen() error {
	if w.worldStage.Current() != worldstage.Init {
		return eris.Wrapf(ErrRegistrationClosed, "world is %s", w.worldStage.Current())
	}
	return nil
}

// RegisterComponent registers component type T with the world's store and catalog.
func RegisterComponent[T ecs.Component](w *World) error {
	if err := w.checkRegistrationOpen(); err != nil {
		return err
	}
	return component.Register[T](w.catalog)
}

// RegisterTask makes deferred tasks of type T survive a save and load.
func RegisterTask[T engine.Task](w *World) error {
	if err := w.checkRegistrationOpen(); err != nil {
		return err
	}
	return scheduler.RegisterTask[T](w.scheduler.Registry())
}

func (w *World) RegisterBlocks(blocks ...behavior.Block) error {
	if err := w.checkRegistrationOpen(); err != nil {
		return err
	}
	return w.behaviors.RegisterBlock(blocks...)
}

func (w *World) RegisterItems(items ...behavior.Item) error {
	if err := w.checkRegistrationOpen(); err != nil {
		return err
	}
	return w.behaviors.RegisterItem(items...)
}

func (w *World) RegisterEffects(effects ...effect.Effect) error {
	if err := w.checkRegistrationOpen(); err != nil {
		return err
	}
	return w.effects.Register(effects...)
}

// RegisterSystems registers systems named after their functions. They run after every system registered before
// them.
func (w *World) RegisterSystems(systems ...system.System) error {
	if err := w.checkRegistrationOpen(); err != nil {
		return err
	}
	return w.systemManager.RegisterSystems(systems...)
}

// RegisterSystem registers a single system under name.
func (w *World) RegisterSystem(name string, sys system.System) error {
	if err := w.checkRegistrationOpen(); err != nil {
		return err
	}
	return w.systemManager.RegisterNamed(name, sys)
}

// RegisterInitSystems registers systems that run once, before the regular systems of the first tick.
func (w *World) RegisterInitSystems(systems ...system.System) error {
	if err := w.checkRegistrationOpen(); err != nil {
		return err
	}
	return w.systemManager.RegisterInitSystems(systems...)
}

// RegisterHooks registers the save and load callbacks for entities tagged tag.
func (w *World) RegisterHooks(tag string, load persistence.Loader, save persistence.Saver) error {
	if err := w.checkRegistrationOpen(); err != nil {
		return err
	}
	return w.hooks.Register(tag, load, save)
}

func (w *World) RegisterCommand(name string, cmd console.Command) error {
	if err := w.checkRegistrationOpen(); err != nil {
		return err
	}
	return w.commands.Register(name, cmd)
}

// Catalog returns the component catalog, for building persistence hooks.
func (w *World) Catalog() *component.Catalog {
	return w.catalog
}
