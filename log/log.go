// Package log dumps what a world has registered and builds the scoped loggers handed to systems and tasks.
package log

import (
	"github.com/rs/zerolog"

	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/server"
)

// Loggable is anything that can describe its registrations.
type Loggable interface {
	Info() server.WorldInfo
}

func componentsToEvent(event *zerolog.Event, info server.WorldInfo) *zerolog.Event {
	arr := zerolog.Arr()
	for _, name := range info.Components {
		arr = arr.Str(name)
	}
	return event.Int("total_components", len(info.Components)).Array("components", arr)
}

func systemsToEvent(event *zerolog.Event, info server.WorldInfo) *zerolog.Event {
	arr := zerolog.Arr()
	for _, name := range info.Systems {
		arr = arr.Str(name)
	}
	return event.Int("total_systems", len(info.Systems)).Array("systems", arr)
}

func behaviorsToEvent(event *zerolog.Event, info server.WorldInfo) *zerolog.Event {
	blocks := zerolog.Arr()
	for _, b := range info.Blocks {
		blocks = blocks.Dict(zerolog.Dict().Int("id", int(b.ID)).Str("name", b.Name))
	}
	items := zerolog.Arr()
	for _, it := range info.Items {
		items = items.Dict(zerolog.Dict().Str("key", it.Key.String()).Str("name", it.Name))
	}
	return event.
		Int("total_blocks", len(info.Blocks)).Array("blocks", blocks).
		Int("total_items", len(info.Items)).Array("items", items)
}

// Components logs the registered components.
func Components(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	componentsToEvent(logger.WithLevel(level), target.Info()).Send()
}

// Systems logs the registered systems in run order.
func Systems(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	systemsToEvent(logger.WithLevel(level), target.Info()).Send()
}

// World logs everything the world has registered.
func World(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	info := target.Info()
	event := logger.WithLevel(level).Str("namespace", info.Namespace)
	event = componentsToEvent(event, info)
	event = systemsToEvent(event, info)
	behaviorsToEvent(event, info).Send()
}

// Entity logs the components attached to one entity.
func Entity(logger *zerolog.Logger, level zerolog.Level, store *ecs.Store, id ecs.EntityID) {
	names, err := store.ComponentsOf(id)
	event := logger.WithLevel(level).Str("entity", id.String())
	if err != nil {
		event.Err(err).Send()
		return
	}
	arr := zerolog.Arr()
	for _, name := range names {
		arr = arr.Str(name)
	}
	event.Array("components", arr).Send()
}

// CreateSystemLogger creates a sub logger with the entry {"system": systemName}.
func CreateSystemLogger(logger *zerolog.Logger, systemName string) *zerolog.Logger {
	l := logger.With().Str("system", systemName).Logger()
	return &l
}

// CreateTaskLogger creates a sub logger with the entry {"task": taskName}.
func CreateTaskLogger(logger *zerolog.Logger, taskName string) *zerolog.Logger {
	l := logger.With().Str("task", taskName).Logger()
	return &l
}
