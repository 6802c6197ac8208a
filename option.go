package blockshard

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/blockshard/console"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/persistence/redis"
	"pkg.world.dev/blockshard/server"
)

// WorldOption represents an option that can be used to augment how the World will be run.
type WorldOption struct {
	serverOption server.Option
	worldOption  func(*World)
}

// WithPort specifies the port for the World's HTTP server. If omitted, BLOCKSHARD_PORT is used, and if that is
// unset, port 4040.
func WithPort(port string) WorldOption {
	return WorldOption{
		serverOption: server.WithPort(port),
	}
}

// WithCORS allows cross origin requests to the HTTP server.
func WithCORS() WorldOption {
	return WorldOption{
		serverOption: server.WithCORS(),
	}
}

// WithNamespace overrides BLOCKSHARD_NAMESPACE. The namespace prefixes every key the world writes to storage.
func WithNamespace(namespace string) WorldOption {
	return WorldOption{
		worldOption: func(world *World) {
			world.namespace = namespace
		},
	}
}

// WithTickChannel sets the channel that will be used to decide when a tick is executed. If unset, the world ticks
// BLOCKSHARD_TICK_RATE times per second. Tests can pass in a channel controlled by the test for fine-grained control
// over when ticks are executed.
func WithTickChannel(ch <-chan time.Time) WorldOption {
	return WorldOption{
		worldOption: func(world *World) {
			world.tickChannel = ch
		},
	}
}

// WithTickDoneChannel sets a channel that will be notified each time a tick completes. The completed tick will be
// pushed to the channel.
func WithTickDoneChannel(ch chan<- uint64) WorldOption {
	return WorldOption{
		worldOption: func(world *World) {
			world.tickDoneChannel = ch
		},
	}
}

func WithPrettyLog() WorldOption {
	return WorldOption{
		worldOption: func(world *World) {
			prettyLogger := log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
			world.logger = &prettyLogger
		},
	}
}

// WithLogger replaces the world's logger.
func WithLogger(logger zerolog.Logger) WorldOption {
	return WorldOption{
		worldOption: func(world *World) {
			world.logger = &logger
		},
	}
}

// WithTuning replaces the gameplay constants loaded from the tuning file.
func WithTuning(tuning engine.Tuning) WorldOption {
	return WorldOption{
		worldOption: func(world *World) {
			world.tuning = tuning
		},
	}
}

// WithSeed seeds the world's random source. Two worlds with the same seed and the same inputs make the same random
// choices.
func WithSeed(seed int64) WorldOption {
	return WorldOption{
		worldOption: func(world *World) {
			world.seed = seed
		},
	}
}

// WithConsole reads console commands, one per line, from r.
func WithConsole(r io.Reader) WorldOption {
	return WorldOption{
		worldOption: func(world *World) {
			world.console = console.NewReader(r)
		},
	}
}

// WithStorage sets the save store. Without one the world runs in memory only.
func WithStorage(storage *redis.Storage) WorldOption {
	return WorldOption{
		worldOption: func(world *World) {
			world.storage = storage
		},
	}
}

// WithoutServer disables the HTTP server. StartGame then only runs the tick loop.
func WithoutServer() WorldOption {
	return WorldOption{
		worldOption: func(world *World) {
			world.serverDisabled = true
		},
	}
}

func separateOptions(opts []WorldOption) (
	serverOptions []server.Option,
	worldOptions []func(*World),
) {
	for _, opt := range opts {
		if opt.serverOption != nil {
			serverOptions = append(serverOptions, opt.serverOption)
		}
		if opt.worldOption != nil {
			worldOptions = append(worldOptions, opt.worldOption)
		}
	}
	return serverOptions, worldOptions
}
