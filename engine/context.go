package engine

import (
	"math/rand"

	"github.com/rs/zerolog"

	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/types"
)

// Context is the view of the world handed to systems, deferred tasks and block/item behaviors. It is only valid on
// the simulation goroutine for the duration of the call it was passed to.
type Context interface {
	// CurrentTick returns the tick being simulated.
	CurrentTick() uint64
	// Timestamp returns the UNIX timestamp of the tick.
	Timestamp() uint64
	// Logger returns the logger that can be used to log messages from within a system, task or behavior.
	Logger() *zerolog.Logger
	// Namespace returns the namespace of the world.
	Namespace() string
	// Store returns the component store.
	Store() *ecs.Store
	// Rand returns the world's seeded random source.
	Rand() *rand.Rand
	// Tuning returns the gameplay constants.
	Tuning() Tuning
	// Behaviors resolves block and item identifiers.
	Behaviors() Behaviors
	// EmitEvent queues an event for broadcast to event subscribers after the tick.
	EmitEvent(kind string, payload any)

	Terrain
	Scheduler

	// For internal use.

	// SetLogger is used to inject a new logger configuration to a context that is already created.
	SetLogger(logger zerolog.Logger)
}

// Terrain is block access through the world. SetBlock notifies the six neighbors of pos through the bounded
// block update queue and calls Added on the new block; SetBlockSilently does neither.
type Terrain interface {
	Block(pos types.Pos) types.BlockState
	SetBlock(pos types.Pos, state types.BlockState) error
	SetBlockSilently(pos types.Pos, state types.BlockState) error
	// NotifySelf queues a neighbor update for pos from pos itself, dispatched with types.Invalid as source face.
	NotifySelf(pos types.Pos)

	// BlockEntity returns the entity holding auxiliary state for the block at pos.
	BlockEntity(pos types.Pos) (ecs.EntityID, bool)
	SetBlockEntity(pos types.Pos, id ecs.EntityID)
	// RemoveBlockEntity detaches and destroys the block entity at pos, if any.
	RemoveBlockEntity(pos types.Pos)
}

// Scheduler enqueues deferred tasks. Tasks scheduled for a tick that is already being drained become eligible on
// the next tick.
type Scheduler interface {
	ScheduleAt(tick uint64, task Task)
	ScheduleIn(delay uint64, task Task)
	ScheduleNextTick(task Task)
}
