package blockshard

import (
	"math/rand"

	"github.com/rs/zerolog"

	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/types"
)

var _ engine.Context = (*worldContext)(nil)

type worldContext struct {
	world  *World
	logger *zerolog.Logger
}

func newWorldContext(world *World) engine.Context {
	logger := *world.logger
	return &worldContext{world: world, logger: &logger}
}

// Event is something observable that happened during a tick, broadcast to /events subscribers after the tick.
type Event struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

// TickEvents is the message broadcast to event subscribers after every tick that emitted events.
type TickEvents struct {
	Tick   uint64  `json:"tick"`
	Events []Event `json:"events"`
}

func (ctx *worldContext) CurrentTick() uint64 {
	return ctx.world.CurrentTick()
}

func (ctx *worldContext) Timestamp() uint64 {
	return ctx.world.timestamp.Load()
}

func (ctx *worldContext) Logger() *zerolog.Logger {
	return ctx.logger
}

func (ctx *worldContext) SetLogger(logger zerolog.Logger) {
	ctx.logger = &logger
}

func (ctx *worldContext) Namespace() string {
	return ctx.world.namespace
}

func (ctx *worldContext) Store() *ecs.Store {
	return ctx.world.store
}

func (ctx *worldContext) Rand() *rand.Rand {
	return ctx.world.rand
}

func (ctx *worldContext) Tuning() engine.Tuning {
	return ctx.world.tuning
}

func (ctx *worldContext) Behaviors() engine.Behaviors {
	return ctx.world.behaviors
}

func (ctx *worldContext) EmitEvent(kind string, payload any) {
	ctx.world.events = append(ctx.world.events, Event{Kind: kind, Payload: payload})
}

// -----------------------------------------------------------------------------
// Terrain
// -----------------------------------------------------------------------------

func (ctx *worldContext) Block(pos types.Pos) types.BlockState {
	return ctx.world.terrain.Block(pos)
}

func (ctx *worldContext) SetBlock(pos types.Pos, state types.BlockState) error {
	return ctx.world.setBlock(ctx, pos, state)
}

func (ctx *worldContext) SetBlockSilently(pos types.Pos, state types.BlockState) error {
	return ctx.world.terrain.SetBlock(pos, state)
}

func (ctx *worldContext) NotifySelf(pos types.Pos) {
	ctx.world.updates.push(blockUpdate{pos: pos, face: types.Invalid})
}

func (ctx *worldContext) BlockEntity(pos types.Pos) (ecs.EntityID, bool) {
	id, ok := ctx.world.blockEntities[pos]
	return id, ok
}

func (ctx *worldContext) SetBlockEntity(pos types.Pos, id ecs.EntityID) {
	if existing, ok := ctx.world.blockEntities[pos]; ok && existing == id {
		return
	}
	ctx.RemoveBlockEntity(pos)
	ctx.world.blockEntities[pos] = id
}

func (ctx *worldContext) RemoveBlockEntity(pos types.Pos) {
	id, ok := ctx.world.blockEntities[pos]
	if !ok {
		return
	}
	delete(ctx.world.blockEntities, pos)
	if err := ctx.world.store.Destroy(id); err != nil {
		ctx.logger.Warn().Err(err).Msgf("failed to destroy block entity at %s", pos)
	}
}

// -----------------------------------------------------------------------------
// Scheduler
// -----------------------------------------------------------------------------

func (ctx *worldContext) ScheduleAt(tick uint64, task engine.Task) {
	ctx.world.scheduler.ScheduleAt(tick, task)
}

func (ctx *worldContext) ScheduleIn(delay uint64, task engine.Task) {
	ctx.world.scheduler.ScheduleAt(ctx.CurrentTick()+delay, task)
}

func (ctx *worldContext) ScheduleNextTick(task engine.Task) {
	ctx.world.scheduler.ScheduleAt(ctx.CurrentTick()+1, task)
}
