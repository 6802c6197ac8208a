package testutils

import (
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"pkg.world.dev/blockshard"
	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/types"
)

// TestWorld is a World driven by the test: it only ticks when DoTick is called, saves to a miniredis instance and
// runs without the HTTP server. It shuts down when the test ends.
type TestWorld struct {
	testing.TB
	*blockshard.World

	Redis *miniredis.Miniredis

	tickTrigger chan time.Time
	tickDone    chan uint64
	startOnce   sync.Once
}

// NewTestWorld creates a test world saving to redis. Pass nil to get a fresh miniredis; pass the Redis of an
// earlier TestWorld to load what it saved.
func NewTestWorld(t testing.TB, redis *miniredis.Miniredis, opts ...blockshard.WorldOption) *TestWorld {
	if redis == nil {
		redis = miniredis.RunT(t)
	}
	t.Setenv("REDIS_ADDRESS", redis.Addr())

	tickTrigger, tickDone := make(chan time.Time), make(chan uint64, 1)
	defaultOpts := []blockshard.WorldOption{
		blockshard.WithTickChannel(tickTrigger),
		blockshard.WithTickDoneChannel(tickDone),
		blockshard.WithoutServer(),
		blockshard.WithSeed(1),
	}
	world, err := blockshard.NewWorld(append(defaultOpts, opts...)...)
	assert.NilError(t, err)

	return &TestWorld{
		TB:          t,
		World:       world,
		Redis:       redis,
		tickTrigger: tickTrigger,
		tickDone:    tickDone,
	}
}

// StartWorld starts the game loop. It is called by the first DoTick; call it directly to test a started world
// without ticking it.
func (tw *TestWorld) StartWorld() {
	tw.startOnce.Do(func() {
		startErr := make(chan error, 1)
		go func() {
			startErr <- tw.StartGame()
		}()
		deadline := time.After(5 * time.Second)
		for !tw.IsGameRunning() {
			select {
			case err := <-startErr:
				tw.Fatalf("world stopped while starting: %v", err)
			case <-deadline:
				tw.Fatal("timed out waiting for the world to start")
			case <-time.After(time.Millisecond):
			}
		}
		tw.Cleanup(func() {
			assert.NilError(tw, tw.Shutdown())
		})
	})
}

// DoTick runs one tick and waits for it to finish.
func (tw *TestWorld) DoTick() {
	tw.StartWorld()
	tw.tickTrigger <- time.Now()
	<-tw.tickDone
}

// DoTicks runs n ticks.
func (tw *TestWorld) DoTicks(n int) {
	for i := 0; i < n; i++ {
		tw.DoTick()
	}
}

// Restart shuts the world down, which saves it, and returns a new started world loaded from the same redis.
func (tw *TestWorld) Restart(opts ...blockshard.WorldOption) *TestWorld {
	tw.StartWorld()
	assert.NilError(tw, tw.Shutdown())
	next := NewTestWorld(tw.TB, tw.Redis, opts...)
	next.StartWorld()
	return next
}

// Do runs fn on the simulation state between ticks and fails the test on error.
func (tw *TestWorld) Do(fn func(wCtx engine.Context) error) {
	assert.NilError(tw, tw.Update(fn))
}

// SetBlock places state at pos the way a system would, with neighbor notifications.
func (tw *TestWorld) SetBlock(pos types.Pos, state types.BlockState) {
	tw.Do(func(wCtx engine.Context) error {
		return wCtx.SetBlock(pos, state)
	})
}

// SetBlockSilently places state at pos without notifying anything.
func (tw *TestWorld) SetBlockSilently(pos types.Pos, state types.BlockState) {
	tw.Do(func(wCtx engine.Context) error {
		return wCtx.SetBlockSilently(pos, state)
	})
}

func (tw *TestWorld) Block(pos types.Pos) types.BlockState {
	var state types.BlockState
	tw.Do(func(wCtx engine.Context) error {
		state = wCtx.Block(pos)
		return nil
	})
	return state
}
