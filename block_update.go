package blockshard

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/statsd"
	"pkg.world.dev/blockshard/terrain"
	"pkg.world.dev/blockshard/types"
)

// blockUpdate asks the block at pos to react to a change of its neighbor on face. face is types.Invalid for a
// block notifying itself.
type blockUpdate struct {
	pos  types.Pos
	face types.Face
}

// updateQueue is the FIFO of pending neighbor notifications. Updates left over when a tick's budget runs out
// stay queued for the next tick.
type updateQueue struct {
	items []blockUpdate
	head  int
}

func newUpdateQueue() *updateQueue {
	return &updateQueue{}
}

func (q *updateQueue) push(u blockUpdate) {
	q.items = append(q.items, u)
}

func (q *updateQueue) pop() (blockUpdate, bool) {
	if q.head == len(q.items) {
		return blockUpdate{}, false
	}
	u := q.items[q.head]
	q.head++
	if q.head == len(q.items) {
		q.items, q.head = q.items[:0], 0
	} else if q.head > 1024 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		q.items, q.head = q.items[:n], 0
	}
	return u, true
}

func (q *updateQueue) len() int {
	return len(q.items) - q.head
}

// setBlock writes state at pos, swaps the block entity when the block kind changes, calls Added on the new block
// and queues a notification for each of the six neighbors. Writing the state already there does nothing.
func (w *World) setBlock(wCtx engine.Context, pos types.Pos, state types.BlockState) error {
	if !terrain.InBounds(pos) {
		return eris.Wrapf(terrain.ErrOutOfBounds, "cannot set %s at %s", state, pos)
	}
	old := w.terrain.Block(pos)
	if old == state {
		return nil
	}
	if err := w.terrain.SetBlock(pos, state); err != nil {
		return err
	}
	if old.ID != state.ID {
		wCtx.RemoveBlockEntity(pos)
	}

	b := behavior.BlockOf(wCtx, state.ID)
	addErr := b.Added(wCtx, pos, state)
	if old.ID != state.ID {
		b.BlockEntity(wCtx, pos, state)
	}

	for _, face := range types.Faces {
		neighbor := pos.Side(face)
		if !terrain.InBounds(neighbor) {
			continue
		}
		w.updates.push(blockUpdate{pos: neighbor, face: face.Opposite()})
	}
	if addErr != nil {
		return eris.Wrapf(addErr, "%s added at %s", state, pos)
	}
	return nil
}

// blockUpdateSystem dispatches queued neighbor notifications in FIFO order, at most MaxBlockUpdatesPerTick per
// tick. Notifications queued while dispatching join the back of the queue.
func (w *World) blockUpdateSystem(wCtx engine.Context) error {
	budget := w.tuning.MaxBlockUpdatesPerTick
	processed := 0
	for processed < budget {
		u, ok := w.updates.pop()
		if !ok {
			break
		}
		processed++
		w.dispatchUpdate(wCtx, u)
	}
	statsd.EmitCount("block_updates", int64(processed))
	if left := w.updates.len(); left > 0 {
		wCtx.Logger().Debug().Int("carried", left).Msg("block update budget exhausted")
	}
	return nil
}

// dispatchUpdate re-reads both cells, so a notification always reaches whatever block is there now.
func (w *World) dispatchUpdate(wCtx engine.Context, u blockUpdate) {
	state, b := behavior.At(wCtx, u.pos)
	neighbor := state
	if u.face.Valid() {
		neighbor = wCtx.Block(u.pos.Side(u.face))
	}
	if err := b.NeighborUpdate(wCtx, u.pos, state, u.face, neighbor); err != nil {
		wCtx.Logger().Warn().
			Str("pos", u.pos.String()).
			Str("face", u.face.String()).
			Msgf("neighbor update failed: %s", eris.ToString(err, true))
	}
}

// randomTickSystem picks RandomTickSpeed random cells in every loaded chunk and calls Tick on their block.
func (w *World) randomTickSystem(wCtx engine.Context) error {
	speed := w.tuning.RandomTickSpeed
	if speed <= 0 {
		return nil
	}
	for _, cp := range w.terrain.Chunks() {
		origin := cp.Origin()
		for i := 0; i < speed; i++ {
			pos := origin.Add(types.P(
				w.rand.Intn(terrain.ChunkWidth),
				w.rand.Intn(terrain.Height),
				w.rand.Intn(terrain.ChunkWidth),
			))
			state, b := behavior.At(wCtx, pos)
			if state.IsAir() {
				continue
			}
			if err := b.Tick(wCtx, pos, state); err != nil {
				wCtx.Logger().Warn().
					Str("pos", pos.String()).
					Msgf("random tick failed: %s", eris.ToString(err, true))
			}
		}
	}
	return nil
}
