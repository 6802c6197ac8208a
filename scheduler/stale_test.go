package scheduler_test

import (
	"testing"

	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/scheduler"
	"pkg.world.dev/blockshard/types"
)

type blockContext struct {
	*fakeContext
	blocks map[types.Pos]types.BlockState
}

func (b blockContext) Block(pos types.Pos) types.BlockState { return b.blocks[pos] }

func TestExpectBlock(t *testing.T) {
	pos := types.P(1, 2, 3)
	wCtx := blockContext{fakeContext: newFakeContext(), blocks: map[types.Pos]types.BlockState{
		pos: types.State(12, 1),
	}}

	state, err := scheduler.ExpectBlock(wCtx, pos, 12)
	assert.NilError(t, err)
	assert.Equal(t, types.State(12, 1), state)

	_, err = scheduler.ExpectBlock(wCtx, pos, 13)
	assert.ErrorIs(t, err, scheduler.ErrStaleReference)
	_, err = scheduler.ExpectBlock(wCtx, types.P(0, 0, 0), 12)
	assert.ErrorIs(t, err, scheduler.ErrStaleReference)
}

func TestExpectState(t *testing.T) {
	pos := types.P(1, 2, 3)
	wCtx := blockContext{fakeContext: newFakeContext(), blocks: map[types.Pos]types.BlockState{
		pos: types.State(12, 1),
	}}

	assert.NilError(t, scheduler.ExpectState(wCtx, pos, types.State(12, 1)))
	assert.ErrorIs(t, scheduler.ExpectState(wCtx, pos, types.State(12, 0)), scheduler.ErrStaleReference)
}

func TestSkipEndsTask(t *testing.T) {
	wCtx := newFakeContext()
	for _, err := range []error{eris.Wrap(scheduler.ErrStaleReference, "gone"), eris.New("other")} {
		next, ok := scheduler.Skip(wCtx, err)
		assert.Equal(t, uint64(0), next)
		assert.Check(t, !ok)
	}
}

func TestStaleTaskRunsOnce(t *testing.T) {
	s := scheduler.New()
	wCtx := blockContext{fakeContext: newFakeContext(), blocks: map[types.Pos]types.BlockState{}}
	pos := types.P(4, 4, 4)

	var ran []uint64
	s.ScheduleAt(3, record(&ran, func(uint64) (uint64, bool) {
		if _, err := scheduler.ExpectBlock(wCtx, pos, 12); err != nil {
			return scheduler.Skip(wCtx, err)
		}
		return 10, true
	}))
	runTicks(s, wCtx.fakeContext, 0, 8)
	assert.DeepEqual(t, []uint64{3}, ran)
	assert.Equal(t, 0, s.Len())
}
