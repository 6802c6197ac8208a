package scheduler

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/types"
)

// ExpectBlock returns the state at pos, or ErrStaleReference when the block there is no longer id.
func ExpectBlock(wCtx engine.Context, pos types.Pos, id types.BlockID) (types.BlockState, error) {
	state := wCtx.Block(pos)
	if state.ID != id {
		return state, eris.Wrapf(ErrStaleReference, "expected block %d at %s, found %s", id, pos, state)
	}
	return state, nil
}

// ExpectState returns ErrStaleReference unless pos holds exactly state.
func ExpectState(wCtx engine.Context, pos types.Pos, state types.BlockState) error {
	if found := wCtx.Block(pos); found != state {
		return eris.Wrapf(ErrStaleReference, "expected %s at %s, found %s", state, pos, found)
	}
	return nil
}

// Skip ends a task whose precondition failed. Stale references are expected and logged at debug level only.
func Skip(wCtx engine.Context, err error) (uint64, bool) {
	if eris.Is(err, ErrStaleReference) {
		wCtx.Logger().Debug().Err(err).Msg("skipping stale task")
	} else {
		wCtx.Logger().Warn().Err(err).Msg("skipping task")
	}
	return 0, false
}
