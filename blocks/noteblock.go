package blocks

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/persistence"
	"pkg.world.dev/blockshard/types"
)

const (
	MusicTag = "Music"
	pitches  = 25
)

// NoteBlockState is the block entity of a note block.
type NoteBlockState struct {
	Pitch uint8
}

func (NoteBlockState) Name() string { return "NoteBlock" }

// NoteEvent is emitted each time a note block is played.
type NoteEvent struct {
	Pos   types.Pos `json:"pos"`
	Pitch uint8     `json:"pitch"`
}

type noteBlock struct {
	behavior.Base
}

func (noteBlock) ID() types.BlockID { return NoteBlock }
func (noteBlock) Name() string      { return "note_block" }
func (noteBlock) Hardness() float64 { return 0.8 }
func (noteBlock) BurnRate() int     { return 5 }

func (noteBlock) BlockEntity(wCtx engine.Context, pos types.Pos, _ types.BlockState) bool {
	if _, ok := wCtx.BlockEntity(pos); ok {
		return true
	}
	id, err := ecs.NewBuilder().Add(
		NoteBlockState{},
		component.NewIdentity(MusicTag),
		component.BlockEntity{Pos: pos},
	).Build(wCtx.Store())
	if err != nil {
		wCtx.Logger().Error().Err(err).Msgf("failed to create note block entity at %s", pos)
		return false
	}
	wCtx.SetBlockEntity(pos, id)
	return true
}

func (n noteBlock) InteractedWith(wCtx engine.Context, pos types.Pos, state types.BlockState, _ ecs.EntityID,
	_ types.Face,
) types.ActionResult {
	id, ok := wCtx.BlockEntity(pos)
	if !ok {
		if !n.BlockEntity(wCtx, pos, state) {
			return types.Pass
		}
		id, _ = wCtx.BlockEntity(pos)
	}
	var pitch uint8
	err := ecs.Update[NoteBlockState](wCtx.Store(), id, func(s *NoteBlockState) error {
		s.Pitch = (s.Pitch + 1) % pitches
		pitch = s.Pitch
		return nil
	})
	if err != nil {
		wCtx.Logger().Error().Err(err).Msgf("failed to tune note block at %s", pos)
		return types.Pass
	}
	wCtx.EmitEvent("note", NoteEvent{Pos: pos, Pitch: pitch})
	return types.Success
}

func (noteBlock) BlockEntityLoader(hooks *persistence.Hooks) error {
	return hooks.Register(MusicTag, loadNoteBlock, saveNoteBlock)
}

func loadNoteBlock(c persistence.Compound, b *ecs.Builder) error {
	note, err := c.Int("note")
	if err != nil {
		return err
	}
	if note < 0 || note >= pitches {
		return eris.Errorf("note %d out of range", note)
	}
	b.Add(NoteBlockState{Pitch: uint8(note)})
	return nil
}

func saveNoteBlock(s *ecs.Store, id ecs.EntityID) (persistence.Compound, error) {
	state, err := ecs.Read[NoteBlockState](s, id)
	if err != nil {
		return nil, err
	}
	return persistence.Compound{"note": int64(state.Pitch)}, nil
}
