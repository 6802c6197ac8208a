package types

import "strconv"

// BlockID is the numeric identifier of a block. The id space is part of the save and wire format and must not be
// renumbered.
type BlockID uint8

// BlockState is the content of a single cell: a block id plus its 8-bit auxiliary value (growth stage, fluid
// distance, wool color...).
type BlockState struct {
	ID   BlockID `json:"id"`
	Meta uint8   `json:"meta"`
}

// Air is the zero BlockState.
var Air = BlockState{}

func State(id BlockID, meta uint8) BlockState {
	return BlockState{ID: id, Meta: meta}
}

func (s BlockState) IsAir() bool {
	return s.ID == 0
}

func (s BlockState) String() string {
	return strconv.Itoa(int(s.ID)) + ":" + strconv.Itoa(int(s.Meta))
}

// ActionResult is returned by interaction callbacks. Pass lets the caller fall through to the next handler.
type ActionResult uint8

const (
	Pass ActionResult = iota
	Success
)

func (r ActionResult) String() string {
	if r == Success {
		return "Success"
	}
	return "Pass"
}
