package terrain

import (
	"cmp"
	"slices"

	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/types"
)

const (
	ChunkWidth = 16
	Height     = 128

	chunkVolume = ChunkWidth * ChunkWidth * Height
)

var ErrOutOfBounds = eris.New("position out of world bounds")

// ChunkPos addresses a 16x16 column of the world.
type ChunkPos struct {
	X, Z int32
}

func ChunkPosOf(pos types.Pos) ChunkPos {
	return ChunkPos{X: int32(pos.X >> 4), Z: int32(pos.Z >> 4)}
}

// Origin returns the lowest block position in the chunk.
func (c ChunkPos) Origin() types.Pos {
	return types.P(int(c.X)<<4, 0, int(c.Z)<<4)
}

// Chunk stores the id and meta of every cell of one column.
type Chunk struct {
	ids   [chunkVolume]uint8
	metas [chunkVolume]uint8
}

func index(x, y, z int) int {
	return (y*ChunkWidth+z)*ChunkWidth + x
}

// At takes chunk-local coordinates.
func (c *Chunk) At(x, y, z int) types.BlockState {
	i := index(x, y, z)
	return types.BlockState{ID: types.BlockID(c.ids[i]), Meta: c.metas[i]}
}

func (c *Chunk) Set(x, y, z int, state types.BlockState) {
	i := index(x, y, z)
	c.ids[i], c.metas[i] = uint8(state.ID), state.Meta
}

// Fill sets every cell in the y range [fromY, toY) to state.
func (c *Chunk) Fill(fromY, toY int, state types.BlockState) {
	for y := max(fromY, 0); y < min(toY, Height); y++ {
		for z := 0; z < ChunkWidth; z++ {
			for x := 0; x < ChunkWidth; x++ {
				c.Set(x, y, z, state)
			}
		}
	}
}

// MarshalBinary returns the ids followed by the metas.
func (c *Chunk) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, 2*chunkVolume)
	out = append(out, c.ids[:]...)
	return append(out, c.metas[:]...), nil
}

func (c *Chunk) UnmarshalBinary(bz []byte) error {
	if len(bz) != 2*chunkVolume {
		return eris.Errorf("chunk data has %d bytes, want %d", len(bz), 2*chunkVolume)
	}
	copy(c.ids[:], bz[:chunkVolume])
	copy(c.metas[:], bz[chunkVolume:])
	return nil
}

// Terrain is the chunked block store of a world. Reads of unloaded chunks return air; writes load an empty chunk.
type Terrain struct {
	chunks map[ChunkPos]*Chunk
}

func New() *Terrain {
	return &Terrain{chunks: make(map[ChunkPos]*Chunk)}
}

func InBounds(pos types.Pos) bool {
	return pos.Y >= 0 && pos.Y < Height
}

func (t *Terrain) Block(pos types.Pos) types.BlockState {
	if !InBounds(pos) {
		return types.Air
	}
	c, ok := t.chunks[ChunkPosOf(pos)]
	if !ok {
		return types.Air
	}
	return c.At(pos.X&15, pos.Y, pos.Z&15)
}

func (t *Terrain) SetBlock(pos types.Pos, state types.BlockState) error {
	if !InBounds(pos) {
		return eris.Wrapf(ErrOutOfBounds, "position %s", pos)
	}
	cp := ChunkPosOf(pos)
	c, ok := t.chunks[cp]
	if !ok {
		c = &Chunk{}
		t.chunks[cp] = c
	}
	c.Set(pos.X&15, pos.Y, pos.Z&15, state)
	return nil
}

func (t *Terrain) Chunk(cp ChunkPos) (*Chunk, bool) {
	c, ok := t.chunks[cp]
	return c, ok
}

func (t *Terrain) SetChunk(cp ChunkPos, c *Chunk) {
	t.chunks[cp] = c
}

// Chunks returns the loaded chunk positions in a fixed order, so seeded random ticks are reproducible.
func (t *Terrain) Chunks() []ChunkPos {
	out := make([]ChunkPos, 0, len(t.chunks))
	for cp := range t.chunks {
		out = append(out, cp)
	}
	slices.SortFunc(out, func(a, b ChunkPos) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Z, b.Z)
	})
	return out
}
