package component

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"pkg.world.dev/blockshard/types"
)

// Position is the entity's location in world space.
type Position struct {
	Vec mgl64.Vec3
}

func (Position) Name() string { return "Position" }

// BlockPos returns the block the entity's feet are in.
func (p Position) BlockPos() types.Pos {
	return types.PosFromVec(p.Vec)
}

// Velocity is the entity's movement in blocks per tick.
type Velocity struct {
	Vec mgl64.Vec3
}

func (Velocity) Name() string { return "Velocity" }

type Health struct {
	Value float64
	Max   float64
}

func (Health) Name() string { return "Health" }

// Heal raises Value by amount without exceeding Max.
func (h *Health) Heal(amount float64) {
	h.Value = min(h.Value+amount, h.Max)
}

// Hurt lowers Value by amount, never below zero.
func (h *Health) Hurt(amount float64) {
	h.Value = max(h.Value-amount, 0)
}

func (h Health) Dead() bool { return h.Value <= 0 }

// FallingBlock is a block that left the terrain and falls as an entity until it lands.
type FallingBlock struct {
	State types.BlockState
}

func (FallingBlock) Name() string { return "FallingBlock" }

// ItemEntity is a dropped item stack lying in the world.
type ItemEntity struct {
	Stack types.ItemStack
}

func (ItemEntity) Name() string { return "ItemEntity" }

// Identity names the persistence tag of an entity and gives it an id that survives save and load.
type Identity struct {
	Tag  string
	UUID uuid.UUID
}

func (Identity) Name() string { return "Identity" }

func NewIdentity(tag string) Identity {
	return Identity{Tag: tag, UUID: uuid.New()}
}

// BlockEntity marks an entity holding auxiliary state for the block at Pos.
type BlockEntity struct {
	Pos types.Pos
}

func (BlockEntity) Name() string { return "BlockEntity" }

// Player marks entities driven by client intents.
type Player struct {
	Username string
}

func (Player) Name() string { return "Player" }
