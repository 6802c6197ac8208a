package effect

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/blocks"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/engine"
)

const (
	BurningKind      = "burning"
	PoisonKind       = "poison"
	RegenerationKind = "regeneration"
)

// Core returns the core status effects.
func Core() []Effect {
	return []Effect{Burning{}, Poison{}, Regeneration{}}
}

// Burning hurts the entity once a second and goes out early in water.
type Burning struct{ Base }

func (Burning) Name() string { return BurningKind }

func (Burning) Tick(wCtx engine.Context, target ecs.EntityID, inst *Instance) error {
	if inst.Elapsed%20 != 0 {
		return nil
	}
	return hurt(wCtx, target, float64(max(inst.Level, 1)), 0)
}

func (b Burning) ShouldRemove(wCtx engine.Context, target ecs.EntityID, inst Instance) bool {
	if b.Base.ShouldRemove(wCtx, target, inst) {
		return true
	}
	pos, err := ecs.Read[component.Position](wCtx.Store(), target)
	if err != nil {
		return false
	}
	id := wCtx.Block(pos.BlockPos()).ID
	return id == blocks.Water || id == blocks.FlowingWater
}

// Poison hurts the entity every 25 ticks but never kills it.
type Poison struct{ Base }

func (Poison) Name() string { return PoisonKind }

func (Poison) Tick(wCtx engine.Context, target ecs.EntityID, inst *Instance) error {
	if inst.Elapsed%interval(25, inst.Level) != 0 {
		return nil
	}
	return hurt(wCtx, target, 1, 1)
}

// Regeneration heals the entity, faster at higher levels.
type Regeneration struct{ Base }

func (Regeneration) Name() string { return RegenerationKind }

func (Regeneration) Tick(wCtx engine.Context, target ecs.EntityID, inst *Instance) error {
	if inst.Elapsed%interval(50, inst.Level) != 0 {
		return nil
	}
	err := ecs.Update[component.Health](wCtx.Store(), target, func(h *component.Health) error {
		h.Heal(1)
		return nil
	})
	return ignoreMissing(err)
}

// interval halves base for every level above the first, down to one tick.
func interval(base uint64, level int) uint64 {
	if level > 1 {
		base >>= min(level-1, 6)
	}
	return max(base, 1)
}

// hurt lowers health by amount but not below floor.
func hurt(wCtx engine.Context, target ecs.EntityID, amount, floor float64) error {
	err := ecs.Update[component.Health](wCtx.Store(), target, func(h *component.Health) error {
		if h.Value <= floor {
			return nil
		}
		h.Hurt(min(amount, h.Value-floor))
		return nil
	})
	return ignoreMissing(err)
}

// ignoreMissing treats entities without health as immune.
func ignoreMissing(err error) error {
	if eris.Is(err, ecs.ErrComponentMissing) {
		return nil
	}
	return err
}
