package effect

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/engine"
)

var (
	ErrUnknownEffect   = eris.New("effect not registered")
	ErrDuplicateEffect = eris.New("effect already registered")
)

// Instance is one effect on one entity. It is plain data so it can be persisted with the entity; the behavior lives
// in the Effect registered under Kind.
type Instance struct {
	Kind     string `json:"kind"`
	Level    int    `json:"level"`
	Duration uint64 `json:"duration"`
	// Remaining counts down once per tick while the effect is applied.
	Remaining   uint64 `json:"remaining"`
	Elapsed     uint64 `json:"elapsed"`
	AddedTick   uint64 `json:"added_tick"`
	AppliedTick uint64 `json:"applied_tick"`
}

// New returns a pending instance of kind lasting duration ticks once applied.
func New(kind string, level int, duration uint64) Instance {
	return Instance{Kind: kind, Level: level, Duration: duration}
}

// Effect is the behavior of one kind of status effect. Embed Base for the defaults.
type Effect interface {
	Name() string
	OnApply(wCtx engine.Context, target ecs.EntityID, inst *Instance) error
	Tick(wCtx engine.Context, target ecs.EntityID, inst *Instance) error
	OnRemove(wCtx engine.Context, target ecs.EntityID, inst *Instance) error
	ShouldRemove(wCtx engine.Context, target ecs.EntityID, inst Instance) bool
}

// Base does nothing and removes the effect when its time runs out.
type Base struct{}

func (Base) OnApply(engine.Context, ecs.EntityID, *Instance) error  { return nil }
func (Base) Tick(engine.Context, ecs.EntityID, *Instance) error     { return nil }
func (Base) OnRemove(engine.Context, ecs.EntityID, *Instance) error { return nil }

func (Base) ShouldRemove(_ engine.Context, _ ecs.EntityID, inst Instance) bool {
	return inst.Remaining == 0
}

// Registry maps effect kinds to their behavior.
type Registry struct {
	kinds map[string]Effect
}

func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Effect)}
}

// Register adds effects. Nothing is registered if any kind is taken.
func (r *Registry) Register(effects ...Effect) error {
	for i, e := range effects {
		if _, ok := r.kinds[e.Name()]; ok {
			return eris.Wrapf(ErrDuplicateEffect, "effect %q", e.Name())
		}
		for _, other := range effects[:i] {
			if other.Name() == e.Name() {
				return eris.Wrapf(ErrDuplicateEffect, "effect %q", e.Name())
			}
		}
	}
	for _, e := range effects {
		r.kinds[e.Name()] = e
	}
	return nil
}

func (r *Registry) Lookup(kind string) (Effect, error) {
	e, ok := r.kinds[kind]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownEffect, "effect %q", kind)
	}
	return e, nil
}

// RegisterComponents registers the Effects component.
func RegisterComponents(c *component.Catalog) error {
	return component.Register[Effects](c)
}
