package effect

import (
	"slices"

	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/engine"
)

// Effects is the status effect state of an entity. Pending effects wait for the next advance; applied effects are
// active until their Effect asks to remove them.
type Effects struct {
	Pending []Instance `json:"pending"`
	Applied []Instance `json:"applied"`
}

func (Effects) Name() string { return "Effects" }

// Active reports whether an effect of kind is applied.
func (e Effects) Active(kind string) bool {
	return slices.ContainsFunc(e.Applied, func(inst Instance) bool { return inst.Kind == kind })
}

// Add queues inst on target. It is applied by the first advance after the current tick.
func Add(wCtx engine.Context, target ecs.EntityID, inst Instance) error {
	store := wCtx.Store()
	if !ecs.Has[Effects](store, target) {
		if err := ecs.Set(store, target, Effects{}); err != nil {
			return err
		}
	}
	inst.AddedTick = wCtx.CurrentTick()
	return ecs.Update[Effects](store, target, func(e *Effects) error {
		e.Pending = append(e.Pending, inst)
		return nil
	})
}

// Advance runs one apply, remove, tick cycle on target. Effect callbacks run without the Effects component
// borrowed, so they may Add further effects; those are kept pending.
//
// An effect is never removed in the advance that applied it, and re-adding an applied kind refreshes it: the
// longer remaining time and the higher level win.
func (r *Registry) Advance(wCtx engine.Context, target ecs.EntityID) error {
	store := wCtx.Store()
	snap, err := ecs.Read[Effects](store, target)
	if err != nil {
		return err
	}
	tick := wCtx.CurrentTick()
	var errs []error
	callback := func(inst *Instance, fn func(Effect) error) bool {
		kind, err := r.Lookup(inst.Kind)
		if err != nil {
			errs = append(errs, err)
			return false
		}
		if err := fn(kind); err != nil {
			errs = append(errs, eris.Wrapf(err, "effect %q on entity %s", inst.Kind, target))
		}
		return true
	}

	applied := slices.Clone(snap.Applied)
	var pending []Instance
	for _, inst := range snap.Pending {
		if inst.AddedTick >= tick {
			pending = append(pending, inst)
			continue
		}
		if i := slices.IndexFunc(applied, func(a Instance) bool { return a.Kind == inst.Kind }); i >= 0 {
			applied[i].Remaining = max(applied[i].Remaining, inst.Duration)
			applied[i].Level = max(applied[i].Level, inst.Level)
			continue
		}
		inst.AppliedTick = tick
		inst.Remaining = inst.Duration
		if callback(&inst, func(e Effect) error { return e.OnApply(wCtx, target, &inst) }) {
			applied = append(applied, inst)
		}
	}

	kept := applied[:0]
	for _, inst := range applied {
		if inst.AppliedTick < tick {
			var remove bool
			known := callback(&inst, func(e Effect) error {
				if remove = e.ShouldRemove(wCtx, target, inst); remove {
					return e.OnRemove(wCtx, target, &inst)
				}
				return nil
			})
			if !known || remove {
				continue
			}
		}
		kept = append(kept, inst)
	}

	for i := range kept {
		inst := &kept[i]
		callback(inst, func(e Effect) error { return e.Tick(wCtx, target, inst) })
		inst.Elapsed++
		if inst.Remaining > 0 {
			inst.Remaining--
		}
	}

	err = ecs.Update[Effects](store, target, func(e *Effects) error {
		if n := len(snap.Pending); len(e.Pending) > n {
			pending = append(pending, e.Pending[n:]...)
		}
		e.Pending = pending
		e.Applied = kept
		return nil
	})
	if eris.Is(err, ecs.ErrNoSuchEntity) {
		return nil
	}
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return eris.Wrapf(errs[0], "%d effect callbacks failed", len(errs))
	}
	return nil
}

// System advances the effects of every entity that has any.
func (r *Registry) System(wCtx engine.Context) error {
	q, err := ecs.NewQuery1[Effects](wCtx.Store())
	if err != nil {
		return err
	}
	for _, id := range q.Collect() {
		if err := r.Advance(wCtx, id); err != nil {
			wCtx.Logger().Warn().Str("entity", id.String()).Err(err).Msg("status effect advance failed")
		}
	}
	return nil
}
