package system

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/engine"
)

// GroupSystem is a system that needs context shared by the systems of its group on top of the world.
type GroupSystem[C any] func(wCtx engine.Context, gCtx C) error

// RegisterGroup registers systems that all receive gCtx. They run in the global registration order under the
// names "<group>/<function>". Registration is all or nothing.
func RegisterGroup[C any](m *Manager, group string, gCtx C, systems ...GroupSystem[C]) error {
	if group == "" {
		return eris.New("group name must not be empty")
	}
	names := make([]string, len(systems))
	seen := make(map[string]bool, len(systems))
	for i, sys := range systems {
		name := group + "/" + NameOf(sys)
		if seen[name] || m.isRegistered(name) {
			return eris.Wrapf(ErrDuplicateSystem, "system %q", name)
		}
		seen[name] = true
		names[i] = name
	}
	for i, sys := range systems {
		sys := sys
		if err := m.registerSystem(false, names[i], func(wCtx engine.Context) error {
			return sys(wCtx, gCtx)
		}); err != nil {
			return err
		}
	}
	return nil
}
