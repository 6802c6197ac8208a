// Package worldstage tracks the lifecycle of a world. Registration is only allowed in Init; ticks only in Running.
package worldstage

import (
	"sync/atomic"
)

type Stage string

const (
	Init         Stage = "Init"         // Registration of blocks, items, systems and hooks is open
	Starting     Stage = "Starting"     // StartGame was called; registries are being frozen and state loaded
	Running      Stage = "Running"      // The tick loop is live
	ShuttingDown Stage = "ShuttingDown" // A shutdown was requested; the current tick finishes
	ShutDown     Stage = "ShutDown"     // The tick loop has exited and state has been saved
)

type Manager struct {
	current atomic.Value
}

func NewManager() *Manager {
	m := &Manager{}
	m.current.Store(Init)
	return m
}

func (m *Manager) CompareAndSwap(oldStage, newStage Stage) (swapped bool) {
	return m.current.CompareAndSwap(oldStage, newStage)
}

func (m *Manager) Current() Stage {
	return m.current.Load().(Stage)
}

func (m *Manager) Store(val Stage) {
	m.current.Store(val)
}

func (m *Manager) Swap(newStage Stage) (oldStage Stage) {
	return m.current.Swap(newStage).(Stage)
}

// Is reports whether the current stage is one of stages.
func (m *Manager) Is(stages ...Stage) bool {
	cur := m.Current()
	for _, s := range stages {
		if s == cur {
			return true
		}
	}
	return false
}
