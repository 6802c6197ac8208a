package scheduler

import (
	"cmp"
	"slices"

	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/log"
)

var (
	// ErrStaleReference is returned by task helpers when the state a task refers to is gone. Tasks turn it into
	// a no-op.
	ErrStaleReference = eris.New("deferred task refers to stale world state")
	ErrDuplicateTask  = eris.New("task name already registered")
	ErrUnknownTask    = eris.New("task name not registered")
)

type entry struct {
	due  uint64
	seq  uint64
	task engine.Task
}

// Scheduler is a tick-indexed multimap of pending tasks. Each Drain runs every task due at or before the current
// tick exactly once, ordered by due tick and then by enqueue order. Tasks enqueued while a drain is running are
// held back until the drain finishes and are never eligible before the next tick.
type Scheduler struct {
	pending  map[uint64][]entry
	staged   []entry
	draining bool
	current  uint64
	seq      uint64
	size     int

	tasks *Registry
}

func New() *Scheduler {
	return &Scheduler{
		pending: make(map[uint64][]entry),
		tasks:   NewRegistry(),
	}
}

// Registry returns the named task registry used to persist pending tasks.
func (s *Scheduler) Registry() *Registry {
	return s.tasks
}

// ScheduleAt enqueues task to run at tick.
func (s *Scheduler) ScheduleAt(tick uint64, task engine.Task) {
	s.seq++
	e := entry{due: tick, seq: s.seq, task: task}
	if s.draining {
		if e.due <= s.current {
			e.due = s.current + 1
		}
		s.staged = append(s.staged, e)
		return
	}
	s.insert(e)
}

func (s *Scheduler) insert(e entry) {
	s.pending[e.due] = append(s.pending[e.due], e)
	s.size++
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	return s.size + len(s.staged)
}

// Drain runs every task due at or before the current tick of wCtx and returns how many ran. A task returning a
// next tick is enqueued again as a new entry.
func (s *Scheduler) Drain(wCtx engine.Context) int {
	s.current = wCtx.CurrentTick()
	var due []entry
	for tick, entries := range s.pending {
		if tick <= s.current {
			due = append(due, entries...)
			delete(s.pending, tick)
		}
	}
	s.size -= len(due)
	slices.SortFunc(due, compareEntries)

	s.draining = true
	for _, e := range due {
		if next, ok := s.run(wCtx, e); ok {
			s.ScheduleAt(next, e.task)
		}
	}
	s.draining = false
	for _, e := range s.staged {
		s.insert(e)
	}
	s.staged = s.staged[:0]
	return len(due)
}

func compareEntries(a, b entry) int {
	if c := cmp.Compare(a.due, b.due); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

// run applies one task. A panicking task is logged and treated as finished.
func (s *Scheduler) run(wCtx engine.Context, e entry) (next uint64, ok bool) {
	logger := *wCtx.Logger()
	wCtx.SetLogger(*log.CreateTaskLogger(&logger, e.task.Name()))
	defer wCtx.SetLogger(logger)
	defer func() {
		if r := recover(); r != nil {
			wCtx.Logger().Error().
				Uint64("due", e.due).
				Msgf("deferred task panicked: %v", r)
			next, ok = 0, false
		}
	}()
	return e.task.Apply(wCtx)
}

// Pending returns every pending task in execution order.
func (s *Scheduler) Pending() []Scheduled {
	var out []entry
	for _, entries := range s.pending {
		out = append(out, entries...)
	}
	out = append(out, s.staged...)
	slices.SortFunc(out, compareEntries)
	scheduled := make([]Scheduled, len(out))
	for i, e := range out {
		scheduled[i] = Scheduled{Due: e.due, Task: e.task}
	}
	return scheduled
}

// Scheduled is a pending task and its due tick.
type Scheduled struct {
	Due  uint64
	Task engine.Task
}
