package scheduler_test

import (
	"testing"

	"github.com/rs/zerolog"

	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/scheduler"
)

type fakeContext struct {
	engine.Context
	tick   uint64
	logger zerolog.Logger
}

func (f *fakeContext) CurrentTick() uint64     { return f.tick }
func (f *fakeContext) Logger() *zerolog.Logger { return &f.logger }

func (f *fakeContext) SetLogger(logger zerolog.Logger) { f.logger = logger }

func newFakeContext() *fakeContext {
	return &fakeContext{logger: zerolog.Nop()}
}

// runTicks drains the scheduler once for each tick in [from, to].
func runTicks(s *scheduler.Scheduler, wCtx *fakeContext, from, to uint64) {
	for tick := from; tick <= to; tick++ {
		wCtx.tick = tick
		s.Drain(wCtx)
	}
}

func record(log *[]uint64, next func(now uint64) (uint64, bool)) engine.Task {
	return engine.TaskFunc{Label: "record", Fn: func(wCtx engine.Context) (uint64, bool) {
		*log = append(*log, wCtx.CurrentTick())
		return next(wCtx.CurrentTick())
	}}
}

func once(uint64) (uint64, bool) { return 0, false }

func TestTaskRunsExactlyOnceAtDueTick(t *testing.T) {
	s := scheduler.New()
	wCtx := newFakeContext()
	wCtx.tick = 10

	var ran []uint64
	s.ScheduleAt(13, record(&ran, once))
	runTicks(s, wCtx, 10, 20)
	assert.DeepEqual(t, []uint64{13}, ran)
	assert.Equal(t, 0, s.Len())
}

func TestRescheduleCreatesExactlyOneFollowUp(t *testing.T) {
	s := scheduler.New()
	wCtx := newFakeContext()

	var ran []uint64
	first := true
	s.ScheduleAt(2, record(&ran, func(now uint64) (uint64, bool) {
		if first {
			first = false
			return now + 4, true
		}
		return 0, false
	}))
	runTicks(s, wCtx, 0, 20)
	assert.DeepEqual(t, []uint64{2, 6}, ran)
}

func TestSameTickTasksRunInEnqueueOrder(t *testing.T) {
	s := scheduler.New()
	wCtx := newFakeContext()

	var order []string
	named := func(name string) engine.Task {
		return engine.TaskFunc{Label: name, Fn: func(engine.Context) (uint64, bool) {
			order = append(order, name)
			return 0, false
		}}
	}
	s.ScheduleAt(5, named("A"))
	s.ScheduleAt(3, named("early"))
	s.ScheduleAt(5, named("B"))
	s.ScheduleAt(5, named("C"))

	// the world skipped straight to tick 7: overdue tasks still run by due tick, then enqueue order
	wCtx.tick = 7
	assert.Equal(t, 4, s.Drain(wCtx))
	assert.DeepEqual(t, []string{"early", "A", "B", "C"}, order)
}

func TestReentrantTaskWaitsForNextTick(t *testing.T) {
	s := scheduler.New()
	wCtx := newFakeContext()

	var ran []uint64
	s.ScheduleAt(1, engine.TaskFunc{Label: "outer", Fn: func(wCtx engine.Context) (uint64, bool) {
		s.ScheduleAt(wCtx.CurrentTick(), record(&ran, once))
		return 0, false
	}})

	wCtx.tick = 1
	assert.Equal(t, 1, s.Drain(wCtx))
	assert.Equal(t, 0, len(ran))
	assert.Equal(t, 1, s.Len())

	wCtx.tick = 2
	assert.Equal(t, 1, s.Drain(wCtx))
	assert.DeepEqual(t, []uint64{2}, ran)
}

func TestRescheduleToPastRunsNextTick(t *testing.T) {
	s := scheduler.New()
	wCtx := newFakeContext()

	var ran []uint64
	count := 0
	s.ScheduleAt(1, record(&ran, func(now uint64) (uint64, bool) {
		count++
		return now, count < 3
	}))
	runTicks(s, wCtx, 0, 5)
	assert.DeepEqual(t, []uint64{1, 2, 3}, ran)
}

func TestPanickingTaskIsDropped(t *testing.T) {
	s := scheduler.New()
	wCtx := newFakeContext()

	var ran []uint64
	s.ScheduleAt(1, engine.TaskFunc{Label: "panics", Fn: func(engine.Context) (uint64, bool) {
		panic("stale")
	}})
	s.ScheduleAt(1, record(&ran, once))

	wCtx.tick = 1
	assert.NotPanics(t, func() { s.Drain(wCtx) })
	assert.DeepEqual(t, []uint64{1}, ran)
	assert.Equal(t, 0, s.Len())
}

type growTask struct {
	X, Y, Z int
	Stage   int
}

var grown []int

func (growTask) Name() string { return "grow" }

func (g growTask) Apply(engine.Context) (uint64, bool) {
	grown = append(grown, g.Stage)
	return 0, false
}

func TestSnapshotAndRestore(t *testing.T) {
	s := scheduler.New()
	assert.NilError(t, scheduler.RegisterTask[growTask](s.Registry()))
	assert.ErrorIs(t, scheduler.RegisterTask[growTask](s.Registry()), scheduler.ErrDuplicateTask)

	s.ScheduleAt(8, growTask{X: 1, Y: 2, Z: 3, Stage: 2})
	s.ScheduleAt(4, growTask{Stage: 1})
	s.ScheduleAt(5, engine.TaskFunc{Label: "closure", Fn: func(engine.Context) (uint64, bool) { return 0, false }})

	records, skipped, err := s.Snapshot()
	assert.NilError(t, err)
	assert.DeepEqual(t, []string{"closure"}, skipped)
	assert.Equal(t, 2, len(records))
	assert.Equal(t, uint64(4), records[0].Due)
	assert.Equal(t, "grow", records[1].Name)

	restored := scheduler.New()
	assert.NilError(t, scheduler.RegisterTask[growTask](restored.Registry()))
	assert.NilError(t, restored.Restore(records))

	grown = nil
	runTicks(restored, newFakeContext(), 0, 10)
	assert.DeepEqual(t, []int{1, 2}, grown)

	unknown := scheduler.New()
	assert.ErrorIs(t, unknown.Restore(records), scheduler.ErrUnknownTask)
	assert.Equal(t, 0, unknown.Len())
}
