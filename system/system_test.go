package system_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/system"
)

// fakeContext only implements what the executor touches.
type fakeContext struct {
	engine.Context
	logger zerolog.Logger
}

func (f *fakeContext) Logger() *zerolog.Logger         { return &f.logger }
func (f *fakeContext) SetLogger(logger zerolog.Logger) { f.logger = logger }

func newFakeContext() *fakeContext {
	return &fakeContext{logger: zerolog.Nop()}
}

var counter int

func AlwaysFails(engine.Context) error {
	return eris.New("boom")
}

func IncrementCounter(engine.Context) error {
	counter++
	return nil
}

func Panics(engine.Context) error {
	var m map[string]int
	m["x"] = 1
	return nil
}

func TestFailingSystemDoesNotBlockLaterSystems(t *testing.T) {
	counter = 0
	m := system.NewManager()
	assert.NilError(t, m.RegisterSystems(AlwaysFails, IncrementCounter))

	failures := m.RunSystems(context.Background(), newFakeContext())
	assert.Equal(t, 1, counter)
	assert.Equal(t, 1, len(failures))
	assert.Check(t, errors.Is(failures[0], system.ErrSystemFailure))

	var f *system.Failure
	assert.Check(t, errors.As(failures[0], &f))
	assert.Equal(t, "system_test.AlwaysFails", f.System)
	assert.ErrorContains(t, f.Err, "boom")
}

func TestPanickingSystemIsRecovered(t *testing.T) {
	counter = 0
	m := system.NewManager()
	assert.NilError(t, m.RegisterSystems(Panics, IncrementCounter))

	var failures []error
	assert.NotPanics(t, func() {
		failures = m.RunSystems(context.Background(), newFakeContext())
	})
	assert.Equal(t, 1, counter)
	assert.Equal(t, 1, len(failures))
	assert.Check(t, errors.Is(failures[0], system.ErrSystemFailure))
}

func TestDuplicateRegistrationIsAllOrNothing(t *testing.T) {
	m := system.NewManager()
	assert.NilError(t, m.RegisterSystems(IncrementCounter))

	err := m.RegisterSystems(AlwaysFails, IncrementCounter)
	assert.ErrorIs(t, err, system.ErrDuplicateSystem)
	assert.DeepEqual(t, []string{"system_test.IncrementCounter"}, m.Names())

	err = m.RegisterSystems(AlwaysFails, AlwaysFails)
	assert.ErrorIs(t, err, system.ErrDuplicateSystem)
	assert.Equal(t, 1, len(m.Names()))
}

func TestSystemsRunInRegistrationOrder(t *testing.T) {
	var order []string
	m := system.NewManager()
	for _, name := range []string{"c", "a", "b"} {
		name := name
		assert.NilError(t, m.RegisterNamed(name, func(engine.Context) error {
			order = append(order, name)
			return nil
		}))
	}
	assert.NilError(t, m.RegisterInitSystems(func(engine.Context) error {
		order = append(order, "init")
		return nil
	}))

	m.RunSystems(context.Background(), newFakeContext())
	m.RunSystems(context.Background(), newFakeContext())
	assert.DeepEqual(t, []string{"init", "c", "a", "b", "c", "a", "b"}, order)
}

func TestCurrentSystem(t *testing.T) {
	wCtx := newFakeContext()
	var seen string
	m := system.NewManager()
	assert.NilError(t, m.RegisterNamed("scoped", func(engine.Context) error {
		seen = m.CurrentSystem()
		return nil
	}))
	m.RunSystems(context.Background(), wCtx)
	assert.Equal(t, "scoped", seen)
	assert.Equal(t, "", m.CurrentSystem())
}

type serverContext struct {
	handled *[]string
}

func HandleLines(_ engine.Context, sCtx serverContext) error {
	*sCtx.handled = append(*sCtx.handled, "lines")
	return nil
}

func HandleIntents(_ engine.Context, sCtx serverContext) error {
	*sCtx.handled = append(*sCtx.handled, "intents")
	return nil
}

func TestGroupSystemsShareContext(t *testing.T) {
	var handled []string
	m := system.NewManager()
	err := system.RegisterGroup(m, "server", serverContext{handled: &handled}, HandleLines, HandleIntents)
	assert.NilError(t, err)
	assert.DeepEqual(t, []string{"server/system_test.HandleLines", "server/system_test.HandleIntents"}, m.Names())

	err = system.RegisterGroup(m, "server", serverContext{handled: &handled}, HandleLines)
	assert.ErrorIs(t, err, system.ErrDuplicateSystem)

	m.RunSystems(context.Background(), newFakeContext())
	assert.DeepEqual(t, []string{"lines", "intents"}, handled)
}
