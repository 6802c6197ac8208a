package system

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"pkg.world.dev/blockshard/engine"
	ecslog "pkg.world.dev/blockshard/log"
	"pkg.world.dev/blockshard/statsd"
)

const noActiveSystemName = ""

var (
	ErrSystemFailure   = eris.New("system failure")
	ErrDuplicateSystem = eris.New("system already registered")
)

// System is a function executed once every tick.
type System func(wCtx engine.Context) error

// Failure is a system error caught by the executor. It matches ErrSystemFailure with errors.Is and unwraps to the
// error the system returned.
type Failure struct {
	System string
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("system %s generated an error: %v", f.System, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

func (f *Failure) Is(target error) bool { return target == ErrSystemFailure }

// systemType is an internal entry used to track registered systems.
type systemType struct {
	Name string
	Fn   System
}

// Manager runs the registered systems in registration order. Init systems run once, before the regular systems
// of the first tick.
type Manager struct {
	// Registered systems in the order that they were registered.
	registeredSystems     []systemType
	registeredInitSystems []systemType
	initSystemsRan        bool

	// currentSystem is the name of the system that is currently running.
	currentSystem string
}

func NewManager() *Manager {
	return &Manager{
		registeredSystems:     make([]systemType, 0),
		registeredInitSystems: make([]systemType, 0),
		currentSystem:         noActiveSystemName,
	}
}

// NameOf derives a system name from its function name.
func NameOf(fn any) string {
	return filepath.Base(runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name())
}

// RegisterSystems registers systems named after their functions. If any name is a duplicate, none of the
// systems are registered.
func (m *Manager) RegisterSystems(systems ...System) error {
	return m.registerSystems(false, systems...)
}

// RegisterInitSystems registers systems that run once before the first tick's regular systems.
func (m *Manager) RegisterInitSystems(systems ...System) error {
	return m.registerSystems(true, systems...)
}

// RegisterNamed registers a single system under an explicit name.
func (m *Manager) RegisterNamed(name string, fn System) error {
	return m.registerSystem(false, name, fn)
}

func (m *Manager) registerSystems(isInit bool, systemFuncs ...System) error {
	systemsToRegister := make([]systemType, 0, len(systemFuncs))
	for _, systemFunc := range systemFuncs {
		systemName := NameOf(systemFunc)
		if slices.ContainsFunc(systemsToRegister, func(s systemType) bool { return s.Name == systemName }) {
			return eris.Wrapf(ErrDuplicateSystem, "duplicate system %q in slice", systemName)
		}
		if m.isRegistered(systemName) {
			return eris.Wrapf(ErrDuplicateSystem, "system %q", systemName)
		}
		systemsToRegister = append(systemsToRegister, systemType{Name: systemName, Fn: systemFunc})
	}

	for _, sys := range systemsToRegister {
		if err := m.registerSystem(isInit, sys.Name, sys.Fn); err != nil {
			return eris.Wrap(err, "failed to register system")
		}
	}
	return nil
}

func (m *Manager) registerSystem(isInit bool, systemName string, systemFunc System) error {
	if m.isRegistered(systemName) {
		return eris.Wrapf(ErrDuplicateSystem, "system %q", systemName)
	}
	sys := systemType{Name: systemName, Fn: systemFunc}
	if isInit {
		m.registeredInitSystems = append(m.registeredInitSystems, sys)
	} else {
		m.registeredSystems = append(m.registeredSystems, sys)
	}
	return nil
}

func (m *Manager) isRegistered(name string) bool {
	return slices.ContainsFunc(
		slices.Concat(m.registeredSystems, m.registeredInitSystems),
		func(s systemType) bool { return s.Name == name },
	)
}

// RunSystems runs every registered system once. A failing or panicking system is logged and the remaining
// systems still run; the failures are returned for the caller to report.
func (m *Manager) RunSystems(ctx context.Context, wCtx engine.Context) []error {
	span, ctx := tracer.StartSpanFromContext(ctx, "system.run", tracer.Measured())
	defer span.Finish()

	systemsToRun := m.registeredSystems
	if !m.initSystemsRan {
		systemsToRun = slices.Concat(m.registeredInitSystems, m.registeredSystems)
		m.initSystemsRan = true
	}

	// Store the original logger so that it can be reset to its original value
	logger := *wCtx.Logger()
	defer wCtx.SetLogger(logger)

	var failures []error
	for _, sys := range systemsToRun {
		m.currentSystem = sys.Name
		wCtx.SetLogger(*ecslog.CreateSystemLogger(&logger, sys.Name))

		sysSpan, _ := tracer.StartSpanFromContext(ctx, "system.run."+sys.Name, tracer.Measured())
		start := time.Now()
		err := runOne(sys, wCtx)
		statsd.EmitTickStat(start, sys.Name)
		if err != nil {
			wCtx.Logger().Error().Str("error", eris.ToString(err, true)).Msg("system failed")
			sysSpan.Finish(tracer.WithError(err))
			failures = append(failures, err)
			continue
		}
		sysSpan.Finish()
	}
	m.currentSystem = noActiveSystemName
	return failures
}

func runOne(sys systemType, wCtx engine.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Failure{System: sys.Name, Err: eris.Errorf("panic: %v", r)}
		}
	}()
	if err := sys.Fn(wCtx); err != nil {
		return &Failure{System: sys.Name, Err: err}
	}
	return nil
}

// Names returns the registered system names, init systems first.
func (m *Manager) Names() []string {
	sys := slices.Concat(m.registeredInitSystems, m.registeredSystems)
	names := make([]string, len(sys))
	for i := range sys {
		names[i] = sys[i].Name
	}
	return names
}

// CurrentSystem returns the name of the running system, or an empty string between systems.
func (m *Manager) CurrentSystem() string {
	return m.currentSystem
}
