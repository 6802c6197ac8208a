// Package telemetry starts the datadog tracer and profiler for a world process.
package telemetry

import (
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"
)

const service = "blockshard"

type Manager struct {
	tracerShutdownFunc   func()
	profilerShutdownFunc func()
}

// New starts tracing when traceAddress is set and profiling when enableProfiler is true. namespace is reported as
// the env of every span and profile.
func New(traceAddress string, enableProfiler bool, namespace string) (*Manager, error) {
	tm := Manager{}

	if traceAddress != "" {
		tracer.Start(
			tracer.WithService(service),
			tracer.WithEnv(namespace),
			tracer.WithAgentAddr(traceAddress),
			tracer.WithRuntimeMetrics(),
		)
		tm.tracerShutdownFunc = tracer.Stop
	}

	if enableProfiler {
		if err := tm.setupProfiler(namespace); err != nil {
			tm.Shutdown()
			return nil, err
		}
	}

	return &tm, nil
}

// Shutdown stops whatever New started. It is safe to call more than once.
func (tm *Manager) Shutdown() {
	if tm.tracerShutdownFunc != nil {
		tm.tracerShutdownFunc()
		tm.tracerShutdownFunc = nil
	}
	if tm.profilerShutdownFunc != nil {
		tm.profilerShutdownFunc()
		tm.profilerShutdownFunc = nil
	}
}

func (tm *Manager) setupProfiler(namespace string) error {
	err := profiler.Start(
		profiler.WithService(service),
		profiler.WithEnv(namespace),
		profiler.WithProfileTypes(
			profiler.CPUProfile,
			profiler.HeapProfile,
		),
	)
	if err != nil {
		return err
	}
	tm.profilerShutdownFunc = profiler.Stop
	return nil
}
