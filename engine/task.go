package engine

// Task is a deferred unit of world mutation. Tasks are plain values so they can be inspected, invoked directly in
// tests and persisted by name.
//
// Apply runs the task once. Returning ok=true asks for exactly one follow-up run at tick next. A task must check
// its own preconditions against the current world and return ok=false when they no longer hold; it never reports
// an error.
type Task interface {
	Name() string
	Apply(wCtx Context) (next uint64, ok bool)
}

// TaskFunc adapts a function to a Task. Function tasks cannot be persisted.
type TaskFunc struct {
	Label string
	Fn    func(wCtx Context) (uint64, bool)
}

func (t TaskFunc) Name() string {
	return t.Label
}

func (t TaskFunc) Apply(wCtx Context) (uint64, bool) {
	return t.Fn(wCtx)
}
