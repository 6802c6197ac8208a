package scheduler

import (
	"reflect"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/codec"
	"pkg.world.dev/blockshard/engine"
)

// Registry maps task names to task types. A pending task can only be saved and restored when its type is
// registered, since the task value is stored as its name plus a JSON payload.
type Registry struct {
	types map[string]reflect.Type
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]reflect.Type)}
}

// Record is the persisted form of a pending task.
type Record struct {
	Due     uint64          `json:"due"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// RegisterTask registers task type T under the name its zero value reports.
func RegisterTask[T engine.Task](r *Registry) error {
	var zero T
	name := zero.Name()
	if _, ok := r.types[name]; ok {
		return eris.Wrapf(ErrDuplicateTask, "task %q", name)
	}
	r.types[name] = reflect.TypeOf(zero)
	return nil
}

func (r *Registry) IsRegistered(name string) bool {
	_, ok := r.types[name]
	return ok
}

func (r *Registry) encode(due uint64, task engine.Task) (Record, error) {
	if _, ok := r.types[task.Name()]; !ok {
		return Record{}, eris.Wrapf(ErrUnknownTask, "task %q", task.Name())
	}
	payload, err := codec.Encode(task)
	if err != nil {
		return Record{}, eris.Wrapf(err, "task %q", task.Name())
	}
	return Record{Due: due, Name: task.Name(), Payload: payload}, nil
}

func (r *Registry) decode(rec Record) (engine.Task, error) {
	typ, ok := r.types[rec.Name]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownTask, "task %q", rec.Name)
	}
	ptr := reflect.New(typ)
	if err := codec.DecodeInto(rec.Payload, ptr.Interface()); err != nil {
		return nil, eris.Wrapf(err, "task %q", rec.Name)
	}
	task, ok := ptr.Elem().Interface().(engine.Task)
	if !ok {
		return nil, eris.Errorf("task %q does not decode to a task", rec.Name)
	}
	return task, nil
}

// Snapshot encodes every pending task in execution order. Tasks whose type is not registered are skipped and their
// names returned.
func (s *Scheduler) Snapshot() ([]Record, []string, error) {
	var (
		records []Record
		skipped []string
	)
	for _, p := range s.Pending() {
		rec, err := s.tasks.encode(p.Due, p.Task)
		if eris.Is(err, ErrUnknownTask) {
			skipped = append(skipped, p.Task.Name())
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

// Restore enqueues the tasks in records. Nothing is enqueued if any record fails to decode.
func (s *Scheduler) Restore(records []Record) error {
	tasks := make([]engine.Task, len(records))
	for i, rec := range records {
		task, err := s.tasks.decode(rec)
		if err != nil {
			return err
		}
		tasks[i] = task
	}
	for i, task := range tasks {
		s.ScheduleAt(records[i].Due, task)
	}
	return nil
}
