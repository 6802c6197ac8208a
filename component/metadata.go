package component

import (
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"

	"pkg.world.dev/blockshard/codec"
	"pkg.world.dev/blockshard/ecs"
)

var ErrSchemaMismatch = eris.New("component schema does not match stored schema")

// Metadata describes a registered component type: its name, JSON schema and codec.
type Metadata interface {
	Name() string
	Schema() []byte
	Encode(v ecs.Component) ([]byte, error)
	Decode(bz []byte) (ecs.Component, error)
	ValidateAgainstSchema(targetSchema []byte) error

	register(s *ecs.Store) error
}

type metadata[T ecs.Component] struct {
	compType reflect.Type
	name     string
	schema   []byte
}

// NewMetadata reflects the JSON schema of T. T must be JSON serializable.
func NewMetadata[T ecs.Component]() (Metadata, error) {
	var t T
	compType := reflect.TypeOf(t)

	schema, err := jsonschema.ReflectFromType(compType).MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}
	return &metadata[T]{
		compType: compType,
		name:     t.Name(),
		schema:   schema,
	}, nil
}

func (m *metadata[T]) Name() string { return m.name }

func (m *metadata[T]) String() string { return m.name }

func (m *metadata[T]) Schema() []byte { return m.schema }

func (m *metadata[T]) Encode(v ecs.Component) ([]byte, error) {
	return codec.Encode(v)
}

func (m *metadata[T]) Decode(bz []byte) (ecs.Component, error) {
	return codec.Decode[T](bz)
}

func (m *metadata[T]) ValidateAgainstSchema(targetSchema []byte) error {
	diff, err := jsondiff.CompareJSON(m.schema, targetSchema)
	if err != nil {
		return eris.Wrap(err, "failed to compare component schema")
	}
	if diff.String() != "" {
		return eris.Wrap(ErrSchemaMismatch, diff.String())
	}
	return nil
}

func (m *metadata[T]) register(s *ecs.Store) error {
	_, err := ecs.RegisterComponent[T](s)
	return err
}
