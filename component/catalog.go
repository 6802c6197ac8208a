package component

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/ecs"
)

var ErrNoSchemaFound = eris.New("no schema found")

// SchemaStorage persists component schemas so a restarted world can refuse saved components whose layout changed.
type SchemaStorage interface {
	// GetSchema returns ErrNoSchemaFound when nothing is stored for the component.
	GetSchema(componentName string) ([]byte, error)
	SetSchema(componentName string, schema []byte) error
}

// Catalog registers components in a store and keeps their metadata for persistence and debugging.
type Catalog struct {
	store         *ecs.Store
	schemaStorage SchemaStorage
	byName        map[string]Metadata
	order         []string
}

func NewCatalog(store *ecs.Store, schemaStorage SchemaStorage) *Catalog {
	if schemaStorage == nil {
		schemaStorage = NewMemorySchemaStorage()
	}
	return &Catalog{
		store:         store,
		schemaStorage: schemaStorage,
		byName:        make(map[string]Metadata),
	}
}

// Register registers component T. Registering the same type again is a no-op. When a schema for the component
// name is already stored it must match the schema of T.
func Register[T ecs.Component](c *Catalog) error {
	md, err := NewMetadata[T]()
	if err != nil {
		return err
	}
	if existing, ok := c.byName[md.Name()]; ok {
		if string(existing.Schema()) == string(md.Schema()) {
			return nil
		}
		return eris.Wrapf(ecs.ErrComponentAlreadyRegistered, "component %q", md.Name())
	}

	// A missing schema is fine; any other storage error is not.
	storedSchema, err := c.schemaStorage.GetSchema(md.Name())
	if err != nil && !eris.Is(err, ErrNoSchemaFound) {
		return err
	}
	if storedSchema != nil {
		if err := md.ValidateAgainstSchema(storedSchema); err != nil {
			return eris.Wrapf(err, "component %q does not match the schema in storage", md.Name())
		}
	} else if err := c.schemaStorage.SetSchema(md.Name(), md.Schema()); err != nil {
		return err
	}

	if err := md.register(c.store); err != nil {
		return err
	}
	c.byName[md.Name()] = md
	c.order = append(c.order, md.Name())
	return nil
}

func MustRegister[T ecs.Component](c *Catalog) {
	if err := Register[T](c); err != nil {
		panic(err)
	}
}

func (c *Catalog) ByName(name string) (Metadata, error) {
	md, ok := c.byName[name]
	if !ok {
		return nil, eris.Wrapf(ecs.ErrComponentNotRegistered, "component %q", name)
	}
	return md, nil
}

// Names returns the registered component names in registration order.
func (c *Catalog) Names() []string {
	return c.order
}

func (c *Catalog) Store() *ecs.Store {
	return c.store
}

// RegisterCore registers the components every world uses.
func RegisterCore(c *Catalog) error {
	for _, register := range []func(*Catalog) error{
		Register[Position],
		Register[Velocity],
		Register[Health],
		Register[Inventory],
		Register[FallingBlock],
		Register[ItemEntity],
		Register[Identity],
		Register[BlockEntity],
		Register[Player],
	} {
		if err := register(c); err != nil {
			return err
		}
	}
	return nil
}

// MemorySchemaStorage keeps schemas in memory, for worlds without a save store.
type MemorySchemaStorage struct {
	schemas map[string][]byte
}

func NewMemorySchemaStorage() *MemorySchemaStorage {
	return &MemorySchemaStorage{schemas: make(map[string][]byte)}
}

func (m *MemorySchemaStorage) GetSchema(componentName string) ([]byte, error) {
	schema, ok := m.schemas[componentName]
	if !ok {
		return nil, eris.Wrapf(ErrNoSchemaFound, "component %q", componentName)
	}
	return schema, nil
}

func (m *MemorySchemaStorage) SetSchema(componentName string, schema []byte) error {
	m.schemas[componentName] = schema
	return nil
}
