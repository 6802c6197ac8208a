package ecs

import (
	"reflect"
	"slices"

	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/ecs/filter"
)

// Component is any value stored on an entity. Name identifies the component type in logs, filters and persisted
// state and must be unique per store.
type Component interface {
	Name() string
}

// ComponentID is the dense per-store id of a registered component type.
type ComponentID uint16

// column stores every instance of one component type, keyed by entity index.
type column interface {
	name() string
	has(idx uint32) bool
	borrowed(idx uint32) bool
	remove(idx uint32)
	getAny(idx uint32) (Component, bool)
	setAny(idx uint32, v Component)
	indices() []uint32
	size() int
}

type typedColumn[T Component] struct {
	compName string
	cells    map[uint32]*cell[T]
}

func (c *typedColumn[T]) name() string { return c.compName }

func (c *typedColumn[T]) has(idx uint32) bool {
	_, ok := c.cells[idx]
	return ok
}

func (c *typedColumn[T]) borrowed(idx uint32) bool {
	cl, ok := c.cells[idx]
	return ok && cl.borrowed()
}

func (c *typedColumn[T]) remove(idx uint32) { delete(c.cells, idx) }

func (c *typedColumn[T]) getAny(idx uint32) (Component, bool) {
	cl, ok := c.cells[idx]
	if !ok {
		return nil, false
	}
	return cl.value, true
}

func (c *typedColumn[T]) setAny(idx uint32, v Component) {
	val, _ := v.(T)
	c.set(idx, val)
}

func (c *typedColumn[T]) set(idx uint32, v T) {
	if cl, ok := c.cells[idx]; ok {
		cl.value = v
		return
	}
	c.cells[idx] = &cell[T]{value: v}
}

func (c *typedColumn[T]) indices() []uint32 {
	out := make([]uint32, 0, len(c.cells))
	for idx := range c.cells {
		out = append(out, idx)
	}
	slices.Sort(out)
	return out
}

func (c *typedColumn[T]) size() int { return len(c.cells) }

// Store is the component store. It owns every component value; callers borrow them through Get/GetMut or the
// closure helpers View/Update. A Store is driven by a single simulation goroutine; only the per-component borrow
// flags are atomic.
type Store struct {
	entities []entitySlot
	free     []uint32
	alive    int

	columns []column
	byName  map[string]ComponentID
	byType  map[reflect.Type]ComponentID
}

func NewStore() *Store {
	return &Store{
		byName: make(map[string]ComponentID),
		byType: make(map[reflect.Type]ComponentID),
	}
}

// RegisterComponent registers component type T. Registering the same type twice returns the existing id; a
// different type claiming an already registered name fails.
func RegisterComponent[T Component](s *Store) (ComponentID, error) {
	var zero T
	typ := reflect.TypeOf(zero)
	if cid, ok := s.byType[typ]; ok {
		return cid, nil
	}
	name := zero.Name()
	if _, ok := s.byName[name]; ok {
		return 0, eris.Wrapf(ErrComponentAlreadyRegistered, "component %q", name)
	}
	cid := ComponentID(len(s.columns))
	s.columns = append(s.columns, &typedColumn[T]{compName: name, cells: make(map[uint32]*cell[T])})
	s.byName[name] = cid
	s.byType[typ] = cid
	return cid, nil
}

func MustRegisterComponent[T Component](s *Store) ComponentID {
	cid, err := RegisterComponent[T](s)
	if err != nil {
		panic(err)
	}
	return cid
}

// ComponentNames returns the registered component names in registration order.
func (s *Store) ComponentNames() []string {
	names := make([]string, len(s.columns))
	for i, col := range s.columns {
		names[i] = col.name()
	}
	return names
}

func (s *Store) IsRegistered(name string) bool {
	_, ok := s.byName[name]
	return ok
}

func columnFor[T Component](s *Store) (ComponentID, *typedColumn[T], error) {
	var zero T
	cid, ok := s.byType[reflect.TypeOf(zero)]
	if !ok {
		return 0, nil, eris.Wrapf(ErrComponentNotRegistered, "component %q", zero.Name())
	}
	return cid, s.columns[cid].(*typedColumn[T]), nil
}

// Create allocates a new entity with no components.
func (s *Store) Create() EntityID {
	s.alive++
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		slot := &s.entities[idx]
		slot.alive = true
		return newEntityID(idx, slot.generation)
	}
	idx := uint32(len(s.entities))
	s.entities = append(s.entities, entitySlot{generation: 1, alive: true})
	return newEntityID(idx, 1)
}

// Alive reports whether id refers to an existing entity.
func (s *Store) Alive(id EntityID) bool {
	_, err := s.slot(id)
	return err == nil
}

func (s *Store) slot(id EntityID) (*entitySlot, error) {
	idx := id.index()
	if int(idx) >= len(s.entities) {
		return nil, eris.Wrapf(ErrNoSuchEntity, "entity %s", id)
	}
	slot := &s.entities[idx]
	if !slot.alive || slot.generation != id.generation() {
		return nil, eris.Wrapf(ErrNoSuchEntity, "entity %s", id)
	}
	return slot, nil
}

// Destroy removes every component of the entity and invalidates the handle. Destroying an already destroyed entity
// returns ErrNoSuchEntity and changes nothing. An entity with an outstanding borrow cannot be destroyed.
func (s *Store) Destroy(id EntityID) error {
	slot, err := s.slot(id)
	if err != nil {
		return err
	}
	for _, cid := range slot.components {
		if s.columns[cid].borrowed(id.index()) {
			return conflict(s.columns[cid].name(), id)
		}
	}
	for _, cid := range slot.components {
		s.columns[cid].remove(id.index())
	}
	slot.components = slot.components[:0]
	slot.alive = false
	slot.generation++
	s.free = append(s.free, id.index())
	s.alive--
	return nil
}

// Insert attaches components to the entity, replacing any existing instance of the same type.
func (s *Store) Insert(id EntityID, comps ...Component) error {
	slot, err := s.slot(id)
	if err != nil {
		return err
	}
	cids := make([]ComponentID, len(comps))
	for i, comp := range comps {
		cid, ok := s.byType[reflect.TypeOf(comp)]
		if !ok {
			return eris.Wrapf(ErrComponentNotRegistered, "component %q", comp.Name())
		}
		if s.columns[cid].borrowed(id.index()) {
			return conflict(comp.Name(), id)
		}
		cids[i] = cid
	}
	for i, comp := range comps {
		s.columns[cids[i]].setAny(id.index(), comp)
		slot.add(cids[i])
	}
	return nil
}

// Set attaches or replaces a single typed component.
func Set[T Component](s *Store, id EntityID, v T) error {
	slot, err := s.slot(id)
	if err != nil {
		return err
	}
	cid, col, err := columnFor[T](s)
	if err != nil {
		return err
	}
	if col.borrowed(id.index()) {
		return conflict(v.Name(), id)
	}
	col.set(id.index(), v)
	slot.add(cid)
	return nil
}

// Remove detaches component T from the entity.
func Remove[T Component](s *Store, id EntityID) error {
	slot, err := s.slot(id)
	if err != nil {
		return err
	}
	cid, col, err := columnFor[T](s)
	if err != nil {
		return err
	}
	if !col.has(id.index()) {
		return eris.Wrapf(ErrComponentMissing, "component %q on entity %s", col.name(), id)
	}
	if col.borrowed(id.index()) {
		return conflict(col.name(), id)
	}
	col.remove(id.index())
	slot.remove(cid)
	return nil
}

func Has[T Component](s *Store, id EntityID) bool {
	if _, err := s.slot(id); err != nil {
		return false
	}
	_, col, err := columnFor[T](s)
	return err == nil && col.has(id.index())
}

func lookup[T Component](s *Store, id EntityID) (*cell[T], string, error) {
	if _, err := s.slot(id); err != nil {
		return nil, "", err
	}
	_, col, err := columnFor[T](s)
	if err != nil {
		return nil, "", err
	}
	cl, ok := col.cells[id.index()]
	if !ok {
		return nil, "", eris.Wrapf(ErrComponentMissing, "component %q on entity %s", col.name(), id)
	}
	return cl, col.name(), nil
}

// Get takes a shared borrow of component T on the entity.
func Get[T Component](s *Store, id EntityID) (*Ref[T], error) {
	cl, name, err := lookup[T](s, id)
	if err != nil {
		return nil, err
	}
	if !cl.acquireShared() {
		return nil, conflict(name, id)
	}
	return &Ref[T]{c: cl}, nil
}

// GetMut takes an exclusive borrow of component T on the entity.
func GetMut[T Component](s *Store, id EntityID) (*RefMut[T], error) {
	cl, name, err := lookup[T](s, id)
	if err != nil {
		return nil, err
	}
	if !cl.acquireExclusive() {
		return nil, conflict(name, id)
	}
	return &RefMut[T]{c: cl}, nil
}

// View runs fn with a copy of component T under a shared borrow.
func View[T Component](s *Store, id EntityID, fn func(T) error) error {
	ref, err := Get[T](s, id)
	if err != nil {
		return err
	}
	defer ref.Release()
	return fn(ref.Value())
}

// Update runs fn with write access to component T under an exclusive borrow.
func Update[T Component](s *Store, id EntityID, fn func(*T) error) error {
	ref, err := GetMut[T](s, id)
	if err != nil {
		return err
	}
	defer ref.Release()
	return fn(ref.Ptr())
}

// Read returns a copy of component T.
func Read[T Component](s *Store, id EntityID) (T, error) {
	var out T
	err := View[T](s, id, func(v T) error {
		out = v
		return nil
	})
	return out, err
}

// ComponentsOf returns the names of the components attached to the entity.
func (s *Store) ComponentsOf(id EntityID) ([]string, error) {
	slot, err := s.slot(id)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(slot.components))
	for i, cid := range slot.components {
		names[i] = s.columns[cid].name()
	}
	return names, nil
}

// Snapshot returns copies of every component attached to the entity.
func (s *Store) Snapshot(id EntityID) ([]Component, error) {
	slot, err := s.slot(id)
	if err != nil {
		return nil, err
	}
	out := make([]Component, 0, len(slot.components))
	for _, cid := range slot.components {
		if v, ok := s.columns[cid].getAny(id.index()); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// Len returns the number of live entities.
func (s *Store) Len() int {
	return s.alive
}

// Entities returns every live entity in arena order.
func (s *Store) Entities() []EntityID {
	out := make([]EntityID, 0, s.alive)
	for i := range s.entities {
		if s.entities[i].alive {
			out = append(out, newEntityID(uint32(i), s.entities[i].generation))
		}
	}
	return out
}

// Search returns every entity whose component set matches f, in arena order.
func (s *Store) Search(f filter.ComponentFilter) []EntityID {
	var out []EntityID
	for _, id := range s.Entities() {
		names, _ := s.ComponentsOf(id)
		if f.MatchesComponents(names) {
			out = append(out, id)
		}
	}
	return out
}

func (s *Store) idAt(idx uint32) (EntityID, bool) {
	if int(idx) >= len(s.entities) || !s.entities[idx].alive {
		return 0, false
	}
	return newEntityID(idx, s.entities[idx].generation), true
}
