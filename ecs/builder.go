package ecs

// Builder accumulates components for an entity that does not exist yet. Persistence loaders fill one in and the
// entity is only created once every loader succeeded.
type Builder struct {
	comps []Component
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends a component. A later component of the same type replaces the earlier one.
func (b *Builder) Add(comps ...Component) *Builder {
	b.comps = append(b.comps, comps...)
	return b
}

// Components returns the components added so far.
func (b *Builder) Components() []Component {
	return b.comps
}

func (b *Builder) Len() int {
	return len(b.comps)
}

// Build creates the entity in s. Nothing is created when any component is not registered.
func (b *Builder) Build(s *Store) (EntityID, error) {
	id := s.Create()
	if err := s.Insert(id, b.comps...); err != nil {
		_ = s.Destroy(id)
		return 0, err
	}
	return id, nil
}
