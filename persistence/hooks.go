package persistence

import (
	"slices"

	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/ecs"
)

var (
	ErrDuplicateTag = eris.New("persistence tag already registered")
	ErrUnknownTag   = eris.New("persistence tag not registered")
	ErrMissingTag   = eris.New("compound has no persistence tag")
)

// Loader populates a builder from a compound. The entity is only created when the loader succeeds.
type Loader func(c Compound, b *ecs.Builder) error

// Saver flattens an entity into a compound. The tag, uuid and block position keys are filled in by Hooks.
type Saver func(s *ecs.Store, id ecs.EntityID) (Compound, error)

type hook struct {
	load Loader
	save Saver
}

// Hooks is the save/load callback registry, keyed by persistence tag. Entities and block entities share one tag
// namespace; every saved entity carries a component.Identity naming its tag.
type Hooks struct {
	hooks map[string]hook
}

func NewHooks() *Hooks {
	return &Hooks{hooks: make(map[string]hook)}
}

// Register adds the loader and saver for tag. A tag can only be registered once.
func (h *Hooks) Register(tag string, load Loader, save Saver) error {
	if tag == "" {
		return eris.Wrap(ErrMissingTag, "cannot register an empty tag")
	}
	if _, ok := h.hooks[tag]; ok {
		return eris.Wrapf(ErrDuplicateTag, "tag %q", tag)
	}
	h.hooks[tag] = hook{load: load, save: save}
	return nil
}

// Tags returns the registered tags, sorted.
func (h *Hooks) Tags() []string {
	tags := make([]string, 0, len(h.hooks))
	for tag := range h.hooks {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

func (h *Hooks) lookup(tag string) (hook, error) {
	if tag == "" {
		return hook{}, ErrMissingTag
	}
	hk, ok := h.hooks[tag]
	if !ok {
		return hook{}, eris.Wrapf(ErrUnknownTag, "tag %q", tag)
	}
	return hk, nil
}

// Load reconstructs one entity. The entity gets an Identity restored from the compound's uuid (or a fresh one),
// and a BlockEntity component when the compound carries a position.
func (h *Hooks) Load(s *ecs.Store, c Compound) (ecs.EntityID, error) {
	hk, err := h.lookup(c.Tag())
	if err != nil {
		return 0, err
	}
	b := ecs.NewBuilder()
	if err := hk.load(c, b); err != nil {
		return 0, eris.Wrapf(err, "failed to load %q", c.Tag())
	}
	ident := component.NewIdentity(c.Tag())
	if raw, err := c.String("uuid"); err == nil {
		if err := ident.UUID.UnmarshalText([]byte(raw)); err != nil {
			return 0, eris.Wrapf(err, "bad uuid on %q", c.Tag())
		}
	}
	b.Add(ident)
	if c.Has("x") {
		pos, err := c.Pos()
		if err != nil {
			return 0, eris.Wrapf(err, "bad block position on %q", c.Tag())
		}
		b.Add(component.BlockEntity{Pos: pos})
	}
	return b.Build(s)
}

// Save flattens one entity through the saver registered for its Identity tag.
func (h *Hooks) Save(s *ecs.Store, id ecs.EntityID) (Compound, error) {
	ident, err := ecs.Read[component.Identity](s, id)
	if err != nil {
		return nil, eris.Wrapf(ErrMissingTag, "entity %s: %v", id, err)
	}
	hk, err := h.lookup(ident.Tag)
	if err != nil {
		return nil, err
	}
	c, err := hk.save(s, id)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to save %q", ident.Tag)
	}
	if c == nil {
		c = Compound{}
	}
	c[TagKey] = ident.Tag
	c["uuid"] = ident.UUID.String()
	if be, err := ecs.Read[component.BlockEntity](s, id); err == nil {
		c.SetPos(be.Pos)
	}
	return c, nil
}

// SaveAll saves every entity that has an Identity. Entities that fail to save are reported and skipped.
func (h *Hooks) SaveAll(s *ecs.Store) ([]Compound, []error) {
	q, err := ecs.NewQuery1[component.Identity](s)
	if err != nil {
		return nil, []error{err}
	}
	var (
		out  []Compound
		errs []error
	)
	for _, id := range q.Collect() {
		c, err := h.Save(s, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, c)
	}
	return out, errs
}
