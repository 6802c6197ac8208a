package persistence

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/codec"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/ecs"
)

// componentsKey holds the generic per-component encoding written by ComponentSaver.
const componentsKey = "components"

// ComponentSaver saves the listed components of an entity through their catalog codecs. Components the entity
// does not have are left out. Identity and BlockEntity are written by Hooks itself and are never listed.
func ComponentSaver(catalog *component.Catalog, names ...string) Saver {
	return func(s *ecs.Store, id ecs.EntityID) (Compound, error) {
		comps, err := s.Snapshot(id)
		if err != nil {
			return nil, err
		}
		out := Compound{}
		for _, comp := range comps {
			if !contains(names, comp.Name()) {
				continue
			}
			md, err := catalog.ByName(comp.Name())
			if err != nil {
				return nil, err
			}
			bz, err := md.Encode(comp)
			if err != nil {
				return nil, err
			}
			nested, err := DecodeCompound(bz)
			if err != nil {
				return nil, err
			}
			out[comp.Name()] = nested
		}
		return Compound{componentsKey: out}, nil
	}
}

// ComponentLoader is the inverse of ComponentSaver. Unknown component names fail the load.
func ComponentLoader(catalog *component.Catalog) Loader {
	return func(c Compound, b *ecs.Builder) error {
		comps, err := c.Compound(componentsKey)
		if err != nil {
			return err
		}
		for name, raw := range comps {
			md, err := catalog.ByName(name)
			if err != nil {
				return err
			}
			bz, err := codec.Encode(raw)
			if err != nil {
				return err
			}
			comp, err := md.Decode(bz)
			if err != nil {
				return eris.Wrapf(err, "component %q", name)
			}
			b.Add(comp)
		}
		return nil
	}
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
