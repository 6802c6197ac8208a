package blockshard

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/cql"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/server"
)

// QueryCQL returns every entity matching the cql expression, with its components encoded as JSON.
func (w *World) QueryCQL(text string) ([]server.EntityView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids, err := w.search(text)
	if err != nil {
		return nil, err
	}
	views := make([]server.EntityView, 0, len(ids))
	for _, id := range ids {
		comps, err := w.store.Snapshot(id)
		if err != nil {
			return nil, err
		}
		view := server.EntityView{ID: id, Components: make(map[string]json.RawMessage, len(comps))}
		for _, comp := range comps {
			md, err := w.catalog.ByName(comp.Name())
			if err != nil {
				return nil, err
			}
			bz, err := md.Encode(comp)
			if err != nil {
				return nil, err
			}
			view.Components[comp.Name()] = bz
		}
		views = append(views, view)
	}
	return views, nil
}

func (w *World) search(text string) ([]ecs.EntityID, error) {
	f, err := cql.Parse(text, w.resolveComponent)
	if err != nil {
		return nil, err
	}
	return w.store.Search(f), nil
}

func (w *World) resolveComponent(name string) (string, error) {
	if !w.store.IsRegistered(name) {
		return "", eris.Wrapf(ecs.ErrComponentNotRegistered, "component %q", name)
	}
	return name, nil
}
