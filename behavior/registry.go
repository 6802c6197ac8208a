package behavior

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/types"
)

var (
	ErrNoSuchBehavior    = eris.New("no behavior registered")
	ErrDuplicateBehavior = eris.New("behavior already registered")
	ErrRegistryFrozen    = eris.New("behavior registry is frozen")
)

var _ engine.Behaviors = (*Registry)(nil)

type blockTable [256]Block

type itemTable map[types.ItemKey]Item

// Registry maps block ids and item keys to behaviors. Every registration publishes a new immutable table, so
// lookups never lock. Freeze ends the registration window before the first tick.
type Registry struct {
	mu     sync.Mutex
	frozen atomic.Bool
	blocks atomic.Pointer[blockTable]
	items  atomic.Pointer[itemTable]
}

func NewRegistry() *Registry {
	r := &Registry{}
	r.blocks.Store(&blockTable{})
	r.items.Store(&itemTable{})
	return r
}

// RegisterBlock registers blocks. Nothing is registered if any id is taken.
func (r *Registry) RegisterBlock(blocks ...Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return ErrRegistryFrozen
	}
	next := *r.blocks.Load()
	for _, b := range blocks {
		if next[b.ID()] != nil {
			return eris.Wrapf(ErrDuplicateBehavior, "block %d", b.ID())
		}
		next[b.ID()] = b
	}
	r.blocks.Store(&next)
	return nil
}

// RegisterItem registers items. Nothing is registered if any key is taken.
func (r *Registry) RegisterItem(items ...Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return ErrRegistryFrozen
	}
	next := maps.Clone(*r.items.Load())
	for _, it := range items {
		if _, ok := next[it.Key()]; ok {
			return eris.Wrapf(ErrDuplicateBehavior, "item %s", it.Key())
		}
		next[it.Key()] = it
	}
	r.items.Store(&next)
	return nil
}

// Freeze closes registration.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Block returns the behavior for id, or Inert when none is registered.
func (r *Registry) Block(id types.BlockID) Block {
	if b := r.blocks.Load()[id]; b != nil {
		return b
	}
	return Inert{BlockID: id}
}

// LookupBlock is the strict form of Block.
func (r *Registry) LookupBlock(id types.BlockID) (Block, error) {
	if b := r.blocks.Load()[id]; b != nil {
		return b, nil
	}
	return nil, eris.Wrapf(ErrNoSuchBehavior, "block %d", id)
}

// Item resolves key exactly, then by id with any meta, then falls back to InertItem.
func (r *Registry) Item(key types.ItemKey) Item {
	if it, err := r.LookupItem(key); err == nil {
		return it
	}
	return InertItem{ItemKey: key}
}

func (r *Registry) LookupItem(key types.ItemKey) (Item, error) {
	items := *r.items.Load()
	if it, ok := items[key]; ok {
		return it, nil
	}
	if it, ok := items[types.Key(key.ID, types.AnyMeta)]; ok {
		return it, nil
	}
	return nil, eris.Wrapf(ErrNoSuchBehavior, "item %s", key)
}

func (r *Registry) BlockKind(id types.BlockID) engine.BlockKind {
	return r.Block(id)
}

func (r *Registry) ItemKind(key types.ItemKey) engine.ItemKind {
	return r.Item(key)
}

// Blocks returns the registered blocks in id order.
func (r *Registry) Blocks() []Block {
	var out []Block
	for _, b := range r.blocks.Load() {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}

// Items returns the registered items ordered by key.
func (r *Registry) Items() []Item {
	items := *r.items.Load()
	keys := make([]types.ItemKey, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b types.ItemKey) int {
		if a.ID != b.ID {
			return int(a.ID) - int(b.ID)
		}
		return int(a.Meta) - int(b.Meta)
	})
	out := make([]Item, len(keys))
	for i, k := range keys {
		out[i] = items[k]
	}
	return out
}
