package component

import (
	"sync"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/types"
)

const InventorySize = 36

// Slot is one inventory cell. Its stack is only reachable through With, which holds the slot lock, because a slot
// can be touched by the running system and by a deferred task later in the same tick.
type Slot struct {
	mu    sync.Mutex
	stack types.ItemStack
}

// With runs fn with exclusive access to the slot's stack.
func (s *Slot) With(fn func(stack *types.ItemStack) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.stack)
}

// Stack returns a copy of the slot's stack.
func (s *Slot) Stack() types.ItemStack {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack
}

func (s *Slot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Stack())
}

func (s *Slot) UnmarshalJSON(bz []byte) error {
	return s.With(func(stack *types.ItemStack) error {
		return json.Unmarshal(bz, stack)
	})
}

// Inventory holds slot pointers, so copies of the component share slots.
type Inventory struct {
	Slots []*Slot
	Held  int
}

func (Inventory) Name() string { return "Inventory" }

func NewInventory() Inventory {
	slots := make([]*Slot, InventorySize)
	for i := range slots {
		slots[i] = &Slot{}
	}
	return Inventory{Slots: slots}
}

func (inv Inventory) Slot(i int) (*Slot, error) {
	if i < 0 || i >= len(inv.Slots) {
		return nil, eris.Errorf("slot %d out of range", i)
	}
	return inv.Slots[i], nil
}

// HeldSlot returns the slot selected in the hotbar.
func (inv Inventory) HeldSlot() (*Slot, error) {
	return inv.Slot(inv.Held)
}

// Add merges stack into existing stacks of the same kind first, then into empty slots. It returns what did not fit.
func (inv Inventory) Add(stack types.ItemStack, maxStack uint8) types.ItemStack {
	for pass := 0; pass < 2 && stack.Count > 0; pass++ {
		for _, slot := range inv.Slots {
			_ = slot.With(func(s *types.ItemStack) error {
				switch {
				case pass == 0 && !s.Empty() && s.Key() == stack.Key():
				case pass == 1 && s.Empty():
					*s = types.ItemStack{ID: stack.ID, Meta: stack.Meta}
				default:
					return nil
				}
				moved := min(stack.Count, maxStack-min(s.Count, maxStack))
				s.Count += moved
				stack.Count -= moved
				return nil
			})
			if stack.Count == 0 {
				break
			}
		}
	}
	return stack
}
