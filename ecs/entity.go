package ecs

import (
	"fmt"
	"slices"
)

// EntityID is an opaque entity handle: the low 32 bits index the entity arena, the high 32 bits carry the generation
// of that slot. A destroyed entity's slot is reused with a bumped generation, so stale handles never resolve.
type EntityID uint64

func newEntityID(index, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) index() uint32 {
	return uint32(id)
}

func (id EntityID) generation() uint32 {
	return uint32(id >> 32)
}

func (id EntityID) String() string {
	return fmt.Sprintf("%d#%d", id.index(), id.generation())
}

// entitySlot is one arena entry. Generations start at 1 so the zero EntityID is never valid.
type entitySlot struct {
	generation uint32
	alive      bool
	components []ComponentID
}

func (e *entitySlot) has(cid ComponentID) bool {
	_, found := slices.BinarySearch(e.components, cid)
	return found
}

func (e *entitySlot) add(cid ComponentID) {
	i, found := slices.BinarySearch(e.components, cid)
	if !found {
		e.components = slices.Insert(e.components, i, cid)
	}
}

func (e *entitySlot) remove(cid ComponentID) {
	if i, found := slices.BinarySearch(e.components, cid); found {
		e.components = slices.Delete(e.components, i, i+1)
	}
}
