package ecs

import (
	"sync/atomic"

	"github.com/rotisserie/eris"
)

const exclusive = -1

// cell owns one component value. borrow is 0 when free, n>0 while n shared borrows are outstanding and -1 while an
// exclusive borrow is outstanding.
type cell[T any] struct {
	value  T
	borrow atomic.Int32
}

func (c *cell[T]) acquireShared() bool {
	for {
		b := c.borrow.Load()
		if b == exclusive {
			return false
		}
		if c.borrow.CompareAndSwap(b, b+1) {
			return true
		}
	}
}

func (c *cell[T]) acquireExclusive() bool {
	return c.borrow.CompareAndSwap(0, exclusive)
}

func (c *cell[T]) borrowed() bool {
	return c.borrow.Load() != 0
}

// Ref is a shared borrow of a component. Call Release when done, usually with defer.
type Ref[T any] struct {
	c        *cell[T]
	released bool
}

// Value returns a copy of the borrowed component.
func (r *Ref[T]) Value() T {
	if r.released {
		panic("ecs: use of released component borrow")
	}
	return r.c.value
}

// Release ends the borrow. Releasing twice is a no-op.
func (r *Ref[T]) Release() {
	if r == nil || r.released {
		return
	}
	r.released = true
	r.c.borrow.Add(-1)
}

// RefMut is an exclusive borrow of a component.
type RefMut[T any] struct {
	c        *cell[T]
	released bool
}

// Ptr gives write access to the component for the lifetime of the borrow.
func (r *RefMut[T]) Ptr() *T {
	if r.released {
		panic("ecs: use of released component borrow")
	}
	return &r.c.value
}

func (r *RefMut[T]) Value() T {
	return *r.Ptr()
}

func (r *RefMut[T]) Set(v T) {
	*r.Ptr() = v
}

func (r *RefMut[T]) Release() {
	if r == nil || r.released {
		return
	}
	r.released = true
	r.c.borrow.Store(0)
}

func conflict(name string, id EntityID) error {
	return eris.Wrapf(ErrBorrowConflict, "component %q on entity %s", name, id)
}
