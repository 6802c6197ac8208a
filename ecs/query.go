package ecs

import (
	"github.com/rotisserie/eris"
)

// Queries visit every entity owning all listed component types. Each call to Each/EachMut is a fresh pass over the
// store in ascending entity index order. The visited components stay borrowed while the callback runs, so the
// callback must not take a conflicting borrow on them. Structural changes (Create, Destroy, Insert) made while a
// pass is running are not observed by that pass; collect handles first with Collect when a pass needs to mutate the
// entity set.

// candidates returns the indices of the smallest column, the only entities that can match.
func candidates(cols ...column) []uint32 {
	smallest := cols[0]
	for _, c := range cols[1:] {
		if c.size() < smallest.size() {
			smallest = c
		}
	}
	return smallest.indices()
}

func hasAll(idx uint32, cols ...column) bool {
	for _, c := range cols {
		if !c.has(idx) {
			return false
		}
	}
	return true
}

type Query1[A Component] struct {
	s *Store
	a *typedColumn[A]
}

func NewQuery1[A Component](s *Store) (*Query1[A], error) {
	_, a, err := columnFor[A](s)
	if err != nil {
		return nil, err
	}
	return &Query1[A]{s: s, a: a}, nil
}

func (q *Query1[A]) visit(fn func(EntityID, uint32) bool) {
	for _, idx := range candidates(q.a) {
		if !q.a.has(idx) {
			continue
		}
		id, ok := q.s.idAt(idx)
		if !ok {
			continue
		}
		if !fn(id, idx) {
			return
		}
	}
}

// Each calls fn with a copy of A for every matching entity until fn returns false.
func (q *Query1[A]) Each(fn func(EntityID, A) bool) error {
	var err error
	q.visit(func(id EntityID, idx uint32) bool {
		ca := q.a.cells[idx]
		if !ca.acquireShared() {
			err = conflict(q.a.name(), id)
			return false
		}
		defer ca.borrow.Add(-1)
		return fn(id, ca.value)
	})
	return err
}

// EachMut calls fn with write access to A for every matching entity until fn returns false.
func (q *Query1[A]) EachMut(fn func(EntityID, *A) bool) error {
	var err error
	q.visit(func(id EntityID, idx uint32) bool {
		ca := q.a.cells[idx]
		if !ca.acquireExclusive() {
			err = conflict(q.a.name(), id)
			return false
		}
		defer ca.borrow.Store(0)
		return fn(id, &ca.value)
	})
	return err
}

func (q *Query1[A]) Collect() []EntityID {
	var out []EntityID
	q.visit(func(id EntityID, _ uint32) bool {
		out = append(out, id)
		return true
	})
	return out
}

func (q *Query1[A]) Count() int {
	return len(q.Collect())
}

type Query2[A, B Component] struct {
	s *Store
	a *typedColumn[A]
	b *typedColumn[B]
}

func NewQuery2[A, B Component](s *Store) (*Query2[A, B], error) {
	_, a, err := columnFor[A](s)
	if err != nil {
		return nil, err
	}
	_, b, err := columnFor[B](s)
	if err != nil {
		return nil, err
	}
	if column(a) == column(b) {
		return nil, eris.New("query lists the same component twice")
	}
	return &Query2[A, B]{s: s, a: a, b: b}, nil
}

func (q *Query2[A, B]) visit(fn func(EntityID, uint32) bool) {
	for _, idx := range candidates(q.a, q.b) {
		if !hasAll(idx, q.a, q.b) {
			continue
		}
		id, ok := q.s.idAt(idx)
		if !ok {
			continue
		}
		if !fn(id, idx) {
			return
		}
	}
}

func (q *Query2[A, B]) Each(fn func(EntityID, A, B) bool) error {
	var err error
	q.visit(func(id EntityID, idx uint32) bool {
		ca, cb := q.a.cells[idx], q.b.cells[idx]
		if !ca.acquireShared() {
			err = conflict(q.a.name(), id)
			return false
		}
		defer ca.borrow.Add(-1)
		if !cb.acquireShared() {
			err = conflict(q.b.name(), id)
			return false
		}
		defer cb.borrow.Add(-1)
		return fn(id, ca.value, cb.value)
	})
	return err
}

func (q *Query2[A, B]) EachMut(fn func(EntityID, *A, *B) bool) error {
	var err error
	q.visit(func(id EntityID, idx uint32) bool {
		ca, cb := q.a.cells[idx], q.b.cells[idx]
		if !ca.acquireExclusive() {
			err = conflict(q.a.name(), id)
			return false
		}
		defer ca.borrow.Store(0)
		if !cb.acquireExclusive() {
			err = conflict(q.b.name(), id)
			return false
		}
		defer cb.borrow.Store(0)
		return fn(id, &ca.value, &cb.value)
	})
	return err
}

func (q *Query2[A, B]) Collect() []EntityID {
	var out []EntityID
	q.visit(func(id EntityID, _ uint32) bool {
		out = append(out, id)
		return true
	})
	return out
}

func (q *Query2[A, B]) Count() int {
	return len(q.Collect())
}

type Query3[A, B, C Component] struct {
	s *Store
	a *typedColumn[A]
	b *typedColumn[B]
	c *typedColumn[C]
}

func NewQuery3[A, B, C Component](s *Store) (*Query3[A, B, C], error) {
	_, a, err := columnFor[A](s)
	if err != nil {
		return nil, err
	}
	_, b, err := columnFor[B](s)
	if err != nil {
		return nil, err
	}
	_, c, err := columnFor[C](s)
	if err != nil {
		return nil, err
	}
	if column(a) == column(b) || column(a) == column(c) || column(b) == column(c) {
		return nil, eris.New("query lists the same component twice")
	}
	return &Query3[A, B, C]{s: s, a: a, b: b, c: c}, nil
}

func (q *Query3[A, B, C]) visit(fn func(EntityID, uint32) bool) {
	for _, idx := range candidates(q.a, q.b, q.c) {
		if !hasAll(idx, q.a, q.b, q.c) {
			continue
		}
		id, ok := q.s.idAt(idx)
		if !ok {
			continue
		}
		if !fn(id, idx) {
			return
		}
	}
}

func (q *Query3[A, B, C]) Each(fn func(EntityID, A, B, C) bool) error {
	var err error
	q.visit(func(id EntityID, idx uint32) bool {
		ca, cb, cc := q.a.cells[idx], q.b.cells[idx], q.c.cells[idx]
		if !ca.acquireShared() {
			err = conflict(q.a.name(), id)
			return false
		}
		defer ca.borrow.Add(-1)
		if !cb.acquireShared() {
			err = conflict(q.b.name(), id)
			return false
		}
		defer cb.borrow.Add(-1)
		if !cc.acquireShared() {
			err = conflict(q.c.name(), id)
			return false
		}
		defer cc.borrow.Add(-1)
		return fn(id, ca.value, cb.value, cc.value)
	})
	return err
}

func (q *Query3[A, B, C]) Collect() []EntityID {
	var out []EntityID
	q.visit(func(id EntityID, _ uint32) bool {
		out = append(out, id)
		return true
	})
	return out
}

func (q *Query3[A, B, C]) Count() int {
	return len(q.Collect())
}
