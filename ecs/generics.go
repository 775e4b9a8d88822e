package ecs

import "github.com/milk9111/quadcollide/ecs/component"

func storeFor[T any](w *World, kind component.ComponentKind[T], create bool) *sparseSet[T] {
	if w == nil || !kind.Valid() {
		return nil
	}
	if s, ok := w.stores[kind.ID()]; ok {
		typed, _ := s.(*sparseSet[T])
		return typed
	}
	if !create {
		return nil
	}
	if w.stores == nil {
		w.stores = make(map[component.ComponentID]store)
	}
	s := &sparseSet[T]{}
	w.stores[kind.ID()] = s
	return s
}

// Add sets the component of kind on e, replacing any previous value.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !IsAlive(w, e) {
		return component.ErrEntityNotAlive
	}
	storeFor(w, kind, true).set(e.id(), value)
	return nil
}

// Remove drops the component of kind from e. It reports false when e did not
// have one.
func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	s := storeFor(w, kind, false)
	if s == nil {
		return false
	}
	return s.remove(e.id())
}

// Has reports whether e has a component of kind.
func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	_, ok := Get(w, e, kind)
	return ok
}

// Get returns e's component of kind. The pointer stays valid while the
// component is attached.
func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !IsAlive(w, e) {
		return nil, false
	}
	s := storeFor(w, kind, false)
	if s == nil {
		return nil, false
	}
	return s.get(e.id())
}

// First returns some live entity that has a component of kind.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	s := storeFor(w, kind, false)
	if s == nil || s.len() == 0 {
		return 0, false
	}
	return w.entityFor(s.dense[0]), true
}

// ForEach calls fn for every entity with a component of kind. Entities may be
// destroyed and components removed from inside fn.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	a := storeFor(w, kind, false)
	if a == nil || fn == nil {
		return
	}
	for _, id := range snapshot(a) {
		va, ok := a.get(id)
		if !ok {
			continue
		}
		fn(w.entityFor(id), va)
	}
}

// ForEach2 calls fn for every entity that has both components.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	a, b := storeFor(w, ka, false), storeFor(w, kb, false)
	if a == nil || b == nil || fn == nil {
		return
	}
	for _, id := range snapshot(a, b) {
		va, okA := a.get(id)
		vb, okB := b.get(id)
		if !okA || !okB {
			continue
		}
		fn(w.entityFor(id), va, vb)
	}
}

// ForEach3 calls fn for every entity that has all three components.
func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	a, b, c := storeFor(w, ka, false), storeFor(w, kb, false), storeFor(w, kc, false)
	if a == nil || b == nil || c == nil || fn == nil {
		return
	}
	for _, id := range snapshot(a, b, c) {
		va, okA := a.get(id)
		vb, okB := b.get(id)
		vc, okC := c.get(id)
		if !okA || !okB || !okC {
			continue
		}
		fn(w.entityFor(id), va, vb, vc)
	}
}

// ForEach4 calls fn for every entity that has all four components.
func ForEach4[A, B, C, D any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], kd component.ComponentKind[D], fn func(Entity, *A, *B, *C, *D)) {
	a, b, c, d := storeFor(w, ka, false), storeFor(w, kb, false), storeFor(w, kc, false), storeFor(w, kd, false)
	if a == nil || b == nil || c == nil || d == nil || fn == nil {
		return
	}
	for _, id := range snapshot(a, b, c, d) {
		va, okA := a.get(id)
		vb, okB := b.get(id)
		vc, okC := c.get(id)
		vd, okD := d.get(id)
		if !okA || !okB || !okC || !okD {
			continue
		}
		fn(w.entityFor(id), va, vb, vc, vd)
	}
}
