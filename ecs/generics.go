package ecs

import "github.com/milk9111/robotmasters/ecs/component"

// Kind is any component kind, used where the value type does not matter.
type Kind interface {
	ID() component.ComponentID
}

func setFor[T any](w *World, kind component.ComponentKind[T], create bool) *SparseSet[T] {
	if w == nil || !kind.Valid() {
		return nil
	}
	if s, ok := w.stores[kind.ID()]; ok {
		return s.(*SparseSet[T])
	}
	if !create {
		return nil
	}
	if w.stores == nil {
		w.stores = make(map[component.ComponentID]store)
	}
	s := newSparseSet[T]()
	w.stores[kind.ID()] = s
	return s
}

// Add attaches value to e, replacing any existing component of the kind.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !w.IsAlive(e) {
		return component.ErrEntityNotAlive
	}
	setFor(w, kind, true).set(e, value)
	return nil
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	s := setFor(w, kind, false)
	return s != nil && s.remove(e)
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	s := setFor(w, kind, false)
	return s != nil && s.has(e)
}

// Get returns the stored component pointer; mutations are visible to
// every later reader.
func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	s := setFor(w, kind, false)
	if s == nil {
		return nil, false
	}
	return s.get(e)
}

// Query returns the entities holding every listed kind.
func Query(w *World, kinds ...Kind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	stores := make([]store, 0, len(kinds))
	for _, k := range kinds {
		s := w.store(k.ID())
		if s == nil {
			return nil
		}
		stores = append(stores, s)
	}
	// iterate smallest set
	smallest := 0
	for i, s := range stores {
		if s.len() < stores[smallest].len() {
			smallest = i
		}
	}
	var out []Entity
	for _, e := range stores[smallest].entities() {
		match := true
		for i, s := range stores {
			if i != smallest && !s.has(e) {
				match = false
				break
			}
		}
		if match {
			out = append(out, e)
		}
	}
	return out
}

// First returns the earliest-added entity holding kind.
func First(w *World, kind Kind) (Entity, bool) {
	s := w.store(kind.ID())
	if s == nil || s.len() == 0 {
		return 0, false
	}
	return s.entities()[0], true
}

// ForEach visits every entity holding kind. The entity list is
// snapshotted, so fn may add or destroy entities.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	s := setFor(w, kind, false)
	if s == nil {
		return
	}
	for _, e := range append([]Entity(nil), s.entities()...) {
		if v, ok := s.get(e); ok {
			fn(e, v)
		}
	}
}

func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	sa, sb := setFor(w, ka, false), setFor(w, kb, false)
	if sa == nil || sb == nil {
		return
	}
	for _, e := range Query(w, ka, kb) {
		a, okA := sa.get(e)
		b, okB := sb.get(e)
		if okA && okB {
			fn(e, a, b)
		}
	}
}

func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	sa, sb, sc := setFor(w, ka, false), setFor(w, kb, false), setFor(w, kc, false)
	if sa == nil || sb == nil || sc == nil {
		return
	}
	for _, e := range Query(w, ka, kb, kc) {
		a, okA := sa.get(e)
		b, okB := sb.get(e)
		c, okC := sc.get(e)
		if okA && okB && okC {
			fn(e, a, b, c)
		}
	}
}
