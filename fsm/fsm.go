// Package fsm implements a small named-state machine with ordered guarded
// transitions. Transitions out of the current state are scanned in
// declaration order and the first one whose predicate holds fires.
package fsm

import (
	"errors"
	"fmt"
)

var (
	ErrNoInitialState = errors.New("fsm: initial state not set")
	ErrUnknownState   = errors.New("fsm: unknown state")
	ErrDuplicateState = errors.New("fsm: duplicate state")
	ErrNilPredicate   = errors.New("fsm: nil predicate")
)

// Predicate guards a transition. Predicates must not mutate the state they read.
type Predicate func() bool

// OnChange is invoked once per fired transition, after the current state
// pointer moved.
type OnChange[S comparable] func(current, previous S)

type transition[S comparable] struct {
	from  S
	to    S
	guard Predicate
}

// Builder accumulates states and transitions before producing a Machine.
type Builder[S comparable] struct {
	states      map[S]any
	order       []S
	initial     S
	hasInitial  bool
	transitions []transition[S]
	onChange    OnChange[S]
	triggerSame bool
	errs        []error
}

func NewBuilder[S comparable]() *Builder[S] {
	return &Builder[S]{
		states:      make(map[S]any),
		triggerSame: true,
	}
}

// State registers a state and its payload.
func (b *Builder[S]) State(s S, payload any) *Builder[S] {
	if _, ok := b.states[s]; ok {
		b.errs = append(b.errs, fmt.Errorf("%w: %v", ErrDuplicateState, s))
		return b
	}
	b.states[s] = payload
	b.order = append(b.order, s)
	return b
}

func (b *Builder[S]) InitialState(s S) *Builder[S] {
	b.initial = s
	b.hasInitial = true
	return b
}

// Transition appends a guarded transition. Several transitions may share a
// source state; they are evaluated in the order they were added.
func (b *Builder[S]) Transition(from, to S, guard Predicate) *Builder[S] {
	b.transitions = append(b.transitions, transition[S]{from: from, to: to, guard: guard})
	return b
}

func (b *Builder[S]) OnChangeState(fn OnChange[S]) *Builder[S] {
	b.onChange = fn
	return b
}

// TriggerChangeWhenSameElement controls self-transitions. When disabled a
// transition whose target equals the current state is skipped.
func (b *Builder[S]) TriggerChangeWhenSameElement(trigger bool) *Builder[S] {
	b.triggerSame = trigger
	return b
}

func (b *Builder[S]) Build() (*Machine[S], error) {
	errs := append([]error(nil), b.errs...)
	if !b.hasInitial {
		errs = append(errs, ErrNoInitialState)
	} else if _, ok := b.states[b.initial]; !ok {
		errs = append(errs, fmt.Errorf("%w: initial %v", ErrUnknownState, b.initial))
	}

	byFrom := make(map[S][]transition[S], len(b.states))
	for i, t := range b.transitions {
		if _, ok := b.states[t.from]; !ok {
			errs = append(errs, fmt.Errorf("%w: transition %d from %v", ErrUnknownState, i, t.from))
		}
		if _, ok := b.states[t.to]; !ok {
			errs = append(errs, fmt.Errorf("%w: transition %d to %v", ErrUnknownState, i, t.to))
		}
		if t.guard == nil {
			errs = append(errs, fmt.Errorf("%w: transition %d %v -> %v", ErrNilPredicate, i, t.from, t.to))
		}
		byFrom[t.from] = append(byFrom[t.from], t)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	states := make(map[S]any, len(b.states))
	for k, v := range b.states {
		states[k] = v
	}
	order := append([]S(nil), b.order...)

	return &Machine[S]{
		states:      states,
		order:       order,
		initial:     b.initial,
		current:     b.initial,
		byFrom:      byFrom,
		onChange:    b.onChange,
		triggerSame: b.triggerSame,
	}, nil
}

// Machine is a built state machine. It is not safe for concurrent use.
type Machine[S comparable] struct {
	states      map[S]any
	order       []S
	initial     S
	current     S
	previous    S
	hasPrevious bool
	byFrom      map[S][]transition[S]
	onChange    OnChange[S]
	triggerSame bool
	changing    bool
}

func (m *Machine[S]) Current() S {
	return m.current
}

// Previous returns the state before the last fired transition. ok is false
// until at least one transition has fired since construction or Reset.
func (m *Machine[S]) Previous() (S, bool) {
	return m.previous, m.hasPrevious
}

func (m *Machine[S]) Initial() S {
	return m.initial
}

func (m *Machine[S]) Payload(s S) (any, bool) {
	p, ok := m.states[s]
	return p, ok
}

func (m *Machine[S]) CurrentPayload() any {
	return m.states[m.current]
}

// States returns the registered states in registration order.
func (m *Machine[S]) States() []S {
	return append([]S(nil), m.order...)
}

// Next evaluates transitions from the current state and fires the first
// whose predicate holds. It reports whether a transition fired. Calls made
// from inside the change hook are ignored.
func (m *Machine[S]) Next() bool {
	if m.changing {
		return false
	}
	for _, t := range m.byFrom[m.current] {
		if t.to == m.current && !m.triggerSame {
			continue
		}
		if !t.guard() {
			continue
		}
		m.previous = m.current
		m.hasPrevious = true
		m.current = t.to
		if m.onChange != nil {
			m.changing = true
			m.onChange(m.current, m.previous)
			m.changing = false
		}
		return true
	}
	return false
}

// Reset returns to the initial state and forgets the previous state. The
// change hook is not invoked.
func (m *Machine[S]) Reset() {
	var zero S
	m.current = m.initial
	m.previous = zero
	m.hasPrevious = false
	m.changing = false
}
