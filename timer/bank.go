package timer

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateTimer = errors.New("timer: duplicate timer name")
	ErrEmptyName      = errors.New("timer: empty timer name")
)

// Bank is a set of named timers owned by a single entity.
type Bank struct {
	timers map[string]*Timer
	names  []string
}

func NewBank() *Bank {
	return &Bank{timers: make(map[string]*Timer)}
}

// Add registers a timer under name.
func (b *Bank) Add(name string, t *Timer) error {
	if name == "" {
		return ErrEmptyName
	}
	if b.timers == nil {
		b.timers = make(map[string]*Timer)
	}
	if _, ok := b.timers[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTimer, name)
	}
	if t == nil {
		t = New(0)
	}
	b.timers[name] = t
	b.names = append(b.names, name)
	return nil
}

func (b *Bank) Get(name string) (*Timer, bool) {
	if b == nil {
		return nil, false
	}
	t, ok := b.timers[name]
	return t, ok
}

// Update advances the named timer. It reports false when no such timer exists.
func (b *Bank) Update(name string, delta float64) bool {
	t, ok := b.Get(name)
	if !ok {
		return false
	}
	t.Update(delta)
	return true
}

func (b *Bank) Reset(name string) bool {
	t, ok := b.Get(name)
	if !ok {
		return false
	}
	t.Reset()
	return true
}

// ResetAll restores every timer to its constructed duration with no
// elapsed time and no pending just-finished edge.
func (b *Bank) ResetAll() {
	if b == nil {
		return
	}
	for _, name := range b.names {
		b.timers[name].Restore()
	}
}

// Names returns timer names in registration order.
func (b *Bank) Names() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.names)
}
