// Package damage resolves how much damage an entity takes from an attacker.
//
// Lookup is by exact attacker tag. A tag with no entry deals no damage;
// entities list such tags under Immune to record that the immunity is
// intended.
package damage

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrMissingEntry     = errors.New("damage: missing entry for required attacker")
	ErrConflictingEntry = errors.New("damage: attacker both damages and is immune")
)

// Tag identifies a concrete attacker type, e.g. "bullet" or "charged_shot".
type Tag string

// Attacker is the instance that caused a hit.
type Attacker interface {
	DamageTag() Tag
}

// Flagger exposes boolean runtime attributes of an attacker, such as
// whether a shot was fully charged.
type Flagger interface {
	Flag(name string) bool
}

// Func computes damage from the attacker instance at the moment of the hit.
type Func func(a Attacker) int

// Fixed returns a Func that always deals amount.
func Fixed(amount int) Func {
	return func(Attacker) int { return amount }
}

// ByFlag deals then when the attacker reports flag, otherwise otherwise.
// The flag is read on every call.
func ByFlag(flag string, then, otherwise int) Func {
	return func(a Attacker) int {
		if f, ok := a.(Flagger); ok && f.Flag(flag) {
			return then
		}
		return otherwise
	}
}

// Table maps attacker tags to damage functions.
type Table struct {
	entries map[Tag]Func
	immune  map[Tag]struct{}
}

func NewTable() *Table {
	return &Table{
		entries: make(map[Tag]Func),
		immune:  make(map[Tag]struct{}),
	}
}

// Set registers a fixed amount for tag.
func (t *Table) Set(tag Tag, amount int) *Table {
	return t.SetFunc(tag, Fixed(amount))
}

func (t *Table) SetFunc(tag Tag, fn Func) *Table {
	if fn == nil {
		delete(t.entries, tag)
		return t
	}
	t.entries[tag] = fn
	return t
}

// Immune records tags the entity deliberately takes no damage from.
func (t *Table) Immune(tags ...Tag) *Table {
	for _, tag := range tags {
		t.immune[tag] = struct{}{}
	}
	return t
}

// Negotiate returns the damage attacker deals. Unknown tags and
// non-positive results yield 0.
func (t *Table) Negotiate(tag Tag, attacker Attacker) int {
	if t == nil {
		return 0
	}
	fn, ok := t.entries[tag]
	if !ok {
		return 0
	}
	amount := fn(attacker)
	if amount < 0 {
		return 0
	}
	return amount
}

func (t *Table) Has(tag Tag) bool {
	if t == nil {
		return false
	}
	_, ok := t.entries[tag]
	return ok
}

func (t *Table) IsImmune(tag Tag) bool {
	if t == nil {
		return false
	}
	_, ok := t.immune[tag]
	return ok
}

// Damageable reports whether any attacker can hurt the entity.
func (t *Table) Damageable() bool {
	return t != nil && len(t.entries) > 0
}

// Tags returns the tags with entries, sorted.
func (t *Table) Tags() []Tag {
	if t == nil {
		return nil
	}
	out := make([]Tag, 0, len(t.entries))
	for tag := range t.entries {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks a damageable table covers every required tag, either
// with an entry or an explicit immunity. Tables with no entries at all
// are treated as fully invulnerable and pass.
func (t *Table) Validate(required []Tag) error {
	if t == nil {
		return nil
	}
	var errs []error
	for tag := range t.immune {
		if _, ok := t.entries[tag]; ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrConflictingEntry, tag))
		}
	}
	if t.Damageable() {
		for _, tag := range required {
			if t.Has(tag) || t.IsImmune(tag) {
				continue
			}
			errs = append(errs, fmt.Errorf("%w: %q", ErrMissingEntry, tag))
		}
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errors.Join(errs...)
}
