package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

const (
	EventHit        = "hit"
	EventDestroyed  = "destroyed"
	EventBossChange = "boss_state"
)

// HitEvent is pushed when a projectile overlaps a damageable entity.
type HitEvent struct {
	Projectile Entity
	Target     Entity
}

// EventQueue is a simple FIFO queue. Events pushed during a tick are
// visible to later systems in the same tick and discarded afterwards.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events of the given type and removes them from the
// queue. An empty type drains everything.
func (q *EventQueue) Drain(typ string) []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	if typ == "" {
		out := q.items
		q.items = nil
		return out
	}
	var out []Event
	kept := q.items[:0]
	for _, evt := range q.items {
		if evt.Type == typ {
			out = append(out, evt)
			continue
		}
		kept = append(kept, evt)
	}
	q.items = kept
	return out
}

// Len reports the number of pending events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
