package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type   string
	Entity Entity
	Data   any
}

// Event types raised by the collision systems.
const (
	EventContact = "contact"
	EventDamage  = "damage"
	EventDeath   = "death"
	EventPickup  = "pickup"
)

// EventQueue is a simple FIFO queue. Events stay queued until drained.
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

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Take removes and returns the events of type typ, keeping the others in
// order.
func (q *EventQueue) Take(typ string) []Event {
	if q == nil || len(q.items) == 0 {
		return nil
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
	clear(q.items[len(kept):])
	q.items = kept
	return out
}
