package ecs

import (
	"github.com/milk9111/quadcollide/ecs/component"
	"github.com/milk9111/quadcollide/signal"
)

// World owns entities and their components.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]store
	events   EventQueue

	// destroyed fires after an entity is marked dead and before its
	// components are dropped.
	destroyed signal.Signal[Entity]
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]store)}
}

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	if w == nil {
		return 0
	}
	return w.entities.create()
}

// DestroyEntity kills e and drops all of its components. It reports false
// when e was already dead.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.destroy(e) {
		return false
	}
	w.destroyed.Broadcast(e)
	for _, s := range w.stores {
		s.remove(e.id())
	}
	return true
}

// IsAlive reports whether an entity handle is valid.
func IsAlive(w *World, e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns the live entities in slot order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, w.entities.count)
	w.entities.each(func(e Entity) {
		out = append(out, e)
	})
	return out
}

// Len returns the number of live entities.
func (w *World) Len() int {
	if w == nil {
		return 0
	}
	return w.entities.count
}

// OnDestroy is the signal raised for every destroyed entity.
func (w *World) OnDestroy() *signal.Signal[Entity] {
	if w == nil {
		return nil
	}
	return &w.destroyed
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func (w *World) entityFor(id entityID) Entity {
	return makeEntity(id, w.entities.gen[id])
}
