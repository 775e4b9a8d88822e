package system

import (
	"github.com/milk9111/quadcollide/ecs"
	"github.com/milk9111/quadcollide/ecs/component"
)

// TTLSystem decrements frame-based TTL components and destroys entities when
// the TTL reaches zero. Destroying an entity releases its proxy through the
// world's destroy signal.
type TTLSystem struct{}

func NewTTLSystem() *TTLSystem {
	return &TTLSystem{}
}

func (s *TTLSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.TTLComponent.Kind(), func(e ecs.Entity, ttl *component.TTL) {
		if ttl.Frames > 0 {
			ttl.Frames--
			if ttl.Frames > 0 {
				return
			}
		}

		// TTL expired: destroy the entity
		ecs.DestroyEntity(w, e)
	})
}
