package system

import (
	"github.com/milk9111/quadcollide/collision"
	"github.com/milk9111/quadcollide/ecs"
	"github.com/milk9111/quadcollide/ecs/component"
	"github.com/milk9111/quadcollide/physics"
	"github.com/milk9111/quadcollide/script"
)

// ScriptHost carries out contact script calls against an ECS world.
type ScriptHost struct {
	world  *ecs.World
	bodies *physics.Bodies
}

var _ script.Host = (*ScriptHost)(nil)

func NewScriptHost(w *ecs.World, bodies *physics.Bodies) *ScriptHost {
	return &ScriptHost{world: w, bodies: bodies}
}

func (h *ScriptHost) entity(p collision.ProxyHandle) (ecs.Entity, bool) {
	e, ok := physics.Owner[ecs.Entity](h.bodies, p)
	if !ok || !ecs.IsAlive(h.world, e) {
		return 0, false
	}
	return e, true
}

// Destroy destroys the entity behind p.
func (h *ScriptHost) Destroy(p collision.ProxyHandle) bool {
	e, ok := h.entity(p)
	if !ok {
		return false
	}
	return ecs.DestroyEntity(h.world, e)
}

// Emit queues an event named name for the entity behind self.
func (h *ScriptHost) Emit(name string, self collision.ProxyHandle, arg any) {
	e, _ := h.entity(self)
	h.world.Events().Push(ecs.Event{Type: name, Entity: e, Data: arg})
}

// Tag returns the Tag name of the entity behind p, "player" for the player.
func (h *ScriptHost) Tag(p collision.ProxyHandle) string {
	e, ok := h.entity(p)
	if !ok {
		return ""
	}
	if tag, ok := ecs.Get(h.world, e, component.TagComponent.Kind()); ok && tag.Name != "" {
		return tag.Name
	}
	if ecs.Has(h.world, e, component.PlayerTagComponent.Kind()) {
		return "player"
	}
	return ""
}
