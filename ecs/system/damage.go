package system

import (
	"github.com/milk9111/quadcollide/collision"
	"github.com/milk9111/quadcollide/ecs"
	"github.com/milk9111/quadcollide/ecs/component"
)

// DamageEvent is the payload of ecs.EventDamage.
type DamageEvent struct {
	Source ecs.Entity
	Amount int
	Left   int
}

// PickupEvent is the payload of ecs.EventPickup.
type PickupEvent struct {
	Collector ecs.Entity
	Score     int
}

// DamageSystem is the gameplay reaction to contacts: Damage hurts Health,
// Pickups heal and vanish. It consumes the contact events queued during the
// response pass, so it runs after ResponseSystem.
type DamageSystem struct{}

func NewDamageSystem() *DamageSystem {
	return &DamageSystem{}
}

func (s *DamageSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	for _, evt := range w.Events().Take(ecs.EventContact) {
		ce, ok := evt.Data.(ContactEvent)
		if !ok {
			continue
		}
		if !ecs.IsAlive(w, ce.SelfEntity) || !ecs.IsAlive(w, ce.OtherEntity) {
			continue
		}
		s.damage(w, ce)
		s.pickup(w, ce)
	}
}

// damage applies the other side's Damage to this side's Health.
func (s *DamageSystem) damage(w *ecs.World, ce ContactEvent) {
	dmg, ok := ecs.Get(w, ce.OtherEntity, component.DamageComponent.Kind())
	if !ok {
		return
	}
	health, ok := ecs.Get(w, ce.SelfEntity, component.HealthComponent.Kind())
	if !ok {
		return
	}
	switch ce.Kind {
	case collision.CollisionEnter, collision.TriggerEnter:
	case collision.CollisionStay, collision.TriggerStay:
		if !dmg.PerTick {
			return
		}
	default:
		return
	}

	health.Current -= dmg.Amount
	w.Events().Push(ecs.Event{
		Type:   ecs.EventDamage,
		Entity: ce.SelfEntity,
		Data:   DamageEvent{Source: ce.OtherEntity, Amount: dmg.Amount, Left: health.Current},
	})
	if dmg.DestroyOnHit {
		ecs.DestroyEntity(w, ce.OtherEntity)
	}
	if health.Current <= 0 {
		w.Events().Push(ecs.Event{Type: ecs.EventDeath, Entity: ce.SelfEntity})
		ecs.DestroyEntity(w, ce.SelfEntity)
	}
}

// pickup lets the first entity with Health that enters this Pickup collect it.
func (s *DamageSystem) pickup(w *ecs.World, ce ContactEvent) {
	if ce.Kind != collision.TriggerEnter || !ecs.IsAlive(w, ce.SelfEntity) || !ecs.IsAlive(w, ce.OtherEntity) {
		return
	}
	p, ok := ecs.Get(w, ce.SelfEntity, component.PickupComponent.Kind())
	if !ok {
		return
	}
	health, ok := ecs.Get(w, ce.OtherEntity, component.HealthComponent.Kind())
	if !ok {
		return
	}
	health.Current = min(health.Current+p.Heal, max(health.Max, health.Current))
	w.Events().Push(ecs.Event{
		Type:   ecs.EventPickup,
		Entity: ce.SelfEntity,
		Data:   PickupEvent{Collector: ce.OtherEntity, Score: p.Score},
	})
	ecs.DestroyEntity(w, ce.SelfEntity)
}
