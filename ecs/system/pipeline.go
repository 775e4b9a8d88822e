package system

import (
	"github.com/milk9111/quadcollide/collision"
	"github.com/milk9111/quadcollide/ecs"
	"github.com/milk9111/quadcollide/physics"
)

// PipelineConfig collects what NewPipeline wires together. Only World is
// required.
type PipelineConfig struct {
	World            collision.WorldBounds
	Step             float32
	RegistryOptions  []collision.RegistryOption
	DetectionOptions []collision.DetectionOption
	ResponseOptions  []collision.ResponseOption
	ColliderOptions  []ColliderOption
}

// Pipeline is the frame loop of a collision world:
// timers, tweens, collider sync, detection, response, damage.
type Pipeline struct {
	Registry  *collision.Registry
	Bodies    *physics.Bodies
	Detection *collision.DetectionPass
	Response  *collision.ResponsePass
	Colliders *ColliderSyncSystem
	Scheduler *ecs.Scheduler
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Step <= 0 {
		cfg.Step = 1.0 / 60.0
	}
	reg := collision.NewRegistry(cfg.RegistryOptions...)
	bodies := physics.NewBodies()
	detection := collision.NewDetectionPass(reg, cfg.World, cfg.DetectionOptions...)
	response := collision.NewResponsePass(reg, bodies, cfg.ResponseOptions...)
	colliders := NewColliderSyncSystem(reg, bodies, cfg.ColliderOptions...)

	return &Pipeline{
		Registry:  reg,
		Bodies:    bodies,
		Detection: detection,
		Response:  response,
		Colliders: colliders,
		Scheduler: ecs.NewScheduler(
			NewTTLSystem(),
			NewTweenSystem(cfg.Step),
			colliders,
			NewDetectionSystem(detection),
			NewResponseSystem(response),
			NewDamageSystem(),
		),
	}
}

// Update runs one frame over w.
func (p *Pipeline) Update(w *ecs.World) {
	if p == nil {
		return
	}
	p.Scheduler.Update(w)
}
