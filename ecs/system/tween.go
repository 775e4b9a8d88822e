package system

import (
	"github.com/milk9111/quadcollide/ecs"
	"github.com/milk9111/quadcollide/ecs/component"
)

// TweenSystem advances Tween sequences by a fixed step and writes the result
// into the Transform.
type TweenSystem struct {
	dt float32
}

// NewTweenSystem steps tweens by dt seconds per update.
func NewTweenSystem(dt float32) *TweenSystem {
	return &TweenSystem{dt: dt}
}

func (s *TweenSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach2(w, component.TweenComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, tw *component.Tween, t *component.Transform) {
		if tw.X != nil {
			x, _, _ := tw.X.Update(s.dt)
			t.X = float64(x)
		}
		if tw.Y != nil {
			y, _, _ := tw.Y.Update(s.dt)
			t.Y = float64(y)
		}
	})
}
