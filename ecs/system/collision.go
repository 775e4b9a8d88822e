package system

import (
	"github.com/milk9111/quadcollide/collision"
	"github.com/milk9111/quadcollide/ecs"
)

// DetectionSystem runs the detection pass as a pipeline stage.
type DetectionSystem struct {
	pass *collision.DetectionPass
}

func NewDetectionSystem(pass *collision.DetectionPass) *DetectionSystem {
	return &DetectionSystem{pass: pass}
}

func (s *DetectionSystem) Update(_ *ecs.World) {
	s.pass.Update()
}

// ResponseSystem runs the response pass as a pipeline stage. It must come
// after DetectionSystem.
type ResponseSystem struct {
	pass *collision.ResponsePass
}

func NewResponseSystem(pass *collision.ResponsePass) *ResponseSystem {
	return &ResponseSystem{pass: pass}
}

func (s *ResponseSystem) Update(_ *ecs.World) {
	s.pass.Update()
}
