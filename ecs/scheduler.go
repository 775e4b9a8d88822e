package ecs

// System is one stage of the frame pipeline.
type System interface {
	Update(w *World)
}

// SystemFunc adapts a function to System.
type SystemFunc func(w *World)

func (f SystemFunc) Update(w *World) {
	f(w)
}

// Scheduler runs systems in the order they were added, each to completion.
type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{}
	for _, system := range systems {
		s.Add(system)
	}
	return s
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

func (s *Scheduler) Update(w *World) {
	if s == nil || w == nil {
		return
	}
	for _, system := range s.systems {
		system.Update(w)
	}
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
