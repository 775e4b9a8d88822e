package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/quadcollide/collision"
)

type binding struct {
	shape  *cp.Shape
	handle collision.ProxyHandle
}

// SpaceSource feeds proxy bounds from shapes living in a chipmunk space. Game
// code moves bodies; Sync copies each bound shape's bounding box into its
// proxy once per frame.
type SpaceSource struct {
	space    *cp.Space
	bindings []binding
	index    map[collision.ProxyHandle]int
}

// NewSpaceSource wraps space. A nil space gets a fresh one.
func NewSpaceSource(space *cp.Space) *SpaceSource {
	if space == nil {
		space = cp.NewSpace()
	}
	return &SpaceSource{
		space: space,
		index: make(map[collision.ProxyHandle]int),
	}
}

// Space returns the underlying chipmunk space.
func (s *SpaceSource) Space() *cp.Space {
	if s == nil {
		return nil
	}
	return s.space
}

// AddBox creates a kinematic body with a box shape covering bb and binds it
// to h. The body is positioned at the box center.
func (s *SpaceSource) AddBox(h collision.ProxyHandle, bb cp.BB) *cp.Body {
	if s == nil || s.space == nil || !h.Valid() {
		return nil
	}
	body := cp.NewKinematicBody()
	body.SetPosition(bb.Center())
	shape := cp.NewBox(body, bb.R-bb.L, bb.T-bb.B, 0)
	shape.SetSensor(true)

	s.space.AddBody(body)
	s.space.AddShape(shape)
	s.Bind(shape, h)
	return body
}

// Bind ties shape to h, replacing any shape bound to h before.
func (s *SpaceSource) Bind(shape *cp.Shape, h collision.ProxyHandle) {
	if s == nil || shape == nil || !h.Valid() {
		return
	}
	if s.index == nil {
		s.index = make(map[collision.ProxyHandle]int)
	}
	if i, ok := s.index[h]; ok {
		s.bindings[i].shape = shape
		return
	}
	s.index[h] = len(s.bindings)
	s.bindings = append(s.bindings, binding{shape: shape, handle: h})
}

// Unbind forgets h and removes its shape and body from the space.
func (s *SpaceSource) Unbind(h collision.ProxyHandle) {
	if s == nil {
		return
	}
	i, ok := s.index[h]
	if !ok {
		return
	}
	b := s.bindings[i]
	last := len(s.bindings) - 1
	s.bindings[i] = s.bindings[last]
	s.index[s.bindings[i].handle] = i
	s.bindings[last] = binding{}
	s.bindings = s.bindings[:last]
	delete(s.index, h)

	if s.space == nil || b.shape == nil {
		return
	}
	body := b.shape.Body()
	s.space.RemoveShape(b.shape)
	if body != nil && body.GetType() != cp.BODY_STATIC {
		s.space.RemoveBody(body)
	}
}

// Shape returns the shape bound to h.
func (s *SpaceSource) Shape(h collision.ProxyHandle) (*cp.Shape, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[h]
	if !ok {
		return nil, false
	}
	return s.bindings[i].shape, true
}

// Len returns the number of bound shapes.
func (s *SpaceSource) Len() int {
	if s == nil {
		return 0
	}
	return len(s.bindings)
}

// Sync refreshes every bound shape's cached bounding box and writes it to the
// registry. Proxies whose box did not move stay clean.
func (s *SpaceSource) Sync(reg *collision.Registry) {
	if s == nil || reg == nil {
		return
	}
	for _, b := range s.bindings {
		reg.SetBounds(b.handle, b.shape.CacheBB())
	}
}
