package physics

import "github.com/milk9111/quadcollide/collision"

// Bodies owns the handle to body table. It implements collision.TargetResolver.
type Bodies struct {
	byHandle map[collision.ProxyHandle]*Body
}

// NewBodies creates an empty table.
func NewBodies() *Bodies {
	return &Bodies{byHandle: make(map[collision.ProxyHandle]*Body)}
}

// Register creates the body for h. Registering a handle twice returns the
// existing body with its owner replaced.
func (bs *Bodies) Register(h collision.ProxyHandle, owner any) *Body {
	if bs == nil || !h.Valid() {
		return nil
	}
	if bs.byHandle == nil {
		bs.byHandle = make(map[collision.ProxyHandle]*Body)
	}
	if b, ok := bs.byHandle[h]; ok {
		b.owner = owner
		return b
	}
	b := &Body{handle: h, owner: owner}
	bs.byHandle[h] = b
	return b
}

// Unregister drops the body for h and its listeners. Later contacts naming h
// no longer resolve.
func (bs *Bodies) Unregister(h collision.ProxyHandle) {
	if bs == nil {
		return
	}
	b, ok := bs.byHandle[h]
	if !ok {
		return
	}
	for i := range b.kinds {
		b.kinds[i].Clear()
	}
	b.OnContact.Clear()
	delete(bs.byHandle, h)
}

// Lookup returns the body for h.
func (bs *Bodies) Lookup(h collision.ProxyHandle) (*Body, bool) {
	if bs == nil {
		return nil, false
	}
	b, ok := bs.byHandle[h]
	return b, ok
}

// ResolveTarget implements collision.TargetResolver.
func (bs *Bodies) ResolveTarget(h collision.ProxyHandle) (collision.Target, bool) {
	b, ok := bs.Lookup(h)
	if !ok {
		return nil, false
	}
	return b, true
}

// Len returns the number of registered bodies.
func (bs *Bodies) Len() int {
	if bs == nil {
		return 0
	}
	return len(bs.byHandle)
}

// Owner returns the owner registered for h as T.
func Owner[T any](bs *Bodies, h collision.ProxyHandle) (T, bool) {
	var zero T
	b, ok := bs.Lookup(h)
	if !ok {
		return zero, false
	}
	v, ok := b.owner.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
