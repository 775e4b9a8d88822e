package collision

import (
	"log"

	"github.com/jakecoffman/cp"
)

// Registry owns every proxy, the dirty list and the rolling overlap sets.
//
// Only the detection and response passes should mutate the overlap sets;
// gameplay code talks to the registry through handles.
type Registry struct {
	proxies proxyStore
	next    ProxyHandle

	dirty   []ProxyHandle
	removed []ProxyHandle

	current  pairSet
	previous pairSet

	defaultLayer Layer
	defaultMask  Layer
	graceTicks   int

	logger *log.Logger
}

// RegistryOption configures a Registry at construction time.
type RegistryOption func(*Registry)

// WithDefaultMasks sets the masks used when ProxyOptions leaves them zero.
// LayerNone is taken literally: proxies on those defaults hit nothing.
func WithDefaultMasks(layer, mask Layer) RegistryOption {
	return func(r *Registry) {
		r.defaultLayer = layer
		r.defaultMask = mask
	}
}

// WithSpawnGrace sets how many ticks a spawned or respawned proxy sits out of
// broad phase.
func WithSpawnGrace(ticks int) RegistryOption {
	return func(r *Registry) {
		if ticks >= 0 {
			r.graceTicks = ticks
		}
	}
}

// WithLogger reports calls made with unknown handles. They stay no-ops.
func WithLogger(l *log.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		current:      make(pairSet),
		previous:     make(pairSet),
		defaultLayer: LayerDefault,
		defaultMask:  LayerAll,
		graceTicks:   1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// CreateProxy stores a new proxy and returns its handle. The proxy starts
// active and dirty so the next detection pass picks it up.
func (r *Registry) CreateProxy(opts ProxyOptions) ProxyHandle {
	r.next++
	h := r.next

	p := Proxy{
		Handle:         h,
		Bounds:         opts.Bounds,
		PreviousBounds: opts.Bounds,
		Enabled:        !opts.Disabled,
		IsTrigger:      opts.IsTrigger,
		Dirty:          true,
		LayerMask:      opts.LayerMask,
		CollisionMask:  opts.CollisionMask,
		UserData:       opts.UserData,
	}
	if !opts.ExplicitMasks {
		if p.LayerMask == LayerNone {
			p.LayerMask = r.defaultLayer
		}
		if p.CollisionMask == LayerNone {
			p.CollisionMask = r.defaultMask
		}
	}
	if opts.Grace {
		p.Grace = r.graceTicks
	}

	r.proxies.insert(p)
	r.dirty = append(r.dirty, h)
	return h
}

// DestroyProxy removes h from the active and dirty lists, purges every pair
// that mentions it from both frames and drops its storage. Unknown handles are
// ignored.
func (r *Registry) DestroyProxy(h ProxyHandle) {
	if !r.proxies.has(h) {
		r.ignored("DestroyProxy", h)
		return
	}

	for i, d := range r.dirty {
		if d == h {
			r.dirty = append(r.dirty[:i], r.dirty[i+1:]...)
			break
		}
	}
	r.current.purge(h)
	r.previous.purge(h)
	r.proxies.remove(h)
	r.removed = append(r.removed, h)
}

// GetProxy returns the proxy for h, or nil. The pointer is only valid until the
// next CreateProxy or DestroyProxy.
func (r *Registry) GetProxy(h ProxyHandle) *Proxy {
	return r.proxies.get(h)
}

// UserData returns the user data of h as T.
func UserData[T any](r *Registry, h ProxyHandle) (T, bool) {
	var zero T
	p := r.GetProxy(h)
	if p == nil {
		return zero, false
	}
	v, ok := p.UserData.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Len returns the number of live proxies.
func (r *Registry) Len() int {
	return r.proxies.len()
}

// ActiveHandles returns the live handles in storage order. The slice belongs
// to the registry.
func (r *Registry) ActiveHandles() []ProxyHandle {
	return r.proxies.handles
}

// DirtyHandles returns the handles waiting for the partition. The slice
// belongs to the registry.
func (r *Registry) DirtyHandles() []ProxyHandle {
	return r.dirty
}

// MarkDirty queues h for repositioning. Marking twice queues it once.
func (r *Registry) MarkDirty(h ProxyHandle) {
	p := r.proxies.get(h)
	if p == nil {
		r.ignored("MarkDirty", h)
		return
	}
	if p.Dirty {
		return
	}
	p.Dirty = true
	r.dirty = append(r.dirty, h)
}

// ClearDirtyFlags empties the dirty list.
func (r *Registry) ClearDirtyFlags() {
	for _, h := range r.dirty {
		if p := r.proxies.get(h); p != nil {
			p.Dirty = false
		}
	}
	r.dirty = r.dirty[:0]
}

// SetBounds moves h and marks it dirty when the bounds changed.
func (r *Registry) SetBounds(h ProxyHandle, bb cp.BB) {
	p := r.proxies.get(h)
	if p == nil {
		r.ignored("SetBounds", h)
		return
	}
	if p.Bounds == bb {
		return
	}
	p.PreviousBounds = p.Bounds
	p.Bounds = bb
	r.MarkDirty(h)
}

// SetEnabled toggles h. A disabled proxy leaves the partition on the next pass
// but any pair already recorded this tick is kept.
func (r *Registry) SetEnabled(h ProxyHandle, enabled bool) {
	p := r.proxies.get(h)
	if p == nil {
		r.ignored("SetEnabled", h)
		return
	}
	if p.Enabled == enabled {
		return
	}
	p.Enabled = enabled
	r.MarkDirty(h)
}

// Respawn reuses a pooled proxy at bb: it is enabled again and sits out broad
// phase for the spawn grace period so it cannot collide with whatever it
// touched in its previous life on the same tick.
func (r *Registry) Respawn(h ProxyHandle, bb cp.BB) {
	p := r.proxies.get(h)
	if p == nil {
		r.ignored("Respawn", h)
		return
	}
	p.PreviousBounds = p.Bounds
	p.Bounds = bb
	p.Enabled = true
	p.Grace = r.graceTicks
	r.MarkDirty(h)
}

// CanCollide is the handle form of Proxy.CanCollideWith.
func (r *Registry) CanCollide(a, b ProxyHandle) bool {
	return r.GetProxy(a).CanCollideWith(r.GetProxy(b))
}

// RecordOverlap adds the pair (a, b) to the current frame. Recording the same
// unordered pair twice keeps one entry.
func (r *Registry) RecordOverlap(a, b ProxyHandle, isTrigger bool) {
	if a == b || a == InvalidHandle || b == InvalidHandle {
		return
	}
	p := MakeOrderedPair(a, b)
	p.IsTriggerCollision = isTrigger
	r.current.add(p)
}

// SwapFrames moves the current frame into the previous one and starts an
// empty current frame. Call it once per tick before recording overlaps.
func (r *Registry) SwapFrames() {
	r.previous, r.current = r.current, r.previous
	clear(r.current)
}

// CollisionEnters appends pairs that are new this frame.
func (r *Registry) CollisionEnters(out []CollisionPair) []CollisionPair {
	return r.current.appendSorted(out, func(p CollisionPair) bool { return !r.previous.has(p) })
}

// CollisionStays appends pairs present in both frames.
func (r *Registry) CollisionStays(out []CollisionPair) []CollisionPair {
	return r.current.appendSorted(out, func(p CollisionPair) bool { return r.previous.has(p) })
}

// CollisionExits appends pairs that ended this frame.
func (r *Registry) CollisionExits(out []CollisionPair) []CollisionPair {
	return r.previous.appendSorted(out, func(p CollisionPair) bool { return !r.current.has(p) })
}

// CurrentOverlaps appends every pair recorded this frame.
func (r *Registry) CurrentOverlaps(out []CollisionPair) []CollisionPair {
	return r.current.appendSorted(out, nil)
}

// IsOverlapping reports whether a and b overlap in the current frame.
func (r *Registry) IsOverlapping(a, b ProxyHandle) bool {
	return r.current.has(MakeOrderedPair(a, b))
}

// WasOverlapping reports whether a and b overlapped in the previous frame.
func (r *Registry) WasOverlapping(a, b ProxyHandle) bool {
	return r.previous.has(MakeOrderedPair(a, b))
}

// takeRemoved hands the handles destroyed since the last call to the
// partition owner.
func (r *Registry) takeRemoved() []ProxyHandle {
	out := r.removed
	r.removed = nil
	return out
}

func (r *Registry) tickGrace() {
	for i := range r.proxies.values {
		if r.proxies.values[i].Grace > 0 {
			r.proxies.values[i].Grace--
		}
	}
}

func (r *Registry) ignored(op string, h ProxyHandle) {
	if r.logger == nil {
		return
	}
	r.logger.Printf("collision: %s ignored unknown proxy %d", op, h)
}
