package system

import (
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/quadcollide/collision"
	"github.com/milk9111/quadcollide/ecs"
	"github.com/milk9111/quadcollide/ecs/component"
	"github.com/milk9111/quadcollide/physics"
	"github.com/milk9111/quadcollide/signal"
)

// ProfileSource turns a collider profile name into proxy options.
// *config.Config implements it.
type ProfileSource interface {
	ProxyOptions(profile string, bounds cp.BB) (collision.ProxyOptions, error)
}

// ContactEvent is the payload of ecs.EventContact events: a contact plus the
// entities on both sides.
type ContactEvent struct {
	collision.Contact
	SelfEntity  ecs.Entity
	OtherEntity ecs.Entity
}

// ColliderSyncSystem keeps one proxy and one body per Transform + Collider
// entity. It creates them on first sight, copies bounds every frame and
// releases them when the entity dies or loses its collider.
type ColliderSyncSystem struct {
	reg      *collision.Registry
	bodies   *physics.Bodies
	profiles ProfileSource

	listeners map[string][]collision.Target
	proxies   map[ecs.Entity]collision.ProxyHandle

	world *ecs.World
	sub   signal.Subscription

	logger *log.Logger
}

// ColliderOption configures a ColliderSyncSystem.
type ColliderOption func(*ColliderSyncSystem)

// WithProfiles resolves Collider.Profile through p.
func WithProfiles(p ProfileSource) ColliderOption {
	return func(s *ColliderSyncSystem) {
		s.profiles = p
	}
}

// WithProfileListener subscribes t to the contacts of every body created for
// profile.
func WithProfileListener(profile string, t collision.Target) ColliderOption {
	return func(s *ColliderSyncSystem) {
		if t == nil {
			return
		}
		s.listeners[profile] = append(s.listeners[profile], t)
	}
}

// WithSyncLogger logs profile lookups that failed.
func WithSyncLogger(l *log.Logger) ColliderOption {
	return func(s *ColliderSyncSystem) {
		s.logger = l
	}
}

func NewColliderSyncSystem(reg *collision.Registry, bodies *physics.Bodies, opts ...ColliderOption) *ColliderSyncSystem {
	s := &ColliderSyncSystem{
		reg:       reg,
		bodies:    bodies,
		listeners: make(map[string][]collision.Target),
		proxies:   make(map[ecs.Entity]collision.ProxyHandle),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *ColliderSyncSystem) Update(w *ecs.World) {
	if w == nil || s.reg == nil {
		return
	}
	s.attach(w)

	ecs.ForEach2(w, component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(e ecs.Entity, t *component.Transform, c *component.Collider) {
		bb := collision.Rect(t.X+c.OffsetX, t.Y+c.OffsetY, c.Width, c.Height)
		if h, ok := s.proxies[e]; !ok || h != c.Proxy {
			s.create(w, e, c, bb)
			return
		}
		s.reg.SetBounds(c.Proxy, bb)
		s.reg.SetEnabled(c.Proxy, !c.Disabled)
	})

	for e := range s.proxies {
		if !ecs.Has(w, e, component.ColliderComponent.Kind()) {
			s.release(e)
		}
	}
}

// Proxy returns the proxy of e.
func (s *ColliderSyncSystem) Proxy(e ecs.Entity) (collision.ProxyHandle, bool) {
	h, ok := s.proxies[e]
	return h, ok
}

func (s *ColliderSyncSystem) create(w *ecs.World, e ecs.Entity, c *component.Collider, bb cp.BB) {
	if old, ok := s.proxies[e]; ok {
		s.reg.DestroyProxy(old)
		s.bodies.Unregister(old)
	}

	opts := collision.ProxyOptions{}
	if c.Profile != "" && s.profiles != nil {
		resolved, err := s.profiles.ProxyOptions(c.Profile, bb)
		if err != nil {
			if s.logger != nil {
				s.logger.Printf("collider: entity %v: %v, using defaults", e, err)
			}
		} else {
			opts = resolved
		}
	}
	opts.Bounds = bb
	opts.Disabled = c.Disabled
	opts.UserData = e

	h := s.reg.CreateProxy(opts)
	c.Proxy = h
	s.proxies[e] = h

	body := s.bodies.Register(h, e)
	body.OnContact.Subscribe(func(ct collision.Contact) {
		other, _ := physics.OwnerOf[ecs.Entity](ct)
		w.Events().Push(ecs.Event{
			Type:   ecs.EventContact,
			Entity: e,
			Data:   ContactEvent{Contact: ct, SelfEntity: e, OtherEntity: other},
		})
	})
	for _, t := range s.listeners[c.Profile] {
		body.OnContact.Subscribe(t.HandleContact)
	}
}

func (s *ColliderSyncSystem) release(e ecs.Entity) {
	h, ok := s.proxies[e]
	if !ok {
		return
	}
	s.reg.DestroyProxy(h)
	s.bodies.Unregister(h)
	delete(s.proxies, e)
}

// attach follows the destroy signal of w so a destroyed entity loses its
// proxy at once, even in the middle of the response pass.
func (s *ColliderSyncSystem) attach(w *ecs.World) {
	if s.world == w {
		return
	}
	if s.world != nil {
		s.world.OnDestroy().Unsubscribe(s.sub)
	}
	s.world = w
	s.sub = w.OnDestroy().Subscribe(s.release)
}
