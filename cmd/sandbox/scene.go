package main

import (
	"log"

	"github.com/jakecoffman/cp"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/milk9111/quadcollide/collision"
	"github.com/milk9111/quadcollide/config"
	"github.com/milk9111/quadcollide/ecs"
	"github.com/milk9111/quadcollide/ecs/component"
	"github.com/milk9111/quadcollide/ecs/system"
	"github.com/milk9111/quadcollide/physics"
)

const (
	step        = 1.0 / 60.0
	playerSize  = 24
	playerSpeed = 4
	bulletSize  = 6
)

// drifter is a hazard moved by chipmunk instead of the ECS.
type drifter struct {
	proxy collision.ProxyHandle
	body  *cp.Body
}

// scene is one collision world built from a config. A config reload throws
// the whole scene away and builds a new one.
type scene struct {
	cfg      *config.Config
	world    *ecs.World
	pipeline *system.Pipeline
	host     *system.ScriptHost
	space    *physics.SpaceSource
	drifters []drifter

	player         ecs.Entity
	spawnX, spawnY float64
	facing         float64

	logger *log.Logger
}

type sceneOptions struct {
	cfg      *config.Config
	listener collision.Target
	stats    collision.Stats
	debug    bool
	logger   *log.Logger
}

func newScene(o sceneOptions) *scene {
	cfg := o.cfg
	regOpts := cfg.RegistryOptions()
	if o.debug {
		regOpts = append(regOpts, collision.WithLogger(o.logger))
	}
	detOpts := []collision.DetectionOption{collision.WithTreeOptions(cfg.TreeOptions()...)}
	resOpts := []collision.ResponseOption{}
	if o.stats != nil {
		detOpts = append(detOpts, collision.WithDetectionStats(o.stats))
		resOpts = append(resOpts, collision.WithResponseStats(o.stats))
	}
	if o.debug {
		detOpts = append(detOpts, collision.WithDetectionLogger(o.logger))
		resOpts = append(resOpts, collision.WithResponseLogger(o.logger))
	}
	colOpts := []system.ColliderOption{system.WithProfiles(cfg), system.WithSyncLogger(o.logger)}
	if o.listener != nil {
		colOpts = append(colOpts, system.WithProfileListener("coin", o.listener))
	}

	s := &scene{
		cfg:   cfg,
		world: ecs.NewWorld(),
		pipeline: system.NewPipeline(system.PipelineConfig{
			World:            cfg,
			Step:             step,
			RegistryOptions:  regOpts,
			DetectionOptions: detOpts,
			ResponseOptions:  resOpts,
			ColliderOptions:  colOpts,
		}),
		space:  physics.NewSpaceSource(nil),
		facing: 1,
		logger: o.logger,
	}
	s.host = system.NewScriptHost(s.world, s.pipeline.Bodies)
	s.populate()
	return s
}

func (s *scene) populate() {
	bb := s.cfg.WorldBounds()
	w, h := bb.R-bb.L, bb.T-bb.B

	s.spawnX, s.spawnY = bb.L+w*0.1, bb.B+h*0.5
	s.player = s.spawn(s.spawnX, s.spawnY, playerSize, playerSize, "player")
	add(s, s.player, component.HealthComponent.Kind(), &component.Health{Current: 5, Max: 5})
	add(s, s.player, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	add(s, s.player, component.TagComponent.Kind(), &component.Tag{Name: "player"})

	// walls
	for _, r := range []cp.BB{
		collision.Rect(bb.L+w*0.30, bb.B+h*0.15, 20, h*0.30),
		collision.Rect(bb.L+w*0.30, bb.B+h*0.60, 20, h*0.25),
		collision.Rect(bb.L+w*0.55, bb.B+h*0.40, w*0.15, 20),
	} {
		e := s.spawn(r.L, r.B, r.R-r.L, r.T-r.B, "wall")
		add(s, e, component.TagComponent.Kind(), &component.Tag{Name: "wall"})
	}

	// patrolling enemies
	for i, y := range []float64{0.2, 0.5, 0.8} {
		x0, x1 := bb.L+w*0.40, bb.L+w*0.85
		e := s.spawn(x0, bb.B+h*y, 28, 28, "enemy")
		add(s, e, component.HealthComponent.Kind(), &component.Health{Current: 3, Max: 3})
		add(s, e, component.DamageComponent.Kind(), &component.Damage{Amount: 1})
		seq := gween.NewSequence(gween.New(float32(x0), float32(x1), 2+float32(i)*0.7, ease.InOutSine))
		seq.SetLoop(-1)
		seq.SetYoyo(true)
		add(s, e, component.TweenComponent.Kind(), &component.Tween{X: seq})
	}

	// coins along the middle and two hearts
	for i := 0; i < 8; i++ {
		e := s.spawn(bb.L+w*0.15+float64(i)*w*0.09, bb.B+h*0.08, 14, 14, "coin")
		add(s, e, component.TagComponent.Kind(), &component.Tag{Name: "coin"})
	}
	for _, x := range []float64{0.2, 0.9} {
		e := s.spawn(bb.L+w*x, bb.B+h*0.9, 16, 16, "heart")
		add(s, e, component.PickupComponent.Kind(), &component.Pickup{Heal: 2, Score: 10})
	}

	for i, v := range []cp.Vector{{X: 90, Y: 60}, {X: -70, Y: 110}} {
		s.addDrifter(collision.Rect(bb.L+w*(0.6+0.2*float64(i)), bb.B+h*0.3, 32, 32), v)
	}
}

func (s *scene) spawn(x, y, w, h float64, profile string) ecs.Entity {
	e := ecs.CreateEntity(s.world)
	add(s, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y})
	add(s, e, component.ColliderComponent.Kind(), &component.Collider{Width: w, Height: h, Profile: profile})
	return e
}

func add[T any](s *scene, e ecs.Entity, kind component.ComponentKind[T], v *T) {
	if err := ecs.Add(s.world, e, kind, v); err != nil {
		s.logger.Printf("scene: add %v to %v: %v", kind, e, err)
	}
}

// addDrifter creates a proxy that follows a kinematic chipmunk box. Touching
// the player sends it back to its spawn point with a fresh grace period.
func (s *scene) addDrifter(bb cp.BB, velocity cp.Vector) {
	reg := s.pipeline.Registry
	opts, err := s.cfg.ProxyOptions("drifter", bb)
	if err != nil {
		opts = collision.ProxyOptions{Bounds: bb}
	}
	h := reg.CreateProxy(opts)
	body := s.space.AddBox(h, bb)
	body.SetVelocity(velocity.X, velocity.Y)

	b := s.pipeline.Bodies.Register(h, "drifter")
	b.On(collision.CollisionEnter).Subscribe(func(c collision.Contact) {
		e, ok := physics.OwnerOf[ecs.Entity](c)
		if !ok || e != s.player {
			return
		}
		t, ok := ecs.Get(s.world, e, component.TransformComponent.Kind())
		if !ok {
			return
		}
		t.X, t.Y = s.spawnX, s.spawnY
		reg.Respawn(c.Other, collision.Rect(t.X, t.Y, playerSize, playerSize))
		s.logger.Printf("scene: drifter %v knocked the player back", h)
	})
	s.drifters = append(s.drifters, drifter{proxy: h, body: body})
}

// stepDrifters advances the chipmunk space, bounces drifters off the world
// edges and copies their shapes into the registry.
func (s *scene) stepDrifters() {
	s.space.Space().Step(step)
	bb := s.cfg.WorldBounds()
	for _, d := range s.drifters {
		shape, ok := s.space.Shape(d.proxy)
		if !ok {
			continue
		}
		sb := shape.CacheBB()
		v := d.body.Velocity()
		if (sb.L < bb.L && v.X < 0) || (sb.R > bb.R && v.X > 0) {
			v.X = -v.X
		}
		if (sb.B < bb.B && v.Y < 0) || (sb.T > bb.T && v.Y > 0) {
			v.Y = -v.Y
		}
		d.body.SetVelocity(v.X, v.Y)
	}
	s.space.Sync(s.pipeline.Registry)
}

// fire spawns a bullet travelling from the player in the facing direction.
func (s *scene) fire() {
	t, ok := ecs.Get(s.world, s.player, component.TransformComponent.Kind())
	if !ok {
		return
	}
	x := t.X + playerSize/2
	y := t.Y + playerSize/2 - bulletSize/2
	e := s.spawn(x, y, bulletSize, bulletSize, "bullet")
	add(s, e, component.DamageComponent.Kind(), &component.Damage{Amount: 1, DestroyOnHit: true})
	add(s, e, component.TTLComponent.Kind(), &component.TTL{Frames: 90})
	seq := gween.NewSequence(gween.New(float32(x), float32(x+s.facing*900), 1.5, ease.Linear))
	add(s, e, component.TweenComponent.Kind(), &component.Tween{X: seq})
}

// move shifts the player by dx, dy, clamped to the world.
func (s *scene) move(dx, dy float64) {
	t, ok := ecs.Get(s.world, s.player, component.TransformComponent.Kind())
	if !ok {
		return
	}
	if dx != 0 {
		s.facing = 1
		if dx < 0 {
			s.facing = -1
		}
	}
	bb := s.cfg.WorldBounds()
	t.X = min(max(t.X+dx, bb.L), bb.R-playerSize)
	t.Y = min(max(t.Y+dy, bb.B), bb.T-playerSize)
}

func (s *scene) update() {
	s.stepDrifters()
	s.pipeline.Update(s.world)
}

func (s *scene) playerHealth() (int, bool) {
	h, ok := ecs.Get(s.world, s.player, component.HealthComponent.Kind())
	if !ok {
		return 0, false
	}
	return h.Current, true
}
