package collision

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/quadcollide/quadtree"
)

type statsRecorder struct {
	detections []DetectionStats
	responses  []ResponseStats
}

func (s *statsRecorder) ObserveDetection(d DetectionStats) { s.detections = append(s.detections, d) }
func (s *statsRecorder) ObserveResponse(r ResponseStats)   { s.responses = append(s.responses, r) }

func TestDetectionEnterStayExit(t *testing.T) {
	r := NewRegistry()
	pass := NewDetectionPass(r, FixedBounds(Rect(0, 0, 200, 200)))

	p := r.CreateProxy(ProxyOptions{Bounds: Rect(0, 0, 10, 10)})
	q := r.CreateProxy(ProxyOptions{Bounds: Rect(5, 5, 10, 10)})
	pq := MakeOrderedPair(p, q)

	steps := []struct {
		name   string
		before func()
		enters []CollisionPair
		stays  []CollisionPair
		exits  []CollisionPair
	}{
		{name: "tick1_enter", enters: []CollisionPair{pq}},
		{name: "tick2_stay", stays: []CollisionPair{pq}},
		{
			name:   "tick3_exit",
			before: func() { r.SetBounds(q, Rect(100, 100, 10, 10)) },
			exits:  []CollisionPair{pq},
		},
		{name: "tick4_quiet"},
	}

	for _, s := range steps {
		t.Run(s.name, func(t *testing.T) {
			if s.before != nil {
				s.before()
			}
			pass.Update()
			if got := r.CollisionEnters(nil); !slices.Equal(got, s.enters) {
				t.Fatalf("enters = %v, want %v", got, s.enters)
			}
			if got := r.CollisionStays(nil); !slices.Equal(got, s.stays) {
				t.Fatalf("stays = %v, want %v", got, s.stays)
			}
			if got := r.CollisionExits(nil); !slices.Equal(got, s.exits) {
				t.Fatalf("exits = %v, want %v", got, s.exits)
			}
			if len(r.DirtyHandles()) != 0 {
				t.Fatalf("dirty list should be empty after a pass")
			}
		})
	}
}

func TestDetectionFilters(t *testing.T) {
	cases := []struct {
		name string
		a, b ProxyOptions
		want bool
		trig bool
	}{
		{
			name: "masks_match",
			a:    ProxyOptions{Bounds: Rect(0, 0, 10, 10), LayerMask: LayerPlayer, CollisionMask: LayerEnemy},
			b:    ProxyOptions{Bounds: Rect(5, 5, 10, 10), LayerMask: LayerEnemy, CollisionMask: LayerPlayer},
			want: true,
		},
		{
			name: "masks_reject",
			a:    ProxyOptions{Bounds: Rect(0, 0, 10, 10), LayerMask: LayerPlayer, CollisionMask: LayerEnemy},
			b:    ProxyOptions{Bounds: Rect(5, 5, 10, 10), LayerMask: LayerEnvironment, CollisionMask: LayerProjectile},
		},
		{
			name: "edges_touch_only",
			a:    ProxyOptions{Bounds: Rect(0, 0, 10, 10)},
			b:    ProxyOptions{Bounds: Rect(10, 0, 10, 10)},
		},
		{
			name: "disabled",
			a:    ProxyOptions{Bounds: Rect(0, 0, 10, 10)},
			b:    ProxyOptions{Bounds: Rect(5, 5, 10, 10), Disabled: true},
		},
		{
			name: "trigger",
			a:    ProxyOptions{Bounds: Rect(0, 0, 10, 10)},
			b:    ProxyOptions{Bounds: Rect(5, 5, 10, 10), IsTrigger: true},
			want: true,
			trig: true,
		},
		{
			name: "grace",
			a:    ProxyOptions{Bounds: Rect(0, 0, 10, 10)},
			b:    ProxyOptions{Bounds: Rect(5, 5, 10, 10), Grace: true},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := NewRegistry()
			pass := NewDetectionPass(r, FixedBounds(Rect(0, 0, 100, 100)))
			a := r.CreateProxy(c.a)
			b := r.CreateProxy(c.b)
			pass.Update()

			got := r.CurrentOverlaps(nil)
			if !c.want {
				if len(got) != 0 {
					t.Fatalf("expected no overlap, got %v", got)
				}
				return
			}
			want := MakeOrderedPair(a, b)
			want.IsTriggerCollision = c.trig
			if len(got) != 1 || got[0] != want {
				t.Fatalf("expected %v, got %v", want, got)
			}
		})
	}
}

func TestDetectionGraceLastsOneTick(t *testing.T) {
	r := NewRegistry()
	pass := NewDetectionPass(r, FixedBounds(Rect(0, 0, 100, 100)))
	a := r.CreateProxy(ProxyOptions{Bounds: Rect(0, 0, 10, 10)})
	b := r.CreateProxy(ProxyOptions{Bounds: Rect(5, 5, 10, 10), Grace: true})

	pass.Update()
	if r.IsOverlapping(a, b) {
		t.Fatalf("proxy in grace should be skipped on its first tick")
	}
	pass.Update()
	if !r.IsOverlapping(a, b) {
		t.Fatalf("grace should have expired")
	}
	if got := r.CollisionEnters(nil); len(got) != 1 {
		t.Fatalf("expected the pair to enter after grace, got %v", got)
	}
}

func TestDetectionDisableMidGame(t *testing.T) {
	r := NewRegistry()
	pass := NewDetectionPass(r, FixedBounds(Rect(0, 0, 100, 100)))
	a := r.CreateProxy(ProxyOptions{Bounds: Rect(0, 0, 10, 10)})
	b := r.CreateProxy(ProxyOptions{Bounds: Rect(5, 5, 10, 10)})
	pass.Update()

	r.SetEnabled(b, false)
	pass.Update()
	if r.IsOverlapping(a, b) {
		t.Fatalf("disabled proxy still overlapping")
	}
	if got := r.CollisionExits(nil); len(got) != 1 {
		t.Fatalf("expected exit after disable, got %v", got)
	}
	if pass.Tree().Len() != 1 {
		t.Fatalf("disabled proxy should leave the tree, len=%d", pass.Tree().Len())
	}

	r.SetEnabled(b, true)
	pass.Update()
	if !r.IsOverlapping(a, b) {
		t.Fatalf("re-enabled proxy should overlap again")
	}
}

func TestDetectionDestroyLeavesTree(t *testing.T) {
	r := NewRegistry()
	pass := NewDetectionPass(r, FixedBounds(Rect(0, 0, 100, 100)))
	a := r.CreateProxy(ProxyOptions{Bounds: Rect(0, 0, 10, 10)})
	b := r.CreateProxy(ProxyOptions{Bounds: Rect(5, 5, 10, 10)})
	pass.Update()

	r.DestroyProxy(b)
	pass.Update()
	if pass.Tree().Len() != 1 {
		t.Fatalf("destroyed proxy still in tree, len=%d", pass.Tree().Len())
	}
	if r.IsOverlapping(a, b) || len(r.CollisionExits(nil)) != 0 {
		t.Fatalf("destroyed proxy must not produce pairs or exits")
	}
}

func TestDetectionRebuildOnResize(t *testing.T) {
	world := Rect(0, 0, 100, 100)
	stats := &statsRecorder{}
	r := NewRegistry()
	pass := NewDetectionPass(r, WorldBoundsFunc(func() cp.BB { return world }), WithDetectionStats(stats))
	r.CreateProxy(ProxyOptions{Bounds: Rect(0, 0, 10, 10)})

	pass.Update()
	pass.Update()
	world = Rect(0, 0, 400, 400)
	pass.Update()
	pass.ForceRebuild()
	pass.Update()

	want := []bool{true, false, true, true}
	if len(stats.detections) != len(want) {
		t.Fatalf("expected %d stats, got %d", len(want), len(stats.detections))
	}
	for i, d := range stats.detections {
		if d.Rebuild != want[i] {
			t.Fatalf("tick %d rebuild = %v, want %v", i+1, d.Rebuild, want[i])
		}
		if d.Proxies != 1 {
			t.Fatalf("tick %d expected 1 proxy in tree, got %d", i+1, d.Proxies)
		}
	}
	if pass.Tree().Bounds() != world {
		t.Fatalf("tree root %v does not match world %v", pass.Tree().Bounds(), world)
	}
}

func TestRebuildMatchesIncremental(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := NewRegistry()
	pass := NewDetectionPass(r, FixedBounds(Rect(0, 0, 1000, 1000)), WithTreeOptions(quadtree.WithCapacity(2), quadtree.WithMaxDepth(5)))

	masks := []Layer{LayerPlayer, LayerEnemy, LayerEnvironment, LayerProjectile}
	handles := make([]ProxyHandle, 0, 120)
	for i := 0; i < 120; i++ {
		handles = append(handles, r.CreateProxy(ProxyOptions{
			Bounds:        Rect(rng.Float64()*950, rng.Float64()*950, 20+rng.Float64()*60, 20+rng.Float64()*60),
			LayerMask:     masks[rng.Intn(len(masks))],
			CollisionMask: masks[rng.Intn(len(masks))] | masks[rng.Intn(len(masks))],
			IsTrigger:     rng.Intn(5) == 0,
		}))
	}
	pass.Update()

	for i := 0; i < 40; i++ {
		h := handles[rng.Intn(len(handles))]
		r.SetBounds(h, Rect(rng.Float64()*950, rng.Float64()*950, 20+rng.Float64()*60, 20+rng.Float64()*60))
	}
	pass.Update()
	incremental := r.CurrentOverlaps(nil)
	if len(incremental) == 0 {
		t.Fatalf("scene should produce overlaps")
	}

	pass.ForceRebuild()
	pass.Update()
	rebuilt := r.CurrentOverlaps(nil)

	if !slices.Equal(incremental, rebuilt) {
		t.Fatalf("rebuild produced %d pairs, incremental produced %d", len(rebuilt), len(incremental))
	}
	if n := len(r.CollisionEnters(nil)) + len(r.CollisionExits(nil)); n != 0 {
		t.Fatalf("static scene should only produce stays after rebuild, got %d transitions", n)
	}
}

func TestDetectionMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r := NewRegistry()
	pass := NewDetectionPass(r, FixedBounds(Rect(0, 0, 500, 500)), WithTreeOptions(quadtree.WithCapacity(1)))
	for i := 0; i < 80; i++ {
		r.CreateProxy(ProxyOptions{Bounds: Rect(rng.Float64()*480, rng.Float64()*480, 2+rng.Float64()*30, 2+rng.Float64()*30)})
	}
	pass.Update()

	var want []CollisionPair
	handles := r.ActiveHandles()
	for i := range handles {
		for j := i + 1; j < len(handles); j++ {
			a, b := r.GetProxy(handles[i]), r.GetProxy(handles[j])
			if Overlaps(a.Bounds, b.Bounds) {
				want = append(want, MakeOrderedPair(a.Handle, b.Handle))
			}
		}
	}
	slices.SortFunc(want, comparePairs)

	if got := r.CurrentOverlaps(nil); !slices.Equal(got, want) {
		t.Fatalf("broad phase found %d pairs, brute force %d", len(got), len(want))
	}
}
