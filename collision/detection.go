package collision

import (
	"log"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/quadcollide/quadtree"
)

// WorldBounds supplies the simulated world rectangle. It is read every tick.
type WorldBounds interface {
	WorldBounds() cp.BB
}

// WorldBoundsFunc adapts a function to WorldBounds.
type WorldBoundsFunc func() cp.BB

func (f WorldBoundsFunc) WorldBounds() cp.BB {
	return f()
}

// FixedBounds is a world that never resizes.
type FixedBounds cp.BB

func (b FixedBounds) WorldBounds() cp.BB {
	return cp.BB(b)
}

// DetectionPass keeps the partition in step with the registry and records
// this tick's overlaps.
type DetectionPass struct {
	reg   *Registry
	world WorldBounds
	tree  *quadtree.Tree[ProxyHandle]

	bounds       cp.BB
	synced       bool
	forceRebuild bool

	candidates []quadtree.Item[ProxyHandle]

	stats  Stats
	logger *log.Logger
}

// DetectionOption configures a DetectionPass.
type DetectionOption func(*detectionConfig)

type detectionConfig struct {
	treeOpts []quadtree.Option
	stats    Stats
	logger   *log.Logger
}

// WithTreeOptions passes capacity and depth settings to the partition.
func WithTreeOptions(opts ...quadtree.Option) DetectionOption {
	return func(c *detectionConfig) {
		c.treeOpts = append(c.treeOpts, opts...)
	}
}

// WithDetectionStats reports every pass to s.
func WithDetectionStats(s Stats) DetectionOption {
	return func(c *detectionConfig) {
		c.stats = s
	}
}

// WithDetectionLogger logs partition rebuilds.
func WithDetectionLogger(l *log.Logger) DetectionOption {
	return func(c *detectionConfig) {
		c.logger = l
	}
}

// NewDetectionPass creates a pass over reg. The partition is sized from world
// on the first Update.
func NewDetectionPass(reg *Registry, world WorldBounds, opts ...DetectionOption) *DetectionPass {
	var cfg detectionConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &DetectionPass{
		reg:    reg,
		world:  world,
		tree:   quadtree.New[ProxyHandle](cp.BB{}, cfg.treeOpts...),
		stats:  cfg.stats,
		logger: cfg.logger,
	}
}

// Tree exposes the partition for debug drawing. Callers must not mutate it.
func (d *DetectionPass) Tree() *quadtree.Tree[ProxyHandle] {
	if d == nil {
		return nil
	}
	return d.tree
}

// ForceRebuild makes the next Update rebuild the partition from scratch.
func (d *DetectionPass) ForceRebuild() {
	if d == nil {
		return
	}
	d.forceRebuild = true
}

// Update runs one tick: resync the partition, swap frames, run broad phase
// and clear the dirty list.
func (d *DetectionPass) Update() {
	if d == nil || d.reg == nil {
		return
	}
	start := time.Now()

	bounds := d.bounds
	if d.world != nil {
		bounds = d.world.WorldBounds()
	}
	rebuild := d.forceRebuild || !d.synced || bounds != d.bounds

	d.reg.SwapFrames()
	if rebuild {
		d.rebuild(bounds)
	} else {
		d.refresh()
	}
	pairs := d.detect()
	d.reg.ClearDirtyFlags()
	d.reg.tickGrace()

	if d.stats != nil {
		d.stats.ObserveDetection(DetectionStats{
			Duration: time.Since(start),
			Proxies:  d.tree.Len(),
			Pairs:    pairs,
			Rebuild:  rebuild,
		})
	}
}

func (d *DetectionPass) rebuild(bounds cp.BB) {
	if d.logger != nil && d.synced && bounds != d.bounds {
		d.logger.Printf("collision: world bounds changed to %v, rebuilding partition", bounds)
	}
	d.tree.Reset(bounds)
	d.reg.takeRemoved()
	for i := range d.reg.proxies.values {
		p := &d.reg.proxies.values[i]
		if !p.Enabled {
			continue
		}
		d.tree.Insert(quadtree.Item[ProxyHandle]{Key: p.Handle, Bounds: p.Bounds})
	}
	d.bounds = bounds
	d.synced = true
	d.forceRebuild = false
}

// refresh moves only the proxies that changed; everything else stays where it
// is in the tree.
func (d *DetectionPass) refresh() {
	for _, h := range d.reg.takeRemoved() {
		d.tree.Remove(h)
	}
	for _, h := range d.reg.dirty {
		p := d.reg.proxies.get(h)
		if p == nil {
			continue
		}
		d.tree.Update(quadtree.Item[ProxyHandle]{Key: h, Bounds: p.Bounds}, p.Enabled)
	}
}

// detect tests each unordered pair once, from the lower handle.
func (d *DetectionPass) detect() int {
	pairs := 0
	for i := range d.reg.proxies.values {
		a := &d.reg.proxies.values[i]
		if !a.Enabled || a.Grace > 0 {
			continue
		}
		d.candidates = d.tree.Query(a.Bounds, d.candidates[:0])
		for _, c := range d.candidates {
			if c.Key <= a.Handle {
				continue
			}
			b := d.reg.proxies.get(c.Key)
			if b == nil || !b.Enabled || b.Grace > 0 {
				continue
			}
			if !a.CanCollideWith(b) || !Overlaps(a.Bounds, b.Bounds) {
				continue
			}
			d.reg.RecordOverlap(a.Handle, b.Handle, a.IsTrigger || b.IsTrigger)
			pairs++
		}
	}
	return pairs
}
