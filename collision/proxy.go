package collision

import (
	"strconv"

	"github.com/jakecoffman/cp"
)

// ProxyHandle identifies a proxy. Handles are allocated in increasing order and
// never reused while the registry that issued them is alive.
type ProxyHandle uint32

// InvalidHandle is never issued by a registry.
const InvalidHandle ProxyHandle = 0

func (h ProxyHandle) Valid() bool {
	return h != InvalidHandle
}

func (h ProxyHandle) String() string {
	return strconv.FormatUint(uint64(h), 10)
}

// Layer is a collision category bitmask.
type Layer uint32

const (
	LayerDefault Layer = 1 << iota
	LayerPlayer
	LayerEnemy
	LayerEnvironment
	LayerProjectile
	LayerPickup
	LayerTrigger
)

const (
	LayerNone Layer = 0
	LayerAll  Layer = ^Layer(0)
)

// Proxy is the collision record standing in for a gameplay object.
type Proxy struct {
	Handle         ProxyHandle
	Bounds         cp.BB
	PreviousBounds cp.BB
	Enabled        bool
	IsTrigger      bool
	// Dirty is set from creation until the partition has seen the proxy, and
	// again every time Bounds changes.
	Dirty bool
	// LayerMask is what the proxy is; CollisionMask is what it can hit.
	LayerMask     Layer
	CollisionMask Layer
	UserData      any
	// Grace counts the ticks the proxy still sits out of broad phase after a
	// spawn or respawn.
	Grace int
}

// CanCollideWith reports whether both proxies accept each other's layer.
func (p *Proxy) CanCollideWith(other *Proxy) bool {
	if p == nil || other == nil {
		return false
	}
	return p.LayerMask&other.CollisionMask != 0 && other.LayerMask&p.CollisionMask != 0
}

// ProxyOptions describes a proxy at creation time. Zero masks fall back to the
// registry defaults unless ExplicitMasks is set.
type ProxyOptions struct {
	Bounds        cp.BB
	LayerMask     Layer
	CollisionMask Layer
	// ExplicitMasks uses both masks as given, so a zero mask collides with
	// nothing.
	ExplicitMasks bool
	IsTrigger     bool
	Disabled      bool
	// Grace starts the proxy in its spawn grace period.
	Grace    bool
	UserData any
}

// Rect builds a bounding box from an origin and a size.
func Rect(x, y, w, h float64) cp.BB {
	return cp.BB{L: x, B: y, R: x + w, T: y + h}
}

// Overlaps is the broad-phase test. Boxes that only share an edge do not
// overlap.
func Overlaps(a, b cp.BB) bool {
	return a.L < b.R && b.L < a.R && a.B < b.T && b.B < a.T
}
