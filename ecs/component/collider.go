package component

import "github.com/milk9111/quadcollide/collision"

// Collider gives an entity a collision proxy. Bounds are relative to the
// Transform. Profile names a config profile; an empty profile uses the
// registry defaults.
type Collider struct {
	Width    float64
	Height   float64
	OffsetX  float64
	OffsetY  float64
	Profile  string
	Disabled bool

	// Proxy is filled in by the collider sync system.
	Proxy collision.ProxyHandle
}

var ColliderComponent = NewComponent[Collider]()
