// Package config loads the collision settings of a game from YAML: partition
// parameters, world bounds, named layers and reusable proxy profiles.
package config

import (
	"errors"
	"fmt"
	"math/bits"
	"os"
	"sort"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/quadcollide/collision"
	"github.com/milk9111/quadcollide/quadtree"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownLayer   = errors.New("config: unknown layer")
	ErrUnknownProfile = errors.New("config: unknown profile")
	ErrInvalidTree    = errors.New("config: invalid tree settings")
	ErrInvalidWorld   = errors.New("config: invalid world bounds")
	ErrTooManyLayers  = errors.New("config: too many layers")
)

// firstCustomLayer is the bit given to the first layer name that is not
// predefined.
const firstCustomLayer = collision.LayerTrigger << 1

var builtinLayers = map[string]collision.Layer{
	"default":     collision.LayerDefault,
	"player":      collision.LayerPlayer,
	"enemy":       collision.LayerEnemy,
	"environment": collision.LayerEnvironment,
	"projectile":  collision.LayerProjectile,
	"pickup":      collision.LayerPickup,
	"trigger":     collision.LayerTrigger,
	"all":         collision.LayerAll,
	"none":        collision.LayerNone,
}

type TreeConfig struct {
	Capacity int `yaml:"capacity"`
	MaxDepth int `yaml:"max_depth"`
}

type WorldConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Profile describes a kind of proxy by layer names.
type Profile struct {
	Layer   []string `yaml:"layer"`
	Mask    []string `yaml:"mask"`
	Trigger bool     `yaml:"trigger"`
	Grace   bool     `yaml:"grace"`
}

type Config struct {
	Tree            TreeConfig         `yaml:"tree"`
	World           WorldConfig        `yaml:"world"`
	SpawnGraceTicks int                `yaml:"spawn_grace_ticks"`
	Layers          []string           `yaml:"layers"`
	Defaults        Profile            `yaml:"defaults"`
	Profiles        map[string]Profile `yaml:"profiles"`

	layers map[string]collision.Layer
}

// Default returns the settings used when no file is given.
func Default() *Config {
	cfg := &Config{
		Tree:            TreeConfig{Capacity: quadtree.DefaultCapacity, MaxDepth: quadtree.DefaultMaxDepth},
		World:           WorldConfig{Width: 1280, Height: 720},
		SpawnGraceTicks: 1,
		Defaults:        Profile{Layer: []string{"default"}, Mask: []string{"all"}},
		Profiles: map[string]Profile{
			"player": {Layer: []string{"player"}, Mask: []string{"enemy", "environment", "pickup", "trigger"}},
			"enemy":  {Layer: []string{"enemy"}, Mask: []string{"player", "projectile", "environment"}},
			"wall":   {Layer: []string{"environment"}, Mask: []string{"player", "enemy", "projectile"}},
			"bullet": {Layer: []string{"projectile"}, Mask: []string{"enemy", "environment"}, Grace: true},
			"coin":   {Layer: []string{"pickup"}, Mask: []string{"player"}, Trigger: true},
		},
	}
	_ = cfg.Validate()
	return cfg
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data on top of Default and validates the result. Keys missing
// from data keep their default values; profiles are merged by name.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings and resolves layer names to bits.
func (c *Config) Validate() error {
	if c.Tree.Capacity <= 0 || c.Tree.MaxDepth < 0 {
		return fmt.Errorf("%w: capacity %d, max_depth %d", ErrInvalidTree, c.Tree.Capacity, c.Tree.MaxDepth)
	}
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("%w: %gx%g", ErrInvalidWorld, c.World.Width, c.World.Height)
	}
	if c.SpawnGraceTicks < 0 {
		return fmt.Errorf("config: spawn_grace_ticks must not be negative, got %d", c.SpawnGraceTicks)
	}

	layers := make(map[string]collision.Layer, len(builtinLayers)+len(c.Layers))
	for name, bit := range builtinLayers {
		layers[name] = bit
	}
	next := firstCustomLayer
	for _, raw := range c.Layers {
		name := normalize(raw)
		if _, ok := layers[name]; ok {
			continue
		}
		if next == 0 {
			return fmt.Errorf("%w: no bit left for %q", ErrTooManyLayers, raw)
		}
		layers[name] = next
		next <<= 1
	}
	c.layers = layers

	if _, err := c.Mask(c.Defaults.Layer...); err != nil {
		return fmt.Errorf("config: defaults: %w", err)
	}
	if _, err := c.Mask(c.Defaults.Mask...); err != nil {
		return fmt.Errorf("config: defaults: %w", err)
	}
	for _, name := range c.ProfileNames() {
		p := c.Profiles[name]
		if _, err := c.Mask(p.Layer...); err != nil {
			return fmt.Errorf("config: profile %s: %w", name, err)
		}
		if _, err := c.Mask(p.Mask...); err != nil {
			return fmt.Errorf("config: profile %s: %w", name, err)
		}
	}
	return nil
}

// Mask ORs the bits of the named layers. Names are case-insensitive.
func (c *Config) Mask(names ...string) (collision.Layer, error) {
	var m collision.Layer
	for _, raw := range names {
		bit, ok := c.layer(normalize(raw))
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrUnknownLayer, raw)
		}
		m |= bit
	}
	return m, nil
}

// LayerNames returns the names of the bits set in m, lowest bit first.
func (c *Config) LayerNames(m collision.Layer) []string {
	if m == collision.LayerAll {
		return []string{"all"}
	}
	var out []string
	for m != 0 {
		bit := collision.Layer(1) << bits.TrailingZeros32(uint32(m))
		m &^= bit
		for name, b := range c.layerTable() {
			if b == bit {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

// ProfileNames returns the profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProxyOptions builds creation options for the named profile at bounds. A
// profile without layer or mask names takes them from Defaults, then from the
// built-in default and all; "none" means no bits at all.
func (c *Config) ProxyOptions(profile string, bounds cp.BB) (collision.ProxyOptions, error) {
	p, ok := c.Profiles[profile]
	if !ok {
		return collision.ProxyOptions{}, fmt.Errorf("%w %q", ErrUnknownProfile, profile)
	}
	layerNames, maskNames := p.Layer, p.Mask
	if len(layerNames) == 0 {
		layerNames = c.Defaults.Layer
	}
	if len(maskNames) == 0 {
		maskNames = c.Defaults.Mask
	}
	layer, err := c.Mask(layerNames...)
	if err != nil {
		return collision.ProxyOptions{}, fmt.Errorf("config: profile %s: %w", profile, err)
	}
	mask, err := c.Mask(maskNames...)
	if err != nil {
		return collision.ProxyOptions{}, fmt.Errorf("config: profile %s: %w", profile, err)
	}
	if len(layerNames) == 0 {
		layer = collision.LayerDefault
	}
	if len(maskNames) == 0 {
		mask = collision.LayerAll
	}
	return collision.ProxyOptions{
		Bounds:        bounds,
		LayerMask:     layer,
		CollisionMask: mask,
		ExplicitMasks: true,
		IsTrigger:     p.Trigger,
		Grace:         p.Grace,
	}, nil
}

// TreeOptions returns the partition settings.
func (c *Config) TreeOptions() []quadtree.Option {
	return []quadtree.Option{
		quadtree.WithCapacity(c.Tree.Capacity),
		quadtree.WithMaxDepth(c.Tree.MaxDepth),
	}
}

// RegistryOptions returns the default masks and spawn grace. Empty default
// lists keep the registry's own defaults.
func (c *Config) RegistryOptions() []collision.RegistryOption {
	layer, mask := collision.LayerDefault, collision.LayerAll
	if len(c.Defaults.Layer) > 0 {
		layer, _ = c.Mask(c.Defaults.Layer...)
	}
	if len(c.Defaults.Mask) > 0 {
		mask, _ = c.Mask(c.Defaults.Mask...)
	}
	return []collision.RegistryOption{
		collision.WithDefaultMasks(layer, mask),
		collision.WithSpawnGrace(c.SpawnGraceTicks),
	}
}

// WorldBounds returns the world rectangle. It makes Config a
// collision.WorldBounds.
func (c *Config) WorldBounds() cp.BB {
	return collision.Rect(c.World.X, c.World.Y, c.World.Width, c.World.Height)
}

func (c *Config) layer(name string) (collision.Layer, bool) {
	bit, ok := c.layerTable()[name]
	return bit, ok
}

func (c *Config) layerTable() map[string]collision.Layer {
	if c.layers == nil {
		return builtinLayers
	}
	return c.layers
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
