package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/milk9111/quadcollide/collision"
)

const sample = `
tree: {capacity: 4, max_depth: 3}
world: {x: -100, y: 0, width: 800, height: 600}
spawn_grace_ticks: 2
layers: [water, ladder, Player]
defaults: {layer: [default], mask: [all]}
profiles:
  swimmer: {layer: [player], mask: [water, enemy]}
  pool:    {layer: [water], mask: [player], trigger: true}
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Tree.Capacity != 4 || cfg.Tree.MaxDepth != 3 {
		t.Fatalf("tree not decoded: %+v", cfg.Tree)
	}
	if got := cfg.WorldBounds(); got != collision.Rect(-100, 0, 800, 600) {
		t.Fatalf("world bounds = %v", got)
	}

	water, err := cfg.Mask("water")
	if err != nil || water != collision.LayerTrigger<<1 {
		t.Fatalf("water = %v err=%v", water, err)
	}
	ladder, _ := cfg.Mask("LADDER")
	if ladder != collision.LayerTrigger<<2 {
		t.Fatalf("ladder = %v", ladder)
	}
	if names := cfg.LayerNames(water | collision.LayerPlayer); !slices.Equal(names, []string{"player", "water"}) {
		t.Fatalf("LayerNames = %v", names)
	}

	opts, err := cfg.ProxyOptions("pool", collision.Rect(0, 0, 50, 10))
	if err != nil {
		t.Fatalf("ProxyOptions: %v", err)
	}
	if opts.LayerMask != water || opts.CollisionMask != collision.LayerPlayer || !opts.IsTrigger {
		t.Fatalf("pool options wrong: %+v", opts)
	}

	if _, ok := cfg.Profiles["coin"]; !ok {
		t.Fatalf("default profiles should merge with file profiles")
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want error
	}{
		{"bad_capacity", "tree: {capacity: 0}", ErrInvalidTree},
		{"bad_depth", "tree: {capacity: 2, max_depth: -1}", ErrInvalidTree},
		{"bad_world", "world: {width: 0, height: 10}", ErrInvalidWorld},
		{"unknown_layer", "profiles: {ghost: {layer: [ether]}}", ErrUnknownLayer},
		{"unknown_default", "defaults: {mask: [lava]}", ErrUnknownLayer},
		{"too_many_layers", manyLayers(26), ErrTooManyLayers},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.yaml))
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
		})
	}

	if _, err := Parse([]byte("tree: [")); err == nil {
		t.Fatalf("malformed yaml should fail")
	}
	if _, err := Parse([]byte(manyLayers(25))); err != nil {
		t.Fatalf("25 custom layers should fit: %v", err)
	}
}

func manyLayers(n int) string {
	s := "layers: ["
	for i := 0; i < n; i++ {
		if i > 0 {
			s += ", "
		}
		s += "l" + string(rune('a'+i/10)) + string(rune('0'+i%10))
	}
	return s + "]"
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(cfg.TreeOptions()) != 2 || len(cfg.RegistryOptions()) != 2 {
		t.Fatalf("unexpected option counts")
	}

	reg := collision.NewRegistry(cfg.RegistryOptions()...)
	h := reg.CreateProxy(collision.ProxyOptions{})
	p := reg.GetProxy(h)
	if p.LayerMask != collision.LayerDefault || p.CollisionMask != collision.LayerAll {
		t.Fatalf("default masks not applied: %+v", p)
	}

	bullet, err := cfg.ProxyOptions("bullet", collision.Rect(0, 0, 2, 2))
	if err != nil || !bullet.Grace {
		t.Fatalf("bullet profile should spawn in grace, got %+v err=%v", bullet, err)
	}
	if _, err := cfg.ProxyOptions("dragon", collision.Rect(0, 0, 1, 1)); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}

	player, _ := cfg.ProxyOptions("player", collision.Rect(0, 0, 1, 1))
	enemy, _ := cfg.ProxyOptions("enemy", collision.Rect(0, 0, 1, 1))
	a := &collision.Proxy{LayerMask: player.LayerMask, CollisionMask: player.CollisionMask}
	b := &collision.Proxy{LayerMask: enemy.LayerMask, CollisionMask: enemy.CollisionMask}
	if !a.CanCollideWith(b) {
		t.Fatalf("default player and enemy profiles should collide")
	}
}

func TestProfileMasks(t *testing.T) {
	cfg, err := Parse([]byte(`
profiles:
  ghost:  {layer: [enemy], mask: [none]}
  hidden: {layer: [none], mask: [player]}
  crate:  {layer: [environment]}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	reg := collision.NewRegistry(cfg.RegistryOptions()...)
	create := func(profile string) collision.ProxyHandle {
		t.Helper()
		opts, err := cfg.ProxyOptions(profile, collision.Rect(0, 0, 10, 10))
		if err != nil {
			t.Fatalf("ProxyOptions(%s): %v", profile, err)
		}
		return reg.CreateProxy(opts)
	}
	player := create("player")

	cases := []struct {
		profile   string
		layer     collision.Layer
		mask      collision.Layer
		hitPlayer bool
	}{
		{"ghost", collision.LayerEnemy, collision.LayerNone, false},
		{"hidden", collision.LayerNone, collision.LayerPlayer, false},
		{"crate", collision.LayerEnvironment, collision.LayerAll, true},
	}
	for _, c := range cases {
		t.Run(c.profile, func(t *testing.T) {
			h := create(c.profile)
			p := reg.GetProxy(h)
			if p.LayerMask != c.layer || p.CollisionMask != c.mask {
				t.Fatalf("masks = %#x/%#x, want %#x/%#x", p.LayerMask, p.CollisionMask, c.layer, c.mask)
			}
			if got := reg.CanCollide(h, player); got != c.hitPlayer {
				t.Fatalf("CanCollide(player) = %v, want %v", got, c.hitPlayer)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "collision.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SpawnGraceTicks != 2 {
		t.Fatalf("spawn grace = %d", cfg.SpawnGraceTicks)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cases := []struct {
		name string
		data string
		kind FileKind
	}{
		{"collision.yaml", sample, ConfigFile},
		{"coin.tengo", "on_contact := func(engine, contact) {}", ScriptFile},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(dir, c.name)
			if err := os.WriteFile(path, []byte(c.data), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			deadline := time.After(2 * time.Second)
			for {
				select {
				case got := <-w.Events:
					if got.Path != path {
						// a late write event for an earlier file
						continue
					}
					if got.Kind != c.kind {
						t.Fatalf("%s reported as %v, want %v", path, got.Kind, c.kind)
					}
					return
				case err := <-w.Errors:
					t.Fatalf("watch error: %v", err)
				case <-deadline:
					t.Fatalf("no event for %s", path)
				}
			}
		})
	}

	for path, want := range map[string]FileKind{
		"contact.TENGO": ScriptFile,
		"world.yml":     ConfigFile,
		"notes.txt":     0,
	} {
		if got := kindOf(path); got != want {
			t.Fatalf("kindOf(%s) = %v, want %v", path, got, want)
		}
	}
}
