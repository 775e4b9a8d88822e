package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/quadcollide/collision"
	"github.com/milk9111/quadcollide/config"
	"github.com/milk9111/quadcollide/ecs"
	"github.com/milk9111/quadcollide/ecs/system"
	"github.com/milk9111/quadcollide/metrics"
	"github.com/milk9111/quadcollide/script"
)

type Options struct {
	ConfigPath string
	ScriptPath string
	Debug      bool
	Metrics    *metrics.Collector
	Logger     *log.Logger
}

type Game struct {
	opts    Options
	logger  *log.Logger
	watcher *config.Watcher

	cfg    *config.Config
	coin   *script.Listener
	scene  *scene
	width  float64
	height float64

	frames  int
	score   int
	coins   int
	overlay bool
}

var _ script.Host = (*Game)(nil)

func NewGame(opts Options) (*Game, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	g := &Game{opts: opts, logger: opts.Logger, overlay: true}

	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	g.cfg = cfg

	src, err := readOr(opts.ScriptPath, defaultCoinScript)
	if err != nil {
		return nil, fmt.Errorf("sandbox: read script: %w", err)
	}
	name := opts.ScriptPath
	if name == "" {
		name = "coin.tengo"
	}
	g.coin, err = script.New(src, g, script.WithName(name), script.WithLogger(g.logger))
	if err != nil {
		return nil, err
	}

	g.rebuild()
	g.watch()
	return g, nil
}

func (g *Game) loadConfig() (*config.Config, error) {
	if g.opts.ConfigPath == "" {
		return config.Parse(defaultConfig)
	}
	return config.Load(g.opts.ConfigPath)
}

// rebuild replaces the scene with a fresh one built from the current config.
func (g *Game) rebuild() {
	var stats collision.Stats
	if g.opts.Metrics != nil {
		stats = g.opts.Metrics
	}
	g.scene = newScene(sceneOptions{
		cfg:      g.cfg,
		listener: g.coin,
		stats:    stats,
		debug:    g.opts.Debug,
		logger:   g.logger,
	})
	bb := g.cfg.WorldBounds()
	g.width, g.height = bb.R-bb.L, bb.T-bb.B
	g.score, g.coins = 0, 0
	g.logger.Printf("world rebuilt: %v, %d proxies", bb, g.scene.pipeline.Registry.Len())
}

func (g *Game) watch() {
	var dirs []string
	seen := map[string]bool{}
	for _, p := range []string{g.opts.ConfigPath, g.opts.ScriptPath} {
		if p == "" {
			continue
		}
		dir := filepath.Dir(p)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return
	}
	w, err := config.NewWatcher(dirs...)
	if err != nil {
		g.logger.Printf("hot reload disabled: %v", err)
		return
	}
	g.watcher = w
}

func (g *Game) Close() error {
	if g.watcher == nil {
		return nil
	}
	return g.watcher.Close()
}

// reload applies the file changes the watcher reported since last frame.
func (g *Game) reload() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.apply(change)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.logger.Printf("watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) apply(change config.Change) {
	path := change.Path
	switch {
	case change.Kind == config.ScriptFile && samePath(path, g.opts.ScriptPath):
		src, err := os.ReadFile(path)
		if err != nil {
			g.logger.Printf("reload %s: %v", path, err)
			return
		}
		if err := g.coin.Reload(src); err != nil {
			g.logger.Printf("reload %s: %v", path, err)
			return
		}
		g.logger.Printf("reloaded %s", path)
	case change.Kind == config.ConfigFile && samePath(path, g.opts.ConfigPath):
		cfg, err := config.Load(path)
		if err != nil {
			g.logger.Printf("reload %s: %v, keeping the old config", path, err)
			return
		}
		g.cfg = cfg
		g.rebuild()
	}
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func (g *Game) Update() error {
	g.frames++
	g.reload()

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.overlay = !g.overlay
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.rebuild()
	}

	var dx, dy float64
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dx -= playerSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dx += playerSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dy -= playerSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dy += playerSpeed
	}
	g.scene.move(dx, dy)
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.scene.fire()
	}

	g.scene.update()
	g.drainEvents()
	return nil
}

// drainEvents consumes what the gameplay systems left in the queue.
func (g *Game) drainEvents() {
	for _, evt := range g.scene.world.Events().Drain() {
		switch evt.Type {
		case "coin_collected":
			g.coins++
			g.score++
		case ecs.EventPickup:
			if p, ok := evt.Data.(system.PickupEvent); ok {
				g.score += p.Score
			}
		case ecs.EventDamage:
			if d, ok := evt.Data.(system.DamageEvent); ok && evt.Entity == g.scene.player {
				g.logger.Printf("player hit for %d, %d left", d.Amount, d.Left)
			}
		case ecs.EventDeath:
			if evt.Entity == g.scene.player {
				g.logger.Printf("player died, rebuilding")
				g.rebuild()
				return
			}
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.draw(screen, g.overlay)

	hp, _ := g.scene.playerHealth()
	reg := g.scene.pipeline.Registry
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf(
		"FPS: %.1f  proxies: %d  contacts: %d  nodes: %d\nHP: %d  score: %d  coins: %d\nWASD move, space fire, R reset, F1 overlay",
		ebiten.ActualFPS(), reg.Len(), len(reg.CurrentOverlaps(nil)), g.scene.nodeCount(), hp, g.score, g.coins,
	), 8, 8)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return g.width, g.height
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// Destroy, Emit and Tag forward script calls to the current scene, so the
// coin script survives world rebuilds.
func (g *Game) Destroy(h collision.ProxyHandle) bool {
	return g.scene.host.Destroy(h)
}

func (g *Game) Emit(name string, self collision.ProxyHandle, arg any) {
	g.scene.host.Emit(name, self, arg)
}

func (g *Game) Tag(h collision.ProxyHandle) string {
	return g.scene.host.Tag(h)
}
