package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"

	"github.com/milk9111/quadcollide/collision"
)

var background = color.RGBA{R: 0x14, G: 0x16, B: 0x1c, A: 0xff}

// draw renders every proxy, coloured by its contact state, and with overlay
// set the quadtree nodes underneath.
func (s *scene) draw(screen *ebiten.Image, overlay bool) {
	screen.Fill(background)
	reg := s.pipeline.Registry

	if overlay {
		s.pipeline.Detection.Tree().Walk(func(bb cp.BB, depth, items int) {
			c := colornames.Dimgray
			if items > 0 {
				c = colornames.Slategray
			}
			strokeBB(screen, bb, 1, c)
		})
	}

	touching := make(map[collision.ProxyHandle]bool)
	for _, p := range reg.CurrentOverlaps(nil) {
		touching[p.A] = true
		touching[p.B] = true
	}

	for _, h := range reg.ActiveHandles() {
		p := reg.GetProxy(h)
		if p == nil {
			continue
		}
		c := proxyColor(p, touching[h])
		if p.IsTrigger {
			strokeBB(screen, p.Bounds, 2, c)
			continue
		}
		vector.DrawFilledRect(screen, float32(p.Bounds.L), float32(p.Bounds.B),
			float32(p.Bounds.R-p.Bounds.L), float32(p.Bounds.T-p.Bounds.B), c, false)
	}
}

func proxyColor(p *collision.Proxy, touching bool) color.Color {
	switch {
	case !p.Enabled || p.Grace > 0:
		return colornames.Gray
	case touching:
		return colornames.Orangered
	case p.IsTrigger:
		return colornames.Gold
	case p.LayerMask&collision.LayerPlayer != 0:
		return colornames.Deepskyblue
	case p.LayerMask&collision.LayerEnemy != 0:
		return colornames.Mediumorchid
	case p.LayerMask&collision.LayerEnvironment != 0:
		return colornames.Darkolivegreen
	default:
		return colornames.Lightgreen
	}
}

func strokeBB(screen *ebiten.Image, bb cp.BB, width float32, c color.Color) {
	vector.StrokeRect(screen, float32(bb.L), float32(bb.B), float32(bb.R-bb.L), float32(bb.T-bb.B), width, c, false)
}

func (s *scene) nodeCount() int {
	n := 0
	s.pipeline.Detection.Tree().Walk(func(cp.BB, int, int) { n++ })
	return n
}
