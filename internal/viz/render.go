package viz

import (
	"math"
	"sort"

	"github.com/Ryneqq/nbody/internal/gravity"
)

type RenderOptions struct {
	// Velocities draws each body's per-tick displacement, scaled by
	// VelocityScale.
	Velocities    bool
	VelocityScale float64
}

// RenderBodies draws bodies as discs sized by radius, farthest first, and
// returns how many were visible.
func RenderBodies(c *Canvas, bodies []gravity.Body, cam *Camera, opts RenderOptions) int {
	if c == nil || cam == nil {
		return 0
	}
	sw, sh := c.PixelSize()

	type item struct {
		p, tip Projection
	}
	items := make([]item, 0, len(bodies))
	for _, b := range bodies {
		p := cam.Project(b.Position(), b.Radius(), sw, sh)
		if !p.Visible {
			continue
		}
		it := item{p: p}
		if opts.Velocities {
			scale := opts.VelocityScale
			if scale == 0 {
				scale = 1
			}
			it.tip = cam.Project(b.Position().Add(b.Velocity().Scale(scale)), 0, sw, sh)
		}
		items = append(items, it)
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].p.Depth < items[j].p.Depth })
	for _, it := range items {
		c.FillCircle(it.p.X, it.p.Y, int(math.Round(math.Max(it.p.Radius, 0))))
		if opts.Velocities && it.tip.InFront {
			c.DrawLine(it.p.X, it.p.Y, it.tip.X, it.tip.Y)
		}
	}
	return len(items)
}
