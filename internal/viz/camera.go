package viz

import (
	"math"

	"github.com/Ryneqq/nbody/internal/dynamo"
	"github.com/Ryneqq/nbody/internal/gravity"
)

const (
	minZoom = 0.01
	maxZoom = 100
	// panStep is the fraction of the visible half-extent moved per pan.
	panStep = 0.1
)

// Camera projects world positions onto the canvas. The view is centred on
// Target and shows Extent world units from the centre to the nearest canvas
// edge at zoom 1. Distance is the eye distance in the same normalised units
// and controls perspective.
type Camera struct {
	Target           dynamo.Point
	Extent           float64
	Distance, Near   float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Extent: 1, Distance: 4, Near: 0.1, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(maxZoom, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(minZoom, c.Zoom/1.2) }

// Pan moves the target by dx, dy steps in the current screen plane.
func (c *Camera) Pan(dx, dy float64) {
	step := panStep * c.Extent / c.Zoom
	right := c.unrotate(dynamo.Vec3(1, 0, 0))
	up := c.unrotate(dynamo.Vec3(0, 1, 0))
	c.Target = c.Target.Add(right.Scale(dx * step)).Add(up.Scale(dy * step))
}

// ResetView clears rotation and zoom but keeps the framing.
func (c *Camera) ResetView() {
	c.RotX, c.RotY, c.RotZ = 0, 0, 0
	c.Zoom = 1
}

// Fit frames the bounding box of bodies with a small margin.
func (c *Camera) Fit(bodies []gravity.Body) {
	if len(bodies) == 0 {
		return
	}
	lo, hi := bodies[0].Position(), bodies[0].Position()
	for _, b := range bodies[1:] {
		p := b.Position()
		lo = dynamo.Vec3(math.Min(lo.X, p.X), math.Min(lo.Y, p.Y), math.Min(lo.Z, p.Z))
		hi = dynamo.Vec3(math.Max(hi.X, p.X), math.Max(hi.Y, p.Y), math.Max(hi.Z, p.Z))
	}
	c.Target = lo.Add(hi).Scale(0.5)
	half := hi.Sub(lo).Scale(0.5)
	c.Extent = math.Max(1, 1.1*math.Max(half.X, math.Max(half.Y, half.Z)))
}

// RotatePoint rotates a point around the camera's axes.
func (c *Camera) RotatePoint(p dynamo.Vector) dynamo.Vector {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// unrotate applies the inverse of RotatePoint.
func (c *Camera) unrotate(p dynamo.Vector) dynamo.Vector {
	cz, sz := math.Cos(-c.RotZ), math.Sin(-c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	cy, sy := math.Cos(-c.RotY), math.Sin(-c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cx, sx := math.Cos(-c.RotX), math.Sin(-c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	return p
}

// Projection is a world point mapped to canvas sub-pixels.
type Projection struct {
	X, Y    int
	Radius  float64
	Depth   float64
	InFront bool
	Visible bool
}

// Project maps p with world radius r onto a sw x sh pixel screen. Points
// behind the eye are not visible; points off-screen keep their coordinates
// but are marked not visible.
func (c *Camera) Project(p dynamo.Point, r float64, sw, sh int) Projection {
	k := c.Zoom / c.Extent
	rot := c.RotatePoint(p.Sub(c.Target)).Scale(k)
	if rot.Z >= c.Distance-c.Near {
		return Projection{}
	}
	persp := c.Distance / (c.Distance - rot.Z)
	half := float64(min(sw, sh)) / 2

	sx := int(math.Round(rot.X*persp*half)) + sw/2
	sy := int(math.Round(-rot.Y*persp*half)) + sh/2
	return Projection{
		X:       sx,
		Y:       sy,
		Radius:  r * k * persp * half,
		Depth:   rot.Z,
		InFront: true,
		Visible: sx >= 0 && sx < sw && sy >= 0 && sy < sh,
	}
}
