package viz

import "math"

type Vec3 struct {
	X, Y, Z float64
}

// Vec3From takes the first three axes of a position, padding with zeros.
func Vec3From(p []float64) Vec3 {
	var v Vec3
	if len(p) > 0 {
		v.X = p[0]
	}
	if len(p) > 1 {
		v.Y = p[1]
	}
	if len(p) > 2 {
		v.Z = p[2]
	}
	return v
}

func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Camera orbits a point and projects orthographically onto the screen.
type Camera struct {
	Center     Vec3
	RotX, RotY float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(50, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.02, c.Zoom/1.2) }

func (c *Camera) rotate(p Vec3) Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	return p
}

// Project maps world coordinates onto a w x h dot grid with y pointing up,
// scale being the world-to-dot factor at zoom 1. It also returns depth.
func (c *Camera) Project(p Vec3, w, h int, scale float64) (int, int, float64) {
	r := c.rotate(p.Sub(c.Center)).Scale(c.Zoom * scale)
	x := w/2 + int(math.Round(r.X))
	y := h/2 - int(math.Round(r.Y))
	return x, y, r.Z
}

// Fit centres the camera on the bounding box of points and returns the
// world-to-dot scale that makes it fill a w x h grid.
func (c *Camera) Fit(points [][]float64, w, h int) float64 {
	if len(points) == 0 {
		return 1
	}

	lo, hi := Vec3From(points[0]), Vec3From(points[0])
	for _, p := range points[1:] {
		v := Vec3From(p)
		lo = Vec3{math.Min(lo.X, v.X), math.Min(lo.Y, v.Y), math.Min(lo.Z, v.Z)}
		hi = Vec3{math.Max(hi.X, v.X), math.Max(hi.Y, v.Y), math.Max(hi.Z, v.Z)}
	}
	c.Center = Vec3{(lo.X + hi.X) / 2, (lo.Y + hi.Y) / 2, (lo.Z + hi.Z) / 2}

	span := math.Max(math.Max(hi.X-lo.X, hi.Y-lo.Y), hi.Z-lo.Z)
	if span == 0 {
		span = 1
	}
	return 0.9 * math.Min(float64(w), float64(h)) / span
}
