package world

import "github.com/go-gl/mathgl/mgl64"

// Vec2 is the planar vector used for agent positions and velocities.
type Vec2 = mgl64.Vec2

// Rect is an axis-aligned rectangle. Top is the low Y bound and Bottom the
// high Y bound, matching screen-style coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// NewRect builds a rectangle from an origin and a size.
func NewRect(x, y, width, height float64) Rect {
	return Rect{Left: x, Top: y, Right: x + width, Bottom: y + height}
}

// Width returns the horizontal span.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the vertical span.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Valid reports whether both spans are strictly positive.
func (r Rect) Valid() bool {
	return r.Width() > 0 && r.Height() > 0
}

// Contains reports whether p lies inside the rectangle, edges included.
func (r Rect) Contains(p Vec2) bool {
	return p.X() >= r.Left && p.X() <= r.Right && p.Y() >= r.Top && p.Y() <= r.Bottom
}

// Clamp moves p onto the nearest point inside the rectangle.
func (r Rect) Clamp(p Vec2) Vec2 {
	return Vec2{
		mgl64.Clamp(p.X(), r.Left, r.Right),
		mgl64.Clamp(p.Y(), r.Top, r.Bottom),
	}
}

// Distance is the Euclidean distance between two points.
func Distance(a, b Vec2) float64 {
	return a.Sub(b).Len()
}
