// Package geom holds the 2D geometry shared by nodes and views: positions,
// sizes, and the rounded frame shape used for hit-testing.
package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Vec is a 2D coordinate in document space.
type Vec = v2.Vec

// V is shorthand for Vec{X: x, Y: y}.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Size is a width/height pair. Negative components are representable so
// that callers can detect degenerate layouts before they are applied.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// S is shorthand for Size{W: w, H: h}.
func S(w, h float64) Size {
	return Size{W: w, H: h}
}

// Vec returns the size as a vector.
func (s Size) Vec() Vec {
	return Vec{X: s.W, Y: s.H}
}

// Negative reports whether either component is below zero.
func (s Size) Negative() bool {
	return s.W < 0 || s.H < 0
}

// Clamp returns s with negative components replaced by zero.
func (s Size) Clamp() Size {
	return Size{W: math.Max(s.W, 0), H: math.Max(s.H, 0)}
}

// Empty reports whether the size encloses no area.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.W, s.H)
}

// Frame is a rounded rectangle whose minimum corner sits at the origin of
// the owning node.
type Frame struct {
	Size   Size
	Radius float64
}

// Bounds returns the frame's bounding box when its corner is placed at at.
func (f Frame) Bounds(at Vec) sdf.Box2 {
	return sdf.Box2{Min: at, Max: at.Add(f.Size.Vec())}
}

// Contains reports whether p lies inside the frame placed at at, honouring
// the rounded corners. Empty frames contain nothing.
func (f Frame) Contains(at, p Vec) bool {
	if f.Size.Empty() {
		return false
	}
	if !f.Bounds(at).Contains(p) {
		return false
	}
	r := math.Min(f.Radius, math.Min(f.Size.W, f.Size.H)/2)
	if r <= 0 {
		return true
	}
	shape := sdf.Box2D(f.Size.Vec(), r)
	center := at.Add(f.Size.Vec().MulScalar(0.5))
	return shape.Evaluate(p.Sub(center)) <= 0
}
