// Package bounds provides axis-aligned bounding boxes used for culling,
// LOD selection and debug visualization.
package bounds

import (
	"errors"
	"fmt"

	"github.com/Faultbox/greed/pkg/math"
)

var (
	// ErrNoPoints is returned when a box is requested for an empty point set.
	ErrNoPoints = errors.New("bounds: no points")
	// ErrNonFinite is returned when a coordinate is NaN or infinite.
	ErrNonFinite = errors.New("bounds: non-finite coordinate")
)

// Box is an axis-aligned bounding box. Min <= Max holds component-wise for
// every box built through New, FromPoints, Transform or Union.
type Box struct {
	Min math.Vec3
	Max math.Vec3
}

// New creates a box spanning a and b, swapping components as needed.
func New(a, b math.Vec3) Box {
	return Box{Min: a.Min(b), Max: a.Max(b)}
}

// FromPoints returns the tightest box containing all points.
func FromPoints(points []math.Vec3) (Box, error) {
	if len(points) == 0 {
		return Box{}, ErrNoPoints
	}
	box := Box{Min: points[0], Max: points[0]}
	for i, p := range points {
		if !p.IsFinite() {
			return Box{}, fmt.Errorf("point %d %v: %w", i, p, ErrNonFinite)
		}
		box.Min = box.Min.Min(p)
		box.Max = box.Max.Max(p)
	}
	return box, nil
}

// Validate reports ErrNonFinite if either corner holds NaN or Inf.
func (b Box) Validate() error {
	if !b.Min.IsFinite() || !b.Max.IsFinite() {
		return fmt.Errorf("box %v..%v: %w", b.Min, b.Max, ErrNonFinite)
	}
	return nil
}

// Corners returns the 8 corners. Bit 0 of the index selects max X, bit 1
// max Y, bit 2 max Z.
func (b Box) Corners() [8]math.Vec3 {
	var c [8]math.Vec3
	for i := range c {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		c[i] = p
	}
	return c
}

// Transform returns the box enclosing all 8 transformed corners. The result
// is conservative, not tight, for rotated boxes.
func (b Box) Transform(m math.Mat4) Box {
	corners := b.Corners()
	first := m.TransformVec3(corners[0])
	out := Box{Min: first, Max: first}
	for _, c := range corners[1:] {
		p := m.TransformVec3(c)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// Union returns the smallest box containing a and b.
func Union(a, b Box) Box {
	return Box{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

// Center returns the center point of the box.
func (b Box) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent along each axis.
func (b Box) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Radius returns the bounding sphere radius (half the diagonal).
func (b Box) Radius() float32 {
	return b.Size().Length() / 2
}
