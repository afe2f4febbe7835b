// Package frustum extracts view frustum planes and corners from a
// view-projection matrix and classifies bounding boxes against them.
package frustum

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/greed/pkg/math"
)

// Plane indices.
const (
	Left = iota
	Right
	Bottom
	Top
	Near
	Far
)

// minW is the smallest |w| accepted when de-homogenizing corners.
const minW = 1e-7

// Frustum holds the six clip planes and eight corner points of a camera
// volume. Points inside satisfy a*x + b*y + c*z + d >= 0 for every plane.
type Frustum struct {
	Planes  [6]math.Vec4
	Corners [8]math.Vec3

	// Degenerate is set when the corners could not be computed. Culling
	// against a degenerate frustum must treat everything as visible.
	Degenerate bool
}

// Extract derives the planes with the Gribb/Hartmann method and the corners
// by unprojecting the clip-space unit cube. viewProj follows the OpenGL
// clip-space convention (z in [-1, 1]).
func Extract(viewProj math.Mat4) Frustum {
	var f Frustum

	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)
	f.Planes[Left] = normalizePlane(r3.Add(r0))
	f.Planes[Right] = normalizePlane(r3.Sub(r0))
	f.Planes[Bottom] = normalizePlane(r3.Add(r1))
	f.Planes[Top] = normalizePlane(r3.Sub(r1))
	f.Planes[Near] = normalizePlane(r3.Add(r2))
	f.Planes[Far] = normalizePlane(r3.Sub(r2))

	inv, ok := viewProj.InverseOK()
	if !ok {
		f.Degenerate = true
		return f
	}

	// Corner index bits select +1 on x (bit 0), y (bit 1) and z (bit 2).
	for i := range f.Corners {
		clip := math.Vec4{-1, -1, -1, 1}
		if i&1 != 0 {
			clip[0] = 1
		}
		if i&2 != 0 {
			clip[1] = 1
		}
		if i&4 != 0 {
			clip[2] = 1
		}
		p := inv.MulVec4(clip)
		if math32.Abs(p[3]) < minW {
			f.Degenerate = true
			return f
		}
		c := p.XYZ().Scale(1 / p[3])
		if !c.IsFinite() {
			f.Degenerate = true
			return f
		}
		f.Corners[i] = c
	}

	for _, p := range f.Planes {
		if !p.XYZ().IsFinite() || math32.IsNaN(p[3]) {
			f.Degenerate = true
			break
		}
	}
	return f
}

func normalizePlane(p math.Vec4) math.Vec4 {
	l := p.XYZ().Length()
	if l == 0 {
		return p
	}
	return p.Scale(1 / l)
}
