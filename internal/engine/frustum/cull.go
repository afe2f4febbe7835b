package frustum

import (
	"github.com/Faultbox/greed/internal/engine/bounds"
	"github.com/Faultbox/greed/pkg/math"
)

// planeOrder tests near and far first; they reject the most geometry in
// typical scenes.
var planeOrder = [6]int{Near, Far, Left, Right, Bottom, Top}

// IsVisible reports whether box may intersect the frustum described by planes
// and corners. It can return true for a box that is actually outside (rare,
// near frustum edges) but never false for a box that intersects the volume.
func IsVisible(planes *[6]math.Vec4, corners *[8]math.Vec3, box bounds.Box) bool {
	boxCorners := box.Corners()

	for _, pi := range planeOrder {
		p := planes[pi]
		outside := 0
		for _, c := range boxCorners {
			if p.PlaneDistance(c) < 0 {
				outside++
			}
		}
		if outside == len(boxCorners) {
			return false
		}
	}

	// The plane test alone misses large boxes that straddle two planes
	// outside the frustum; check the frustum corners against each box face.
	var out [6]int
	for _, c := range corners {
		if c.X > box.Max.X {
			out[0]++
		}
		if c.X < box.Min.X {
			out[1]++
		}
		if c.Y > box.Max.Y {
			out[2]++
		}
		if c.Y < box.Min.Y {
			out[3]++
		}
		if c.Z > box.Max.Z {
			out[4]++
		}
		if c.Z < box.Min.Z {
			out[5]++
		}
	}
	for _, n := range out {
		if n == len(corners) {
			return false
		}
	}
	return true
}

// Contains is IsVisible against f. A degenerate frustum contains everything.
func (f *Frustum) Contains(box bounds.Box) bool {
	if f.Degenerate {
		return true
	}
	return IsVisible(&f.Planes, &f.Corners, box)
}
