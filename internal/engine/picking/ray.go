// Package picking casts rays from the screen into the scene.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/greed/internal/engine/bounds"
	"github.com/Faultbox/greed/pkg/math"
)

// Ray is a half-line with a normalized direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ScreenToRay converts pixel coordinates to a world-space ray starting on the
// near plane. ok is false when viewProj cannot be inverted.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, viewProj math.Mat4) (Ray, bool) {
	inv, ok := viewProj.InverseOK()
	if !ok || viewportW <= 0 || viewportH <= 0 {
		return Ray{}, false
	}

	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH // screen Y grows downward

	near, ok := unproject(inv, ndcX, ndcY, -1)
	if !ok {
		return Ray{}, false
	}
	far, ok := unproject(inv, ndcX, ndcY, 1)
	if !ok {
		return Ray{}, false
	}

	dir := far.Sub(near)
	if dir.Length() == 0 {
		return Ray{}, false
	}
	return Ray{Origin: near, Direction: dir.Normalize()}, true
}

func unproject(inv math.Mat4, x, y, z float32) (math.Vec3, bool) {
	p := inv.MulVec4(math.Vec4{x, y, z, 1})
	if p[3] == 0 {
		return math.Vec3{}, false
	}
	return p.XYZ().Scale(1 / p[3]), true
}

// IntersectBox runs the slab test against box. It returns the entry distance,
// or the exit distance when the ray starts inside.
func (r Ray) IntersectBox(box bounds.Box) (t float32, hit bool) {
	origin, dir := r.Origin.Arr(), r.Direction.Arr()
	lo, hi := box.Min.Arr(), box.Max.Arr()

	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)
	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
