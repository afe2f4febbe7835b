package level

import (
	"github.com/Faultbox/greed/internal/engine/scene"
	"github.com/Faultbox/greed/pkg/math"
)

// Spinner is a kinematic body turning its node around an axis at a fixed
// rate. Advance must be called once per frame before Level.Frame.
type Spinner struct {
	Base  scene.Transformation
	Axis  math.Vec3
	Speed float32 // radians per second

	angle float32
}

// NewSpinner starts from the node's current local transform.
func NewSpinner(base scene.Transformation, axis math.Vec3, speed float32) *Spinner {
	return &Spinner{Base: base, Axis: axis.Normalize(), Speed: speed}
}

// Advance moves the body forward by dt seconds.
func (s *Spinner) Advance(dt float32) {
	s.angle += s.Speed * dt
}

func (s *Spinner) Transform() scene.Transformation {
	t := s.Base
	t.Rotation = math.QuatFromAxisAngle(s.Axis, s.angle).Mul(s.Base.Rotation)
	return t
}

// Follower places its node at a target supplied by a callback, e.g. the
// player camera's target.
type Follower struct {
	Base   scene.Transformation
	Target func() math.Vec3
}

func (f *Follower) Transform() scene.Transformation {
	t := f.Base
	t.Translation = f.Target()
	return t
}
