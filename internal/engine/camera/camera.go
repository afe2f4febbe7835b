// Package camera provides the viewpoints the level is rendered from.
package camera

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/greed/pkg/math"
)

// Mode names accepted by New.
const (
	ModeFirstPerson = "first_person"
	ModePlayer      = "player"
	ModeDebug       = "debug"
)

// forwardAxis is the view direction of an unrotated camera.
var forwardAxis = math.Vec3{Z: -1}

var worldUp = math.Vec3{Y: 1}

// Movement is the per-frame input a positioner reacts to. Translation axes
// are in [-1, 1]; Yaw, Pitch and Zoom are raw mouse deltas.
type Movement struct {
	Forward, Right, Up float32
	Yaw, Pitch         float32
	Zoom               float32
}

// Positioner places the camera in the world.
type Positioner interface {
	Update(dt float32, in Movement)
	ViewMatrix() math.Mat4
	Position() math.Vec3
	Orientation() math.Quat
}

// Projection describes a perspective projection. FovY is in radians.
type Projection struct {
	FovY   float32
	Aspect float32
	Near   float32
	Far    float32
}

// Matrix returns the projection matrix.
func (p Projection) Matrix() math.Mat4 {
	return math.Perspective(p.FovY, p.Aspect, p.Near, p.Far)
}

// Camera pairs a positioner with a projection.
type Camera struct {
	Positioner
	Projection Projection
}

// ViewProj returns projection * view.
func (c *Camera) ViewProj() math.Mat4 {
	return c.Projection.Matrix().Mul(c.ViewMatrix())
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math.Vec3 {
	return c.Orientation().Rotate(forwardAxis)
}

// Near returns the near plane distance.
func (c *Camera) Near() float32 {
	return c.Projection.Near
}

// New creates a positioner by mode name.
func New(mode string, speed float32) (Positioner, error) {
	switch mode {
	case ModeFirstPerson, "":
		p := NewFirstPerson()
		p.Speed = speed
		return p, nil
	case ModePlayer:
		p := NewPlayer()
		p.Speed = speed
		return p, nil
	case ModeDebug:
		return NewDebug(), nil
	}
	return nil, fmt.Errorf("camera: unknown mode %q", mode)
}

// viewFrom builds a view matrix looking along the orientation's forward axis.
func viewFrom(pos math.Vec3, q math.Quat) math.Mat4 {
	return math.LookAt(pos, pos.Add(q.Rotate(forwardAxis)), worldUp)
}

// yawPitch returns the orientation for a yaw around +Y followed by a pitch
// around the rotated X axis. Positive pitch looks up.
func yawPitch(yaw, pitch float32) math.Quat {
	return math.QuatFromEuler(pitch, yaw, 0)
}

// groundAxes returns the forward and right directions on the XZ plane.
func groundAxes(yaw float32) (forward, right math.Vec3) {
	s, c := math32.Sincos(yaw)
	return math.Vec3{X: -s, Z: -c}, math.Vec3{X: c, Z: -s}
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
