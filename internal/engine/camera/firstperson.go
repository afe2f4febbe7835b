package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/greed/pkg/math"
)

// FirstPerson is a free-flying camera steered with WASD and mouse look.
type FirstPerson struct {
	Pos   math.Vec3
	Yaw   float32 // radians, 0 looks down -Z
	Pitch float32 // radians, positive looks up

	Speed           float32 // world units per second
	LookSensitivity float32 // radians per mouse unit
	MaxPitch        float32
}

// NewFirstPerson creates a first-person camera at the origin.
func NewFirstPerson() *FirstPerson {
	return &FirstPerson{
		Speed:           10,
		LookSensitivity: 0.003,
		MaxPitch:        1.5,
	}
}

// Update applies mouse look and moves along the view axes.
func (c *FirstPerson) Update(dt float32, in Movement) {
	c.Yaw -= in.Yaw * c.LookSensitivity
	c.Pitch = clamp(c.Pitch-in.Pitch*c.LookSensitivity, -c.MaxPitch, c.MaxPitch)
	c.Yaw = math32.Remainder(c.Yaw, 2*math32.Pi)

	q := c.Orientation()
	forward := q.Rotate(forwardAxis)
	right := q.Rotate(math.Vec3{X: 1})
	step := c.Speed * dt
	c.Pos = c.Pos.
		Add(forward.Scale(in.Forward * step)).
		Add(right.Scale(in.Right * step)).
		Add(worldUp.Scale(in.Up * step))
}

// LookAt turns the camera toward target.
func (c *FirstPerson) LookAt(target math.Vec3) {
	d := target.Sub(c.Pos)
	if d.Length() == 0 {
		return
	}
	d = d.Normalize()
	c.Yaw = math32.Atan2(-d.X, -d.Z)
	c.Pitch = clamp(math32.Asin(d.Y), -c.MaxPitch, c.MaxPitch)
}

func (c *FirstPerson) ViewMatrix() math.Mat4 {
	return viewFrom(c.Pos, c.Orientation())
}

func (c *FirstPerson) Position() math.Vec3 {
	return c.Pos
}

func (c *FirstPerson) Orientation() math.Quat {
	return yawPitch(c.Yaw, c.Pitch)
}
