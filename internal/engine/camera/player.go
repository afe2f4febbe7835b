package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/greed/pkg/math"
)

// Player follows a target from behind and above.
type Player struct {
	Target math.Vec3

	Yaw        float32 // radians around the target
	Pitch      float32 // radians above the horizon
	Distance   float32
	LookHeight float32 // focus point above Target

	MinDistance     float32
	MaxDistance     float32
	Speed           float32
	YawSensitivity  float32
	ZoomSensitivity float32
}

// NewPlayer creates a follow camera with a fixed downward tilt.
func NewPlayer() *Player {
	return &Player{
		Pitch:           0.6,
		Distance:        12,
		LookHeight:      1,
		MinDistance:     3,
		MaxDistance:     60,
		Speed:           6,
		YawSensitivity:  0.005,
		ZoomSensitivity: 0.1,
	}
}

// Follow moves the camera target.
func (c *Player) Follow(target math.Vec3) {
	c.Target = target
}

// Update turns around the target, zooms, and walks the target along the
// ground relative to the camera heading.
func (c *Player) Update(dt float32, in Movement) {
	c.Yaw -= in.Yaw * c.YawSensitivity
	c.Distance = clamp(c.Distance-in.Zoom*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)

	forward, right := groundAxes(c.heading())
	step := c.Speed * dt
	c.Target = c.Target.Add(forward.Scale(in.Forward * step)).Add(right.Scale(in.Right * step))
}

// heading is the yaw the camera looks along; the camera sits opposite Yaw.
func (c *Player) heading() float32 {
	return c.Yaw + math32.Pi
}

func (c *Player) focus() math.Vec3 {
	return c.Target.Add(math.Vec3{Y: c.LookHeight})
}

func (c *Player) Position() math.Vec3 {
	return c.focus().Sub(c.Orientation().Rotate(forwardAxis).Scale(c.Distance))
}

func (c *Player) ViewMatrix() math.Mat4 {
	return viewFrom(c.Position(), c.Orientation())
}

func (c *Player) Orientation() math.Quat {
	return yawPitch(c.heading(), -c.Pitch)
}
