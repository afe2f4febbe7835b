package camera

import (
	"github.com/Faultbox/greed/internal/engine/bounds"
	"github.com/Faultbox/greed/pkg/math"
)

// Debug orbits around a center point. It is the inspection camera of the
// viewer: drag to rotate, scroll to zoom, keys pan the center.
type Debug struct {
	Center math.Vec3

	Distance  float32
	RotationX float32 // pitch above the horizon
	RotationY float32 // yaw around +Y

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
	PanSpeed        float32 // fraction of Distance per second
}

// NewDebug creates an orbit camera with default limits.
func NewDebug() *Debug {
	return &Debug{
		Distance:        20,
		RotationX:       0.5,
		MinDistance:     1,
		MaxDistance:     5000,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		PanSpeed:        1,
	}
}

// Update applies drag rotation, zoom and panning.
func (c *Debug) Update(dt float32, in Movement) {
	c.RotationY -= in.Yaw * c.DragSensitivity
	c.RotationX = clamp(c.RotationX+in.Pitch*c.DragSensitivity, c.MinPitch, c.MaxPitch)
	c.Distance = clamp(c.Distance-in.Zoom*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)

	// Panning scales with distance so it feels the same at every zoom.
	step := c.Distance * c.PanSpeed * dt
	forward, right := groundAxes(c.RotationY)
	c.Center = c.Center.
		Add(forward.Scale(in.Forward * step)).
		Add(right.Scale(in.Right * step)).
		Add(worldUp.Scale(in.Up * step))
}

// FitToBounds centers the orbit on box and backs off far enough to see it.
func (c *Debug) FitToBounds(box bounds.Box) {
	c.Center = box.Center()
	c.Distance = clamp(box.Radius()*2.5, c.MinDistance, c.MaxDistance)
	c.RotationX = 0.6
	c.RotationY = 0
}

func (c *Debug) Position() math.Vec3 {
	return c.Center.Sub(c.Orientation().Rotate(forwardAxis).Scale(c.Distance))
}

func (c *Debug) ViewMatrix() math.Mat4 {
	return viewFrom(c.Position(), c.Orientation())
}

func (c *Debug) Orientation() math.Quat {
	return yawPitch(c.RotationY, -c.RotationX)
}
