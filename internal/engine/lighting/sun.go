// Package lighting describes the directional light scenes are shaded with.
package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/greed/pkg/math"
)

// Sun is a directional light. Azimuth is the rotation around +Y from +Z and
// Elevation the angle above the horizon, both in degrees.
type Sun struct {
	Azimuth   float32
	Elevation float32
	Ambient   float32 // 0..1 share of the base color lit regardless of normal
}

// DefaultSun returns the light used when a scene sets none.
func DefaultSun() Sun {
	return Sun{Azimuth: 53, Elevation: 65, Ambient: 0.25}
}

// Direction returns the unit vector pointing towards the sun.
func (s Sun) Direction() math.Vec3 {
	lon := s.Azimuth * math32.Pi / 180
	lat := s.Elevation * math32.Pi / 180

	return math.Vec3{
		X: math32.Cos(lat) * math32.Sin(lon),
		Y: math32.Sin(lat),
		Z: math32.Cos(lat) * math32.Cos(lon),
	}
}

// Clamped returns s with Elevation in [-90, 90] and Ambient in [0, 1].
func (s Sun) Clamped() Sun {
	s.Elevation = min(max(s.Elevation, -90), 90)
	s.Ambient = min(max(s.Ambient, 0), 1)
	return s
}
