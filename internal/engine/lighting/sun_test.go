package lighting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name    string
		sun     Sun
		x, y, z float32
	}{
		{"zenith", Sun{Elevation: 90}, 0, 1, 0},
		{"horizon south", Sun{Azimuth: 0}, 0, 0, 1},
		{"horizon east", Sun{Azimuth: 90}, 1, 0, 0},
		{"below horizon", Sun{Azimuth: 180, Elevation: -90}, 0, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.sun.Direction()
			assert.InDelta(t, tt.x, d.X, 1e-5)
			assert.InDelta(t, tt.y, d.Y, 1e-5)
			assert.InDelta(t, tt.z, d.Z, 1e-5)
			assert.InDelta(t, 1, d.Length(), 1e-5)
		})
	}
}

func TestSunClamped(t *testing.T) {
	s := Sun{Azimuth: 400, Elevation: 120, Ambient: 1.5}.Clamped()
	assert.Equal(t, Sun{Azimuth: 400, Elevation: 90, Ambient: 1}, s)

	s = Sun{Elevation: -100, Ambient: -1}.Clamped()
	assert.Equal(t, float32(-90), s.Elevation)
	assert.Equal(t, float32(0), s.Ambient)
}

func TestDefaultSunAboveHorizon(t *testing.T) {
	d := DefaultSun().Direction()
	assert.Greater(t, d.Y, float32(0.5))
}
