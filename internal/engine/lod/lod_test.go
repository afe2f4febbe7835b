package lod

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/greed/internal/engine/bounds"
	"github.com/Faultbox/greed/pkg/math"
)

var (
	eye     = math.Vec3{}
	forward = math.Vec3{Z: -1}
)

// cubeAt returns a cube of half-size h centered at distance d in front of eye.
func cubeAt(d, h float32) bounds.Box {
	c := math.Vec3{Z: -d}
	e := math.Vec3{X: h, Y: h, Z: h}
	return bounds.New(c.Sub(e), c.Add(e))
}

func TestDecideSingleLevel(t *testing.T) {
	for _, d := range []float32{0.5, 10, 1e4, -5} {
		got, err := Decide(1, cubeAt(d, 1), 0.1, eye, forward)
		require.NoError(t, err)
		assert.Zero(t, got)
	}
}

func TestDecideNoLevels(t *testing.T) {
	_, err := Decide(0, cubeAt(10, 1), 0.1, eye, forward)
	assert.ErrorIs(t, err, ErrNoLODs)
}

func TestSelectBoundaries(t *testing.T) {
	assert.Equal(t, uint32(0), Select(8, 0.5))
	assert.Equal(t, uint32(0), Select(8, 3))
	assert.Equal(t, uint32(1), Select(8, 0.49))
	assert.Equal(t, uint32(7), Select(8, 1.0/256))
	assert.Equal(t, uint32(7), Select(8, 1e-9))
	assert.Equal(t, uint32(6), Select(8, 1.0/64))
	assert.Equal(t, uint32(0), Select(8, math32.Inf(1)))
	assert.Equal(t, uint32(0), Select(8, math32.NaN()))
	assert.Equal(t, uint32(2), Select(3, 0))
}

func TestDecideMatchesRatio(t *testing.T) {
	const near = 0.1
	// Radius of a half-size-h cube is h*sqrt(3).
	b := cubeAt(10, 20)
	ratio := Ratio(b, near, eye, forward)
	p := near * 20 * math32.Sqrt(3) / 10
	assert.InDelta(t, math32.Pi*p*p, ratio, 1e-5)

	// ratio ~0.377 falls in [1/4, 1/2): level 1.
	got, err := Decide(8, b, near, eye, forward)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), got)
}

func TestDecideLargeAndTinyCoverage(t *testing.T) {
	const near = 1.0
	big, err := Decide(8, cubeAt(2, 5), near, eye, forward)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), big, "ratio >= 1/2 selects full detail")

	tiny, err := Decide(8, cubeAt(1000, 0.5), near, eye, forward)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), tiny, "ratio below 1/256 selects the coarsest level")
}

func TestDecideMonotonic(t *testing.T) {
	const near = 0.5
	prev := uint32(0)
	// Moving away shrinks the projected area; the level never gets finer.
	for d := float32(1); d < 5000; d *= 1.25 {
		got, err := Decide(8, cubeAt(d, 2), near, eye, forward)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, prev, "distance %v", d)
		prev = got
	}
	assert.Equal(t, uint32(7), prev)
}

func TestDecideBehindCamera(t *testing.T) {
	got, err := Decide(4, cubeAt(-10, 1), 0.1, eye, forward)
	require.NoError(t, err)
	assert.Zero(t, got)

	// Center exactly on the camera plane.
	got, err = Decide(4, cubeAt(0, 1), 0.1, eye, forward)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestDecideDegenerateBox(t *testing.T) {
	got, err := Decide(4, cubeAt(10, 0), 0.1, eye, forward)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), got)
}

func TestThresholds(t *testing.T) {
	assert.Equal(t, []float32{0, 0.5, 0.25, 0.125}, Thresholds(4))
}

func TestSelectDeepTables(t *testing.T) {
	// Full coverage picks full detail however many levels the table has,
	// including counts whose thresholds fall below float32 range.
	for _, n := range []uint32{MaxLevels, 33, 64, 65, 70, 200} {
		assert.Equal(t, uint32(0), Select(n, 1), "lodCount %d", n)
	}

	got, err := Decide(70, cubeAt(2, 5), 1, eye, forward)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), got)
}

func TestThresholdsDeepTableMonotonic(t *testing.T) {
	th := Thresholds(200)
	for i := 2; i < len(th); i++ {
		assert.LessOrEqual(t, th[i], th[i-1], "level %d", i)
		assert.GreaterOrEqual(t, th[i], float32(0), "level %d", i)
	}
	assert.Equal(t, float32(1)/(1<<20), th[20])
}
