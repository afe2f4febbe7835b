package scenefile

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/greed/internal/engine/scene"
	"github.com/Faultbox/greed/pkg/math"
)

// minSegments bounds sphere simplification.
const minSegments = 4

type geometry struct {
	vertices []scene.Vertex
	indices  []uint32 // relative to the first vertex of this geometry
}

// boxGeometry returns a box centered on the origin with flat face normals.
func boxGeometry(size math.Vec3) geometry {
	h := size.Scale(0.5)
	faces := [6]struct{ normal, u, v math.Vec3 }{
		{math.Vec3{X: 1}, math.Vec3{Z: -1}, math.Vec3{Y: 1}},
		{math.Vec3{X: -1}, math.Vec3{Z: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Y: 1}, math.Vec3{X: 1}, math.Vec3{Z: -1}},
		{math.Vec3{Y: -1}, math.Vec3{X: 1}, math.Vec3{Z: 1}},
		{math.Vec3{Z: 1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Z: -1}, math.Vec3{X: -1}, math.Vec3{Y: 1}},
	}
	var g geometry
	mul := func(a, b math.Vec3) math.Vec3 { return math.Vec3{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z} }
	for _, f := range faces {
		first := uint32(len(g.vertices))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := f.normal.Add(f.u.Scale(c[0])).Add(f.v.Scale(c[1]))
			g.vertices = append(g.vertices, scene.Vertex{Position: mul(p, h), Normal: f.normal})
		}
		g.indices = append(g.indices, first, first+1, first+2, first, first+2, first+3)
	}
	return g
}

// sphereGeometry returns a UV sphere with segments slices and segments/2
// stacks.
func sphereGeometry(radius float32, segments int) geometry {
	stacks := max(segments/2, 2)
	var g geometry
	for i := 0; i <= stacks; i++ {
		phi := math32.Pi * float32(i) / float32(stacks)
		sinPhi, cosPhi := math32.Sincos(phi)
		for j := 0; j <= segments; j++ {
			theta := 2 * math32.Pi * float32(j) / float32(segments)
			sinTheta, cosTheta := math32.Sincos(theta)
			n := math.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			g.vertices = append(g.vertices, scene.Vertex{Position: n.Scale(radius), Normal: n})
		}
	}
	row := uint32(segments + 1)
	for i := uint32(0); i < uint32(stacks); i++ {
		for j := uint32(0); j < uint32(segments); j++ {
			a := i*row + j
			b := a + row
			g.indices = append(g.indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return g
}
