// Package debug builds visual aids for inspecting culling: bounds wireframes
// and screenshots.
package debug

import (
	"github.com/Faultbox/greed/internal/engine/bounds"
	"github.com/Faultbox/greed/internal/engine/frustum"
	"github.com/Faultbox/greed/pkg/math"
)

// WireframeVertexCount is the number of vertices per box wireframe (12 edges).
const WireframeVertexCount = 24

// boxEdges lists corner pairs in bounds.Box.Corners order.
var boxEdges = [12][2]int{
	// bottom
	{0, 1}, {1, 5}, {5, 4}, {4, 0},
	// top
	{2, 3}, {3, 7}, {7, 6}, {6, 2},
	// vertical
	{0, 2}, {1, 3}, {5, 7}, {4, 6},
}

// AppendBoxWireframe appends line vertices ([x, y, z] each) for the 12 edges
// of box to dst.
func AppendBoxWireframe(dst []float32, box bounds.Box) []float32 {
	corners := box.Corners()
	return appendEdges(dst, &corners)
}

func appendEdges(dst []float32, corners *[8]math.Vec3) []float32 {
	for _, e := range boxEdges {
		a, b := corners[e[0]], corners[e[1]]
		dst = append(dst, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	}
	return dst
}

// FrustumWireframe returns line vertices for the edges of f. A degenerate
// frustum has no wireframe.
func FrustumWireframe(f *frustum.Frustum) []float32 {
	if f.Degenerate {
		return nil
	}
	// Frustum corners share the box corner layout: bit 0 is +x, bit 1 +y,
	// bit 2 the far plane.
	return appendEdges(nil, &f.Corners)
}

// Overlay collects wireframes for one frame, split by highlight state.
type Overlay struct {
	Normal   []float32
	Selected []float32
}

// Reset empties the overlay, keeping storage.
func (o *Overlay) Reset() {
	o.Normal = o.Normal[:0]
	o.Selected = o.Selected[:0]
}

// Add appends box to the normal or selected list.
func (o *Overlay) Add(box bounds.Box, selected bool) {
	if selected {
		o.Selected = AppendBoxWireframe(o.Selected, box)
		return
	}
	o.Normal = AppendBoxWireframe(o.Normal, box)
}
