package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/greed/internal/engine/bounds"
	"github.com/Faultbox/greed/internal/engine/lod"
	"github.com/Faultbox/greed/pkg/math"
)

var (
	// ErrMeshIndex marks a node referencing a mesh outside the mesh table.
	ErrMeshIndex = errors.New("scene: mesh index out of range")
	// ErrLODTable marks a mesh whose LOD offset and count tables are empty or
	// disagree in length.
	ErrLODTable = errors.New("scene: invalid LOD table")
)

// Vertex is one entry of the flat vertex buffer.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
}

// Mesh describes a vertex range and its per-LOD index ranges inside the flat
// buffers. Index 0 of the LOD tables is the most detailed level.
type Mesh struct {
	Name              string
	VertexOffset      uint32
	VertexCount       uint32
	IndexOffsetsByLOD []uint32
	IndexCountsByLOD  []uint32
	MaterialIndex     uint32

	// Bounds is the model-space AABB of the vertex range.
	Bounds bounds.Box
}

// LODCount returns the number of detail levels.
func (m *Mesh) LODCount() uint32 {
	return uint32(len(m.IndexCountsByLOD))
}

// Validate checks the LOD tables and bounds.
func (m *Mesh) Validate() error {
	if len(m.IndexCountsByLOD) == 0 || len(m.IndexOffsetsByLOD) != len(m.IndexCountsByLOD) {
		return fmt.Errorf("mesh %q: %d offsets, %d counts: %w",
			m.Name, len(m.IndexOffsetsByLOD), len(m.IndexCountsByLOD), ErrLODTable)
	}
	if m.LODCount() > lod.MaxLevels {
		return fmt.Errorf("mesh %q: %d LODs, limit %d: %w", m.Name, m.LODCount(), lod.MaxLevels, ErrLODTable)
	}
	if err := m.Bounds.Validate(); err != nil {
		return fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	return nil
}

// Material holds the per-material state the renderer switches between batches.
type Material struct {
	Name      string
	BaseColor [4]float32
}

// ComputeModelBounds sets every node's model-space bounds to the union of the
// bounds of the meshes it references. Nodes without meshes keep no bounds.
func ComputeModelBounds(root *Node, meshes []Mesh) error {
	var err error
	root.Walk(func(n *Node) bool {
		n.hasModelBounds = false
		for _, idx := range n.MeshIndices {
			if int(idx) >= len(meshes) {
				err = fmt.Errorf("node %s references mesh %d of %d: %w", n.Path(), idx, len(meshes), ErrMeshIndex)
				return false
			}
			n.mergeModelBounds(meshes[idx].Bounds)
		}
		return true
	})
	return err
}
