package batch

import (
	"errors"
	"fmt"

	"github.com/Faultbox/greed/internal/engine/bounds"
	"github.com/Faultbox/greed/internal/engine/frustum"
	"github.com/Faultbox/greed/internal/engine/lod"
	"github.com/Faultbox/greed/internal/engine/scene"
	"github.com/Faultbox/greed/pkg/math"
)

var (
	// ErrMaterialIndex marks a mesh referencing a material outside the table.
	ErrMaterialIndex = errors.New("batch: material index out of range")
	// ErrUnresolved marks a node with meshes but no model bounds, which means
	// scene.ComputeModelBounds was never run for it.
	ErrUnresolved = errors.New("batch: node bounds not computed")
)

// View carries the camera inputs of one frame.
type View struct {
	Frustum frustum.Frustum
	Near    float32
	Eye     math.Vec3
	// Forward is the unit view direction.
	Forward math.Vec3
}

// Options tunes a Builder.
type Options struct {
	// PruneSubtrees skips a whole subtree when its aggregate world bounds are
	// outside the frustum. Output is identical either way.
	PruneSubtrees bool
	// DisableCulling draws every node regardless of the frustum.
	DisableCulling bool
}

// Builder produces RenderBatches. It keeps scratch storage between frames and
// must not be used from several goroutines at once.
type Builder struct {
	opts    Options
	stack   []*scene.Node
	pending []pendingDraw
	offsets []uint32
}

type pendingDraw struct {
	cmd       DrawCommand
	material  uint32
	transform math.Mat4
}

// frameInput groups the read-only inputs of one build.
type frameInput struct {
	meshes        []scene.Mesh
	materialCount int
	view          *View
	cull          bool
	prune         bool
}

// NewBuilder creates a builder.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Options returns the builder options.
func (b *Builder) Options() Options {
	return b.opts
}

// Build traverses the resolved hierarchy under root and returns a new batch.
// scene.Resolve must have run for the current frame.
func (b *Builder) Build(root *scene.Node, meshes []scene.Mesh, materialCount int, view *View) (*RenderBatch, error) {
	out := &RenderBatch{}
	if err := b.BuildInto(out, root, meshes, materialCount, view); err != nil {
		return nil, err
	}
	return out, nil
}

// BuildInto is Build writing into an existing batch to reuse its storage.
func (b *Builder) BuildInto(out *RenderBatch, root *scene.Node, meshes []scene.Mesh, materialCount int, view *View) error {
	out.Reset()
	b.pending = b.pending[:0]
	if root == nil {
		return nil
	}

	in := b.input(meshes, materialCount, view)
	out.Stats.FrustumDegenerate = view.Frustum.Degenerate
	if err := b.collect(&out.Stats, root, true, in); err != nil {
		return err
	}
	b.bucket(out, b.pending, materialCount)
	return nil
}

func (b *Builder) input(meshes []scene.Mesh, materialCount int, view *View) frameInput {
	cull := !b.opts.DisableCulling && !view.Frustum.Degenerate
	return frameInput{
		meshes:        meshes,
		materialCount: materialCount,
		view:          view,
		cull:          cull,
		prune:         cull && b.opts.PruneSubtrees,
	}
}

// collect appends draws for start and, when descend is set, its subtree in
// pre-order.
func (b *Builder) collect(stats *Stats, start *scene.Node, descend bool, in frameInput) error {
	b.stack = append(b.stack[:0], start)
	for len(b.stack) > 0 {
		n := b.stack[len(b.stack)-1]
		b.stack = b.stack[:len(b.stack)-1]

		if in.prune {
			if sb, ok := n.SubtreeBounds(); ok && !in.visible(sb) {
				stats.SubtreesPruned++
				continue
			}
		}
		stats.NodesVisited++

		if err := b.collectNode(stats, n, in); err != nil {
			return err
		}

		if descend {
			for i := len(n.Children) - 1; i >= 0; i-- {
				b.stack = append(b.stack, n.Children[i])
			}
		}
	}
	return nil
}

func (b *Builder) collectNode(stats *Stats, n *scene.Node, in frameInput) error {
	if !n.HasGeometry() {
		return nil
	}
	for _, idx := range n.MeshIndices {
		if int(idx) >= len(in.meshes) {
			return fmt.Errorf("node %s references mesh %d of %d: %w", n.Path(), idx, len(in.meshes), scene.ErrMeshIndex)
		}
	}

	wb, ok := n.WorldBounds()
	if !ok {
		return fmt.Errorf("node %s: %w", n.Path(), ErrUnresolved)
	}
	if in.cull && !in.visible(wb) {
		stats.NodesCulled++
		return nil
	}

	world := n.WorldMatrix()
	for _, idx := range n.MeshIndices {
		mesh := &in.meshes[idx]
		if int(mesh.MaterialIndex) >= in.materialCount {
			return fmt.Errorf("mesh %q on node %s uses material %d of %d: %w",
				mesh.Name, n.Path(), mesh.MaterialIndex, in.materialCount, ErrMaterialIndex)
		}
		if len(mesh.IndexOffsetsByLOD) != len(mesh.IndexCountsByLOD) {
			return fmt.Errorf("mesh %q on node %s: %w", mesh.Name, n.Path(), scene.ErrLODTable)
		}
		level, err := lod.Decide(mesh.LODCount(), wb, in.view.Near, in.view.Eye, in.view.Forward)
		if err != nil {
			return fmt.Errorf("mesh %q on node %s: %w", mesh.Name, n.Path(), err)
		}

		b.pending = append(b.pending, pendingDraw{
			cmd: DrawCommand{
				IndexCount:    mesh.IndexCountsByLOD[level],
				InstanceCount: 1,
				FirstIndex:    mesh.IndexOffsetsByLOD[level],
				BaseVertex:    mesh.VertexOffset,
			},
			material:  mesh.MaterialIndex,
			transform: world,
		})
		stats.LODHistogram[min(level, lod.MaxLevels-1)]++
	}
	return nil
}

func (in frameInput) visible(box bounds.Box) bool {
	return in.view.Frustum.Contains(box)
}

// bucket orders draws by ascending material with a counting sort, which keeps
// traversal order inside each material.
func (b *Builder) bucket(out *RenderBatch, draws []pendingDraw, materialCount int) {
	if cap(b.offsets) < materialCount+1 {
		b.offsets = make([]uint32, materialCount+1)
	}
	offsets := b.offsets[:materialCount+1]
	clear(offsets)
	for _, d := range draws {
		offsets[d.material+1]++
	}
	for m := 1; m <= materialCount; m++ {
		if offsets[m] > 0 {
			out.Groups = append(out.Groups, MaterialGroup{Material: uint32(m - 1), First: offsets[m-1], Count: offsets[m]})
		}
		offsets[m] += offsets[m-1]
	}

	n := len(draws)
	out.Commands = grow(out.Commands, n)
	out.Transforms = grow(out.Transforms, n)
	out.Materials = grow(out.Materials, n)
	for _, d := range draws {
		slot := offsets[d.material]
		offsets[d.material]++
		cmd := d.cmd
		cmd.BaseInstance = slot
		out.Commands[slot] = cmd
		out.Transforms[slot] = d.transform
		out.Materials[slot] = d.material
	}

	out.Stats.Commands = n
	out.Stats.Groups = len(out.Groups)
}

func grow[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}
