// Package level owns a loaded scene and turns it into one render batch per
// frame: attached bodies move their nodes, transforms are resolved, the view
// frustum is extracted and the batch builder culls and sorts the draws.
package level

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/greed/internal/engine/batch"
	"github.com/Faultbox/greed/internal/engine/bounds"
	"github.com/Faultbox/greed/internal/engine/frustum"
	"github.com/Faultbox/greed/internal/engine/lighting"
	"github.com/Faultbox/greed/internal/engine/picking"
	"github.com/Faultbox/greed/internal/engine/scene"
	"github.com/Faultbox/greed/internal/logger"
	"github.com/Faultbox/greed/internal/metrics"
	"github.com/Faultbox/greed/pkg/math"
)

var (
	// ErrNoRoot is returned for a scene without a hierarchy.
	ErrNoRoot = errors.New("level: scene has no root node")
	// ErrNodeNotFound is returned by Attach for an unknown node name.
	ErrNodeNotFound = errors.New("level: node not found")
	// ErrIndexRange marks a mesh whose index or vertex range exceeds the
	// flat buffers.
	ErrIndexRange = errors.New("level: mesh range outside buffers")
)

// Scene is the importer output a level is built from.
type Scene struct {
	Name      string
	Root      *scene.Node
	Meshes    []scene.Mesh
	Materials []scene.Material
	Vertices  []scene.Vertex
	Indices   []uint32
	// Sun is the scene light; nil selects lighting.DefaultSun.
	Sun *lighting.Sun
}

// Body drives a node from outside the scene graph, typically physics. Its
// transform replaces the node's local transform before every resolve.
type Body interface {
	Transform() scene.Transformation
}

// Viewpoint is what the level needs from a camera.
type Viewpoint interface {
	ViewProj() math.Mat4
	Position() math.Vec3
	Forward() math.Vec3
	Near() float32
}

// Options configures frame building.
type Options struct {
	Batch batch.Options
	// Workers > 1 builds root subtrees concurrently.
	Workers int
}

type attachment struct {
	node *scene.Node
	body Body
}

// Level is a loaded scene plus its per-frame state. It is not safe for
// concurrent use.
type Level struct {
	ID        uuid.UUID
	Name      string
	Root      *scene.Node
	Meshes    []scene.Mesh
	Materials []scene.Material
	Vertices  []scene.Vertex
	Indices   []uint32
	Sun       lighting.Sun

	opts     Options
	bodies   []attachment
	resolver scene.Resolver
	builder  *batch.Builder
	parallel *batch.Parallel
	current  batch.RenderBatch
	frustum  frustum.Frustum

	log  *zap.Logger
	warn *zap.Logger
}

// New validates sc and prepares it for rendering. The level takes ownership
// of the scene's hierarchy and buffers.
func New(sc *Scene, opts Options) (*Level, error) {
	l, err := build(sc, opts)
	metrics.CountLevelLoad(err)
	if err != nil {
		return nil, err
	}
	l.log.Info("level loaded",
		zap.String("name", l.Name),
		zap.Int("nodes", l.Root.Count()),
		zap.Int("meshes", len(l.Meshes)),
		zap.Int("materials", len(l.Materials)),
		zap.Int("vertices", len(l.Vertices)),
		zap.Int("indices", len(l.Indices)))
	return l, nil
}

func build(sc *Scene, opts Options) (*Level, error) {
	if sc == nil || sc.Root == nil {
		return nil, ErrNoRoot
	}
	for i := range sc.Meshes {
		if err := validateMesh(&sc.Meshes[i], len(sc.Materials), len(sc.Vertices), len(sc.Indices)); err != nil {
			return nil, err
		}
	}
	if err := scene.ComputeModelBounds(sc.Root, sc.Meshes); err != nil {
		return nil, err
	}

	id := uuid.New()
	l := &Level{
		ID:        id,
		Name:      sc.Name,
		Root:      sc.Root,
		Meshes:    sc.Meshes,
		Materials: sc.Materials,
		Vertices:  sc.Vertices,
		Indices:   sc.Indices,
		Sun:       lighting.DefaultSun(),
		log:       logger.Named("level").With(zap.Stringer("level_id", id)),
		warn:      logger.Sampled("level", 5*time.Second).With(zap.Stringer("level_id", id)),
	}
	if sc.Sun != nil {
		l.Sun = *sc.Sun
	}
	l.SetOptions(opts)
	return l, nil
}

func validateMesh(m *scene.Mesh, materials, vertices, indices int) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if int(m.MaterialIndex) >= materials {
		return fmt.Errorf("mesh %q uses material %d of %d: %w", m.Name, m.MaterialIndex, materials, batch.ErrMaterialIndex)
	}
	if uint64(m.VertexOffset)+uint64(m.VertexCount) > uint64(vertices) {
		return fmt.Errorf("mesh %q vertices [%d, +%d) of %d: %w", m.Name, m.VertexOffset, m.VertexCount, vertices, ErrIndexRange)
	}
	for lod := range m.IndexCountsByLOD {
		off, n := m.IndexOffsetsByLOD[lod], m.IndexCountsByLOD[lod]
		if uint64(off)+uint64(n) > uint64(indices) {
			return fmt.Errorf("mesh %q lod %d indices [%d, +%d) of %d: %w", m.Name, lod, off, n, indices, ErrIndexRange)
		}
	}
	return nil
}

// SetOptions replaces the frame options. Builder scratch state is dropped.
func (l *Level) SetOptions(opts Options) {
	l.opts = opts
	l.builder, l.parallel = nil, nil
	if opts.Workers > 1 {
		l.parallel = batch.NewParallel(opts.Batch, opts.Workers)
	} else {
		l.builder = batch.NewBuilder(opts.Batch)
	}
}

// Options returns the frame options.
func (l *Level) Options() Options {
	return l.opts
}

// Attach binds body to the first node named nodeName.
func (l *Level) Attach(nodeName string, body Body) error {
	n := l.Root.Find(nodeName)
	if n == nil {
		return fmt.Errorf("%q: %w", nodeName, ErrNodeNotFound)
	}
	l.bodies = append(l.bodies, attachment{node: n, body: body})
	return nil
}

// Frame builds the render batch for one frame. The returned batch is owned
// by the level and valid until the next call.
func (l *Level) Frame(ctx context.Context, vp Viewpoint) (*batch.RenderBatch, error) {
	start := time.Now()

	for _, a := range l.bodies {
		a.node.Local = a.body.Transform()
	}
	l.resolver.Resolve(l.Root)

	l.frustum = frustum.Extract(vp.ViewProj())
	if l.frustum.Degenerate {
		l.warn.Warn("degenerate view-projection, culling disabled")
	}
	view := batch.View{
		Frustum: l.frustum,
		Near:    vp.Near(),
		Eye:     vp.Position(),
		Forward: vp.Forward(),
	}

	out := &l.current
	if l.parallel != nil {
		b, err := l.parallel.Build(ctx, l.Root, l.Meshes, len(l.Materials), &view)
		if err != nil {
			return nil, fmt.Errorf("level %s: %w", l.Name, err)
		}
		l.current = *b
	} else if err := l.builder.BuildInto(out, l.Root, l.Meshes, len(l.Materials), &view); err != nil {
		return nil, fmt.Errorf("level %s: %w", l.Name, err)
	}

	elapsed := time.Since(start)
	metrics.ObserveFrame(out.Stats, elapsed)
	if ce := l.log.Check(zap.DebugLevel, "frame built"); ce != nil {
		ce.Write(
			zap.Int("commands", out.Stats.Commands),
			zap.Int("groups", out.Stats.Groups),
			zap.Int("visited", out.Stats.NodesVisited),
			zap.Int("culled", out.Stats.NodesCulled),
			zap.Duration("elapsed", elapsed))
	}
	return out, nil
}

// Frustum returns the frustum of the last frame.
func (l *Level) Frustum() frustum.Frustum {
	return l.frustum
}

// Pick returns the node with geometry whose world bounds the ray enters
// first. It uses the transforms of the last frame.
func (l *Level) Pick(ray picking.Ray) (node *scene.Node, dist float32, ok bool) {
	l.Root.Walk(func(n *scene.Node) bool {
		wb, has := n.WorldBounds()
		if !has {
			return true
		}
		if t, hit := ray.IntersectBox(wb); hit && (!ok || t < dist) {
			node, dist, ok = n, t, true
		}
		return true
	})
	return node, dist, ok
}

// DebugBoxes calls visit with the world bounds of every node that has
// geometry, in pre-order.
func (l *Level) DebugBoxes(visit func(*scene.Node, bounds.Box)) {
	l.Root.Walk(func(n *scene.Node) bool {
		if wb, ok := n.WorldBounds(); ok {
			visit(n, wb)
		}
		return true
	})
}
