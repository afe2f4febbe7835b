package batch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/greed/internal/engine/scene"
)

// Parallel builds the subtrees under the root's children on up to workers
// goroutines. Each worker owns one subtree; results are concatenated in child
// order, so the output equals a sequential Build.
type Parallel struct {
	opts    Options
	workers int
	root    Builder
	parts   []*Builder
	stats   []Stats
}

// NewParallel creates a parallel builder. workers < 1 means one worker.
func NewParallel(opts Options, workers int) *Parallel {
	if workers < 1 {
		workers = 1
	}
	return &Parallel{opts: opts, workers: workers, root: Builder{opts: opts}}
}

// Build is the parallel counterpart of Builder.Build.
func (p *Parallel) Build(ctx context.Context, root *scene.Node, meshes []scene.Mesh, materialCount int, view *View) (*RenderBatch, error) {
	out := &RenderBatch{}
	if root == nil {
		return out, nil
	}
	out.Stats.FrustumDegenerate = view.Frustum.Degenerate

	in := p.root.input(meshes, materialCount, view)
	p.root.pending = p.root.pending[:0]

	// Pruning the root prunes everything; the root's own geometry is
	// collected here and its children fan out below.
	if in.prune {
		if sb, ok := root.SubtreeBounds(); ok && !in.visible(sb) {
			out.Stats.SubtreesPruned++
			return out, nil
		}
	}
	out.Stats.NodesVisited++
	if err := p.root.collectNode(&out.Stats, root, in); err != nil {
		return nil, err
	}

	children := root.Children
	for len(p.parts) < len(children) {
		p.parts = append(p.parts, &Builder{opts: p.opts})
	}
	p.stats = append(p.stats[:0], make([]Stats, len(children))...)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, child := range children {
		part := p.parts[i]
		part.pending = part.pending[:0]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return part.collect(&p.stats[i], child, true, in)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	draws := p.root.pending
	for i := range children {
		draws = append(draws, p.parts[i].pending...)
		mergeStats(&out.Stats, &p.stats[i])
	}
	p.root.pending = draws
	p.root.bucket(out, draws, materialCount)
	return out, nil
}

func mergeStats(dst, src *Stats) {
	dst.NodesVisited += src.NodesVisited
	dst.NodesCulled += src.NodesCulled
	dst.SubtreesPruned += src.SubtreesPruned
	for i, n := range src.LODHistogram {
		dst.LODHistogram[i] += n
	}
}
