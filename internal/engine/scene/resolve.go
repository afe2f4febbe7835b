package scene

import (
	"github.com/Faultbox/greed/internal/engine/bounds"
	"github.com/Faultbox/greed/pkg/math"
)

// Resolver computes world matrices and bounds for a hierarchy. It keeps its
// traversal buffers between frames; the zero value is ready to use.
type Resolver struct {
	stack   []resolveItem
	visited []visit
}

type resolveItem struct {
	node        *Node
	parent      int
	parentWorld math.Mat4
}

type visit struct {
	node   *Node
	parent int
}

// Resolve walks the tree rooted at root in pre-order and sets, for every node,
// world = parentWorld * local (identity above the root), the world bounds of
// its own geometry and the world bounds of its whole subtree. It returns the
// number of nodes visited.
func (r *Resolver) Resolve(root *Node) int {
	if root == nil {
		return 0
	}
	r.stack = append(r.stack[:0], resolveItem{node: root, parent: -1, parentWorld: math.Identity()})
	r.visited = r.visited[:0]

	for len(r.stack) > 0 {
		item := r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]

		n := item.node
		n.worldMatrix = item.parentWorld.Mul(n.Local.Matrix())
		if n.hasModelBounds {
			n.worldBounds = n.modelBounds.Transform(n.worldMatrix)
			n.subtreeBounds = n.worldBounds
			n.hasSubtreeBounds = true
		} else {
			n.worldBounds = bounds.Box{}
			n.hasSubtreeBounds = false
		}
		self := len(r.visited)
		r.visited = append(r.visited, visit{node: n, parent: item.parent})

		for i := len(n.Children) - 1; i >= 0; i-- {
			r.stack = append(r.stack, resolveItem{node: n.Children[i], parent: self, parentWorld: n.worldMatrix})
		}
	}

	// Children always follow their parent in pre-order, so folding in reverse
	// finalizes every subtree before it reaches its parent.
	for i := len(r.visited) - 1; i > 0; i-- {
		n := r.visited[i].node
		if !n.hasSubtreeBounds {
			continue
		}
		p := r.visited[r.visited[i].parent].node
		if p.hasSubtreeBounds {
			p.subtreeBounds = bounds.Union(p.subtreeBounds, n.subtreeBounds)
		} else {
			p.subtreeBounds = n.subtreeBounds
			p.hasSubtreeBounds = true
		}
	}
	return len(r.visited)
}

// Resolve is a convenience wrapper that uses a temporary Resolver.
func Resolve(root *Node) int {
	var r Resolver
	return r.Resolve(root)
}
