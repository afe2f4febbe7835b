// Package scene holds the scene graph: transform hierarchy nodes, the flat
// mesh table they reference, and the per-frame transform resolver.
package scene

import (
	"errors"
	"strings"

	"github.com/Faultbox/greed/internal/engine/bounds"
	"github.com/Faultbox/greed/pkg/math"
)

// ErrCycle is returned when attaching a node would make it its own ancestor.
var ErrCycle = errors.New("scene: node would become its own ancestor")

// Node is a scene graph node. A node owns its children; the parent link is a
// back-reference used for upward queries only.
type Node struct {
	Name        string
	Local       Transformation
	MeshIndices []uint32
	Children    []*Node

	parent *Node

	modelBounds    bounds.Box
	hasModelBounds bool

	// Outputs of Resolve, valid for the current frame.
	worldMatrix      math.Mat4
	worldBounds      bounds.Box
	subtreeBounds    bounds.Box
	hasSubtreeBounds bool
}

// NewNode creates a node with an identity local transform.
func NewNode(name string) *Node {
	return &Node{
		Name:        name,
		Local:       IdentityTransform(),
		worldMatrix: math.Identity(),
	}
}

// AddChild appends child, detaching it from a previous parent.
func (n *Node) AddChild(child *Node) error {
	for p := n; p != nil; p = p.parent {
		if p == child {
			return ErrCycle
		}
	}
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = n
	n.Children = append(n.Children, child)
	return nil
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Depth returns the number of ancestors.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Path returns the slash-separated names from the root to n.
func (n *Node) Path() string {
	var parts []string
	for p := n; p != nil; p = p.parent {
		parts = append(parts, p.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// HasGeometry reports whether the node references any mesh.
func (n *Node) HasGeometry() bool {
	return len(n.MeshIndices) > 0
}

// SetModelBounds overrides the model-space bounds of the node's own geometry.
func (n *Node) SetModelBounds(b bounds.Box) {
	n.modelBounds = b
	n.hasModelBounds = true
}

func (n *Node) mergeModelBounds(b bounds.Box) {
	if n.hasModelBounds {
		n.modelBounds = bounds.Union(n.modelBounds, b)
		return
	}
	n.SetModelBounds(b)
}

// WorldMatrix returns the world matrix computed by the last Resolve.
func (n *Node) WorldMatrix() math.Mat4 {
	return n.worldMatrix
}

// WorldBounds returns the world-space bounds of the node's own geometry.
func (n *Node) WorldBounds() (bounds.Box, bool) {
	return n.worldBounds, n.hasModelBounds
}

// SubtreeBounds returns the world-space union of the node's and all
// descendants' geometry bounds.
func (n *Node) SubtreeBounds() (bounds.Box, bool) {
	return n.subtreeBounds, n.hasSubtreeBounds
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// stops the walk.
func (n *Node) Walk(fn func(*Node) bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			return
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
}

// Find returns the first node in pre-order with the given name.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}
