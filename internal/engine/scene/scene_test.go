package scene

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/greed/internal/engine/bounds"
	"github.com/Faultbox/greed/internal/engine/lod"
	"github.com/Faultbox/greed/pkg/math"
)

func unitBox() bounds.Box {
	return bounds.New(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1})
}

func mustAdd(t *testing.T, parent, child *Node) {
	t.Helper()
	require.NoError(t, parent.AddChild(child))
}

func TestTransformationMatrixOrder(t *testing.T) {
	tr := Transformation{
		Translation: math.Vec3{X: 10},
		Rotation:    math.QuatFromAxisAngle(math.Vec3{Y: 1}, float32(gomath.Pi/2)),
		Scale:       math.Vec3{X: 2, Y: 2, Z: 2},
	}
	// Scale (1,0,0) -> (2,0,0), rotate -> (0,0,-2), translate -> (10,0,-2).
	got := tr.Matrix().TransformVec3(math.Vec3{X: 1})
	assert.InDelta(t, 10, got.X, 1e-5)
	assert.InDelta(t, 0, got.Y, 1e-5)
	assert.InDelta(t, -2, got.Z, 1e-5)

	assert.Equal(t, math.Identity(), IdentityTransform().Matrix())
}

func TestAddChildRejectsCycle(t *testing.T) {
	root := NewNode("root")
	a := NewNode("a")
	b := NewNode("b")
	mustAdd(t, root, a)
	mustAdd(t, a, b)

	assert.ErrorIs(t, b.AddChild(root), ErrCycle)
	assert.ErrorIs(t, a.AddChild(a), ErrCycle)

	// Re-parenting moves the node.
	mustAdd(t, root, b)
	assert.Same(t, root, b.parent)
	assert.Empty(t, a.Children)
	assert.Equal(t, "root/b", b.Path())
	assert.Equal(t, 1, b.Depth())
}

func TestWalkPreOrder(t *testing.T) {
	root := NewNode("root")
	a, b, a1, a2 := NewNode("a"), NewNode("b"), NewNode("a1"), NewNode("a2")
	mustAdd(t, root, a)
	mustAdd(t, root, b)
	mustAdd(t, a, a1)
	mustAdd(t, a, a2)

	var names []string
	root.Walk(func(n *Node) bool {
		names = append(names, n.Name)
		return true
	})
	assert.Equal(t, []string{"root", "a", "a1", "a2", "b"}, names)
	assert.Same(t, a2, root.Find("a2"))
	assert.Nil(t, root.Find("missing"))
	assert.Equal(t, 5, root.Count())
}

func TestResolveComposesAncestors(t *testing.T) {
	root := NewNode("root")
	root.Local.Translation = math.Vec3{X: 5}
	arm := NewNode("arm")
	arm.Local.Rotation = math.QuatFromAxisAngle(math.Vec3{Y: 1}, float32(gomath.Pi/2))
	hand := NewNode("hand")
	hand.Local.Translation = math.Vec3{X: 1}
	hand.Local.Scale = math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
	mustAdd(t, root, arm)
	mustAdd(t, arm, hand)

	assert.Equal(t, 3, Resolve(root))

	want := root.Local.Matrix().Mul(arm.Local.Matrix()).Mul(hand.Local.Matrix())
	got := hand.WorldMatrix()
	for i := range got {
		assert.InDelta(t, want[i], got[i], 1e-5, "element %d", i)
	}

	// Hand origin: rotate (1,0,0) to (0,0,-1), then shift by root.
	origin := got.TransformVec3(math.Vec3{})
	assert.InDelta(t, 5, origin.X, 1e-5)
	assert.InDelta(t, -1, origin.Z, 1e-5)
}

func TestResolveBounds(t *testing.T) {
	meshes := []Mesh{
		{Name: "cube", IndexOffsetsByLOD: []uint32{0}, IndexCountsByLOD: []uint32{36}, Bounds: unitBox()},
		{Name: "slab", IndexOffsetsByLOD: []uint32{36}, IndexCountsByLOD: []uint32{6},
			Bounds: bounds.New(math.Vec3{X: -4, Y: 0, Z: -4}, math.Vec3{X: 4, Y: 0.1, Z: 4})},
	}

	root := NewNode("root")
	group := NewNode("group")
	group.Local.Translation = math.Vec3{Z: -10}
	left := NewNode("left")
	left.Local.Translation = math.Vec3{X: -3}
	left.MeshIndices = []uint32{0}
	right := NewNode("right")
	right.Local.Translation = math.Vec3{X: 3}
	right.MeshIndices = []uint32{0, 1}
	mustAdd(t, root, group)
	mustAdd(t, group, left)
	mustAdd(t, group, right)

	require.NoError(t, ComputeModelBounds(root, meshes))

	assert.False(t, group.hasModelBounds, "group nodes carry no geometry")
	require.True(t, right.hasModelBounds)
	assert.Equal(t, bounds.Union(meshes[0].Bounds, meshes[1].Bounds), right.modelBounds)

	Resolve(root)

	lw, ok := left.WorldBounds()
	require.True(t, ok)
	assert.Equal(t, math.Vec3{X: -4, Y: -1, Z: -11}, lw.Min)
	assert.Equal(t, math.Vec3{X: -2, Y: 1, Z: -9}, lw.Max)

	_, ok = group.WorldBounds()
	assert.False(t, ok)

	sb, ok := root.SubtreeBounds()
	require.True(t, ok)
	assert.Equal(t, math.Vec3{X: -4, Y: -1, Z: -14}, sb.Min)
	assert.Equal(t, math.Vec3{X: 7, Y: 1, Z: -6}, sb.Max)

	gb, ok := group.SubtreeBounds()
	require.True(t, ok)
	assert.Equal(t, sb, gb)
}

func TestResolveRecomputesAfterLocalChange(t *testing.T) {
	root := NewNode("root")
	prop := NewNode("prop")
	prop.SetModelBounds(unitBox())
	mustAdd(t, root, prop)

	var r Resolver
	r.Resolve(root)
	before, _ := prop.WorldBounds()

	prop.Local.Translation = math.Vec3{Y: 20}
	r.Resolve(root)
	after, _ := prop.WorldBounds()

	assert.Equal(t, before.Min.Y+20, after.Min.Y)
	assert.Equal(t, float32(20), prop.WorldMatrix()[13])
}

func TestResolveDeepChain(t *testing.T) {
	root := NewNode("root")
	cur := root
	const depth = 10000
	for i := 0; i < depth; i++ {
		next := NewNode("link")
		next.Local.Translation = math.Vec3{X: 1}
		mustAdd(t, cur, next)
		cur = next
	}
	cur.SetModelBounds(unitBox())

	assert.Equal(t, depth+1, Resolve(root))
	assert.Equal(t, float32(depth), cur.WorldMatrix()[12])

	sb, ok := root.SubtreeBounds()
	require.True(t, ok)
	assert.Equal(t, float32(depth-1), sb.Min.X)
}

func TestComputeModelBoundsDanglingIndex(t *testing.T) {
	root := NewNode("root")
	bad := NewNode("bad")
	bad.MeshIndices = []uint32{3}
	mustAdd(t, root, bad)

	err := ComputeModelBounds(root, []Mesh{{Name: "only"}})
	require.ErrorIs(t, err, ErrMeshIndex)
	assert.Contains(t, err.Error(), "root/bad")
}

func TestMeshValidate(t *testing.T) {
	ok := Mesh{Name: "ok", IndexOffsetsByLOD: []uint32{0, 30}, IndexCountsByLOD: []uint32{30, 12}, Bounds: unitBox()}
	require.NoError(t, ok.Validate())
	assert.Equal(t, uint32(2), ok.LODCount())

	empty := Mesh{Name: "empty"}
	assert.ErrorIs(t, empty.Validate(), ErrLODTable)

	mismatched := Mesh{Name: "mismatch", IndexOffsetsByLOD: []uint32{0}, IndexCountsByLOD: []uint32{3, 3}}
	assert.ErrorIs(t, mismatched.Validate(), ErrLODTable)

	nan := Mesh{Name: "nan", IndexOffsetsByLOD: []uint32{0}, IndexCountsByLOD: []uint32{3},
		Bounds: bounds.Box{Min: math.Vec3{X: float32(gomath.NaN())}}}
	assert.ErrorIs(t, nan.Validate(), bounds.ErrNonFinite)

	deep := Mesh{Name: "deep", IndexOffsetsByLOD: make([]uint32, lod.MaxLevels+1),
		IndexCountsByLOD: make([]uint32, lod.MaxLevels+1), Bounds: unitBox()}
	assert.ErrorIs(t, deep.Validate(), ErrLODTable)

	deep.IndexOffsetsByLOD = deep.IndexOffsetsByLOD[:lod.MaxLevels]
	deep.IndexCountsByLOD = deep.IndexCountsByLOD[:lod.MaxLevels]
	assert.NoError(t, deep.Validate())
}
