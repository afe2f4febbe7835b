package batch

import (
	"context"
	gomath "math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/greed/internal/engine/bounds"
	"github.com/Faultbox/greed/internal/engine/frustum"
	"github.com/Faultbox/greed/internal/engine/lod"
	"github.com/Faultbox/greed/internal/engine/scene"
	"github.com/Faultbox/greed/pkg/math"
)

// forwardView looks down -Z from the origin: 90 degree FOV, near 1, far 100.
func forwardView() *View {
	proj := math.Perspective(float32(gomath.Pi/2), 1, 1, 100)
	view := math.LookAt(math.Vec3{}, math.Vec3{Z: -1}, math.Vec3{Y: 1})
	return &View{
		Frustum: frustum.Extract(proj.Mul(view)),
		Near:    1,
		Eye:     math.Vec3{},
		Forward: math.Vec3{Z: -1},
	}
}

func cube() bounds.Box {
	return bounds.New(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1})
}

func meshWith(name string, material uint32, lods int) scene.Mesh {
	m := scene.Mesh{Name: name, VertexOffset: 100, VertexCount: 24, MaterialIndex: material, Bounds: cube()}
	for i := 0; i < lods; i++ {
		m.IndexOffsetsByLOD = append(m.IndexOffsetsByLOD, uint32(1000+i*100))
		m.IndexCountsByLOD = append(m.IndexCountsByLOD, uint32(36>>i))
	}
	return m
}

func placed(t *testing.T, parent *scene.Node, name string, at math.Vec3, meshes ...uint32) *scene.Node {
	t.Helper()
	n := scene.NewNode(name)
	n.Local.Translation = at
	n.MeshIndices = meshes
	require.NoError(t, parent.AddChild(n))
	return n
}

func prepare(t *testing.T, root *scene.Node, meshes []scene.Mesh) {
	t.Helper()
	require.NoError(t, scene.ComputeModelBounds(root, meshes))
	scene.Resolve(root)
}

func assertContiguous(t *testing.T, b *RenderBatch) {
	t.Helper()
	seen := map[uint32]bool{}
	for i, m := range b.Materials {
		if i > 0 && b.Materials[i-1] == m {
			continue
		}
		assert.False(t, seen[m], "material %d appears in two separate runs", m)
		seen[m] = true
	}
	total := uint32(0)
	for _, g := range b.Groups {
		assert.Equal(t, total, g.First)
		for _, m := range b.Materials[g.First : g.First+g.Count] {
			assert.Equal(t, g.Material, m)
		}
		total += g.Count
	}
	assert.Equal(t, uint32(len(b.Commands)), total)
	for i, c := range b.Commands {
		assert.Equal(t, uint32(i), c.BaseInstance)
	}
	assert.Len(t, b.Transforms, len(b.Commands))
}

func TestBuildEmptyHierarchy(t *testing.T) {
	root := scene.NewNode("root")
	placed(t, root, "group", math.Vec3{Z: -5})
	prepare(t, root, nil)

	b, err := NewBuilder(Options{}).Build(root, nil, 0, forwardView())
	require.NoError(t, err)
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Groups)
	assert.Equal(t, 2, b.Stats.NodesVisited)

	b, err = NewBuilder(Options{}).Build(nil, nil, 0, forwardView())
	require.NoError(t, err)
	assert.Zero(t, b.Len())
}

func TestBuildSingleVisibleMesh(t *testing.T) {
	meshes := []scene.Mesh{meshWith("crate", 0, 1)}
	root := scene.NewNode("root")
	root.Local.Translation = math.Vec3{Z: -10}
	root.MeshIndices = []uint32{0}
	prepare(t, root, meshes)

	b, err := NewBuilder(Options{}).Build(root, meshes, 1, forwardView())
	require.NoError(t, err)
	require.Equal(t, 1, b.Len())

	cmd := b.Commands[0]
	assert.Equal(t, meshes[0].IndexCountsByLOD[0], cmd.IndexCount)
	assert.Equal(t, meshes[0].IndexOffsetsByLOD[0], cmd.FirstIndex)
	assert.Equal(t, uint32(100), cmd.BaseVertex)
	assert.Equal(t, uint32(1), cmd.InstanceCount)
	assert.Equal(t, uint32(0), cmd.BaseInstance)
	assert.Equal(t, root.WorldMatrix(), b.Transforms[0])
	assert.Equal(t, []MaterialGroup{{Material: 0, First: 0, Count: 1}}, b.Groups)
}

func TestBuildMeshBehindCamera(t *testing.T) {
	meshes := []scene.Mesh{meshWith("crate", 0, 1)}
	root := scene.NewNode("root")
	root.Local.Translation = math.Vec3{Z: 50}
	root.MeshIndices = []uint32{0}
	prepare(t, root, meshes)

	b, err := NewBuilder(Options{}).Build(root, meshes, 1, forwardView())
	require.NoError(t, err)
	assert.Zero(t, b.Len())
	assert.Equal(t, 1, b.Stats.NodesCulled)
}

func TestBuildGroupsByMaterial(t *testing.T) {
	meshes := []scene.Mesh{meshWith("gold", 3, 1), meshWith("stone", 1, 1)}
	root := scene.NewNode("root")
	first := placed(t, root, "first", math.Vec3{X: -3, Z: -10}, 0)
	middle := placed(t, root, "middle", math.Vec3{Z: -10}, 1)
	last := placed(t, root, "last", math.Vec3{X: 3, Z: -10}, 0)
	prepare(t, root, meshes)

	b, err := NewBuilder(Options{}).Build(root, meshes, 4, forwardView())
	require.NoError(t, err)
	require.Equal(t, 3, b.Len())

	assert.Equal(t, []uint32{1, 3, 3}, b.Materials)
	assert.Equal(t, []MaterialGroup{{Material: 1, First: 0, Count: 1}, {Material: 3, First: 1, Count: 2}}, b.Groups)
	// Traversal order is kept inside a material.
	assert.Equal(t, []math.Mat4{middle.WorldMatrix(), first.WorldMatrix(), last.WorldMatrix()}, b.Transforms)

	assert.Len(t, b.GroupCommands(b.Groups[1]), 2)
	assertContiguous(t, b)
}

func TestBuildCullsPerNode(t *testing.T) {
	meshes := []scene.Mesh{meshWith("crate", 0, 1)}
	root := scene.NewNode("root")
	parent := placed(t, root, "parent", math.Vec3{Z: 20}, 0)
	// The child's own geometry sits in view even though its parent's does not.
	child := placed(t, parent, "child", math.Vec3{Z: -30}, 0)
	prepare(t, root, meshes)

	for _, prune := range []bool{false, true} {
		b, err := NewBuilder(Options{PruneSubtrees: prune}).Build(root, meshes, 1, forwardView())
		require.NoError(t, err)
		require.Equal(t, 1, b.Len(), "prune=%v", prune)
		assert.Equal(t, child.WorldMatrix(), b.Transforms[0])
		assert.Equal(t, 1, b.Stats.NodesCulled)
	}
}

func TestBuildSelectsLOD(t *testing.T) {
	meshes := []scene.Mesh{meshWith("rock", 0, 4)}
	root := scene.NewNode("root")
	placed(t, root, "near", math.Vec3{Z: -2}, 0)
	placed(t, root, "far", math.Vec3{Z: -90}, 0)
	prepare(t, root, meshes)

	b, err := NewBuilder(Options{}).Build(root, meshes, 1, forwardView())
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())

	assert.Equal(t, uint32(1000), b.Commands[0].FirstIndex)
	assert.Equal(t, uint32(36), b.Commands[0].IndexCount)
	assert.Equal(t, uint32(1300), b.Commands[1].FirstIndex)
	assert.Equal(t, uint32(36>>3), b.Commands[1].IndexCount)
	assert.Equal(t, uint32(1), b.Stats.LODHistogram[0])
	assert.Equal(t, uint32(1), b.Stats.LODHistogram[3])
}

func TestBuildDanglingMeshIndex(t *testing.T) {
	meshes := []scene.Mesh{meshWith("crate", 0, 1)}
	root := scene.NewNode("root")
	n := placed(t, root, "bad", math.Vec3{Z: 40}, 0)
	prepare(t, root, meshes)

	// Corrupt the node after load; behind the camera it would be culled, but
	// the bad reference must still surface.
	n.MeshIndices = []uint32{7}
	_, err := NewBuilder(Options{}).Build(root, meshes, 1, forwardView())
	require.ErrorIs(t, err, scene.ErrMeshIndex)
	assert.Contains(t, err.Error(), "root/bad")
}

func TestBuildDanglingMaterialIndex(t *testing.T) {
	meshes := []scene.Mesh{meshWith("crate", 5, 1)}
	root := scene.NewNode("root")
	placed(t, root, "crate", math.Vec3{Z: -10}, 0)
	prepare(t, root, meshes)

	_, err := NewBuilder(Options{}).Build(root, meshes, 2, forwardView())
	assert.ErrorIs(t, err, ErrMaterialIndex)
}

func TestBuildMissingLODTable(t *testing.T) {
	meshes := []scene.Mesh{{Name: "hollow", Bounds: cube()}}
	root := scene.NewNode("root")
	placed(t, root, "hollow", math.Vec3{Z: -10}, 0)
	prepare(t, root, meshes)

	_, err := NewBuilder(Options{}).Build(root, meshes, 1, forwardView())
	assert.ErrorIs(t, err, lod.ErrNoLODs)
}

func TestBuildUnresolvedNode(t *testing.T) {
	meshes := []scene.Mesh{meshWith("crate", 0, 1)}
	root := scene.NewNode("root")
	root.MeshIndices = []uint32{0}
	scene.Resolve(root)

	_, err := NewBuilder(Options{}).Build(root, meshes, 1, forwardView())
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestBuildDegenerateFrustumFailsOpen(t *testing.T) {
	meshes := []scene.Mesh{meshWith("crate", 0, 1)}
	root := scene.NewNode("root")
	placed(t, root, "behind", math.Vec3{Z: 50}, 0)
	placed(t, root, "ahead", math.Vec3{Z: -10}, 0)
	prepare(t, root, meshes)

	view := forwardView()
	view.Frustum = frustum.Extract(math.Mat4{})
	b, err := NewBuilder(Options{PruneSubtrees: true}).Build(root, meshes, 1, view)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())
	assert.True(t, b.Stats.FrustumDegenerate)
}

func TestBuildDisableCulling(t *testing.T) {
	meshes := []scene.Mesh{meshWith("crate", 0, 1)}
	root := scene.NewNode("root")
	placed(t, root, "behind", math.Vec3{Z: 50}, 0)
	prepare(t, root, meshes)

	b, err := NewBuilder(Options{DisableCulling: true}).Build(root, meshes, 1, forwardView())
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
}

func TestBuildIntoReusesStorage(t *testing.T) {
	meshes := []scene.Mesh{meshWith("a", 0, 1), meshWith("b", 1, 1)}
	root := scene.NewNode("root")
	placed(t, root, "a", math.Vec3{Z: -10}, 0, 1)
	prepare(t, root, meshes)

	builder := NewBuilder(Options{})
	var b RenderBatch
	for i := 0; i < 3; i++ {
		require.NoError(t, builder.BuildInto(&b, root, meshes, 2, forwardView()))
		assert.Equal(t, 2, b.Len())
		assert.Len(t, b.Groups, 2)
	}
}

// randomScene builds a deterministic tree scattered around the camera.
func randomScene(t *testing.T, seed int64) (*scene.Node, []scene.Mesh, int) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	const materials = 5
	var meshes []scene.Mesh
	for i := 0; i < 8; i++ {
		meshes = append(meshes, meshWith("mesh", uint32(rng.Intn(materials)), 1+rng.Intn(4)))
	}

	root := scene.NewNode("root")
	frontier := []*scene.Node{root}
	for i := 0; i < 400; i++ {
		parent := frontier[rng.Intn(len(frontier))]
		var ids []uint32
		for k := rng.Intn(3); k > 0; k-- {
			ids = append(ids, uint32(rng.Intn(len(meshes))))
		}
		at := math.Vec3{X: rng.Float32()*60 - 30, Y: rng.Float32()*20 - 10, Z: rng.Float32()*60 - 40}
		n := placed(t, parent, "n", at, ids...)
		n.Local.Rotation = math.QuatFromAxisAngle(math.Vec3{Y: 1}, rng.Float32()*6)
		frontier = append(frontier, n)
	}
	prepare(t, root, meshes)
	return root, meshes, materials
}

func TestBuildRandomSceneContiguous(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		root, meshes, materials := randomScene(t, seed)
		b, err := NewBuilder(Options{}).Build(root, meshes, materials, forwardView())
		require.NoError(t, err)
		assert.Positive(t, b.Len())
		assert.Positive(t, b.Stats.NodesCulled)
		assertContiguous(t, b)
	}
}

func TestBuildPruneSubtreesSameOutput(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		root, meshes, materials := randomScene(t, seed)
		plain, err := NewBuilder(Options{}).Build(root, meshes, materials, forwardView())
		require.NoError(t, err)
		pruned, err := NewBuilder(Options{PruneSubtrees: true}).Build(root, meshes, materials, forwardView())
		require.NoError(t, err)

		assert.Equal(t, plain.Commands, pruned.Commands)
		assert.Equal(t, plain.Transforms, pruned.Transforms)
		assert.Equal(t, plain.Groups, pruned.Groups)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		root, meshes, materials := randomScene(t, seed)
		seq, err := NewBuilder(Options{}).Build(root, meshes, materials, forwardView())
		require.NoError(t, err)

		par := NewParallel(Options{}, 4)
		for i := 0; i < 2; i++ {
			got, err := par.Build(context.Background(), root, meshes, materials, forwardView())
			require.NoError(t, err)
			assert.Equal(t, seq.Commands, got.Commands)
			assert.Equal(t, seq.Transforms, got.Transforms)
			assert.Equal(t, seq.Groups, got.Groups)
			assert.Equal(t, seq.Stats.NodesVisited, got.Stats.NodesVisited)
			assert.Equal(t, seq.Stats.NodesCulled, got.Stats.NodesCulled)
			assert.Equal(t, seq.Stats.LODHistogram, got.Stats.LODHistogram)
		}
	}
}

func TestParallelPropagatesErrors(t *testing.T) {
	root, meshes, materials := randomScene(t, 9)
	root.Children[len(root.Children)-1].MeshIndices = []uint32{999}

	_, err := NewParallel(Options{}, 3).Build(context.Background(), root, meshes, materials, forwardView())
	assert.ErrorIs(t, err, scene.ErrMeshIndex)
}
