package scenefile

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/greed/internal/engine/bounds"
	"github.com/Faultbox/greed/internal/engine/lighting"
	"github.com/Faultbox/greed/internal/engine/scene"
	"github.com/Faultbox/greed/internal/game/level"
	"github.com/Faultbox/greed/pkg/math"
)

// rootName names the implicit root when a file lists several top-level nodes.
const rootName = "scene"

type builder struct {
	sc        *level.Scene
	materials map[string]uint32
	meshes    map[string]uint32
}

// Build generates geometry for f and assembles the scene hierarchy.
func Build(f *File) (*level.Scene, error) {
	b := &builder{
		sc:        &level.Scene{Name: f.Name},
		materials: make(map[string]uint32, len(f.Materials)),
		meshes:    make(map[string]uint32, len(f.Meshes)),
	}
	for _, m := range f.Materials {
		if _, dup := b.materials[m.Name]; dup {
			return nil, fmt.Errorf("material %q: %w", m.Name, ErrDuplicate)
		}
		b.materials[m.Name] = uint32(len(b.sc.Materials))
		b.sc.Materials = append(b.sc.Materials, scene.Material{Name: m.Name, BaseColor: m.Color})
	}
	for i := range f.Meshes {
		if err := b.addMesh(&f.Meshes[i]); err != nil {
			return nil, err
		}
	}

	root, err := b.roots(f.Nodes)
	if err != nil {
		return nil, err
	}
	b.sc.Root = root
	if f.Sun != nil {
		sun := lighting.Sun{Azimuth: f.Sun.Azimuth, Elevation: f.Sun.Elevation, Ambient: f.Sun.Ambient}.Clamped()
		b.sc.Sun = &sun
	}
	return b.sc, nil
}

func (b *builder) addMesh(ms *MeshSpec) error {
	if _, dup := b.meshes[ms.Name]; dup {
		return fmt.Errorf("mesh %q: %w", ms.Name, ErrDuplicate)
	}
	material, ok := b.materials[ms.Material]
	if !ok {
		return fmt.Errorf("mesh %q material %q: %w", ms.Name, ms.Material, ErrReference)
	}
	lods := max(ms.LODs, 1)

	// levels holds the distinct geometries; use maps each LOD onto one.
	// LODs that map to the same geometry share its index range.
	var (
		levels []geometry
		use    []int
	)
	switch ms.Shape {
	case "box":
		size := math.Vec3FromArr(ms.Size)
		if size == (math.Vec3{}) {
			size = math.Vec3{X: 1, Y: 1, Z: 1}
		}
		// A box has nothing to simplify.
		levels = append(levels, boxGeometry(size))
		use = make([]int, lods)
	case "sphere":
		radius := ms.Radius
		if radius == 0 {
			radius = 0.5
		}
		segments := ms.Segments
		if segments == 0 {
			segments = 32
		}
		prev := 0
		for lod := range lods {
			n := max(segments>>lod, minSegments)
			if n != prev {
				levels = append(levels, sphereGeometry(radius, n))
				prev = n
			}
			use = append(use, len(levels)-1)
		}
	default:
		return fmt.Errorf("mesh %q shape %q: %w", ms.Name, ms.Shape, ErrShape)
	}

	mesh := scene.Mesh{
		Name:          ms.Name,
		VertexOffset:  uint32(len(b.sc.Vertices)),
		MaterialIndex: material,
	}
	var points []math.Vec3
	offsets := make([]uint32, len(levels))
	for i, g := range levels {
		base := uint32(len(b.sc.Vertices)) - mesh.VertexOffset
		offsets[i] = uint32(len(b.sc.Indices))
		for _, idx := range g.indices {
			b.sc.Indices = append(b.sc.Indices, base+idx)
		}
		for _, v := range g.vertices {
			points = append(points, v.Position)
		}
		b.sc.Vertices = append(b.sc.Vertices, g.vertices...)
	}
	for _, i := range use {
		mesh.IndexOffsetsByLOD = append(mesh.IndexOffsetsByLOD, offsets[i])
		mesh.IndexCountsByLOD = append(mesh.IndexCountsByLOD, uint32(len(levels[i].indices)))
	}
	mesh.VertexCount = uint32(len(b.sc.Vertices)) - mesh.VertexOffset

	box, err := bounds.FromPoints(points)
	if err != nil {
		return fmt.Errorf("mesh %q: %w", ms.Name, err)
	}
	mesh.Bounds = box

	b.meshes[ms.Name] = uint32(len(b.sc.Meshes))
	b.sc.Meshes = append(b.sc.Meshes, mesh)
	return nil
}

func (b *builder) roots(nodes []NodeSpec) (*scene.Node, error) {
	if len(nodes) == 1 {
		return b.node(&nodes[0])
	}
	root := scene.NewNode(rootName)
	for i := range nodes {
		child, err := b.node(&nodes[i])
		if err != nil {
			return nil, err
		}
		if err := root.AddChild(child); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func (b *builder) node(ns *NodeSpec) (*scene.Node, error) {
	n := scene.NewNode(ns.Name)
	n.Local = transformOf(ns)
	for _, name := range ns.Meshes {
		idx, ok := b.meshes[name]
		if !ok {
			return nil, fmt.Errorf("node %q mesh %q: %w", ns.Name, name, ErrReference)
		}
		n.MeshIndices = append(n.MeshIndices, idx)
	}
	for i := range ns.Children {
		child, err := b.node(&ns.Children[i])
		if err != nil {
			return nil, err
		}
		if err := n.AddChild(child); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func transformOf(ns *NodeSpec) scene.Transformation {
	t := scene.IdentityTransform()
	t.Translation = math.Vec3FromArr(ns.Translation)
	switch {
	case ns.Rotation != nil:
		r := ns.Rotation
		t.Rotation = math.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]}.Normalize()
	case ns.Euler != [3]float32{}:
		rad := func(deg float32) float32 { return deg * math32.Pi / 180 }
		t.Rotation = math.QuatFromEuler(rad(ns.Euler[0]), rad(ns.Euler[1]), rad(ns.Euler[2]))
	}
	if ns.Scale != nil {
		t.Scale = math.Vec3FromArr(*ns.Scale)
	}
	return t
}
