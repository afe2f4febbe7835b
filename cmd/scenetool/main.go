// scenetool is a CLI utility for inspecting scene files and the draw batches
// they produce.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/segmentio/encoding/json"

	"github.com/Faultbox/greed/internal/engine/batch"
	"github.com/Faultbox/greed/internal/engine/camera"
	"github.com/Faultbox/greed/internal/engine/lod"
	"github.com/Faultbox/greed/internal/engine/scene"
	"github.com/Faultbox/greed/internal/game/level"
	"github.com/Faultbox/greed/internal/scenefile"
	"github.com/Faultbox/greed/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string, w io.Writer) error {
	switch command {
	case "info":
		return cmdInfo(args, w)
	case "tree", "ls":
		return cmdTree(args, w)
	case "frame", "dump":
		return cmdFrame(args, w)
	case "help", "-h", "--help":
		printUsage(w)
		return nil
	default:
		printUsage(w)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `scenetool - scene file and draw batch inspector

Usage:
  scenetool <command> [options] <scene.yaml|scene.toml>

Commands:
  info <scene>                 Show buffer and hierarchy sizes
  tree <scene>                 Print the node hierarchy
  frame [options] <scene>      Build one frame and print it as JSON

Frame options:
  -pos x,y,z      Camera position (default 0,0,10)
  -look x,y,z     Point the camera looks at (default 0,0,0)
  -fov deg        Vertical field of view (default 60)
  -aspect r       Aspect ratio (default 1.7778)
  -near, -far     Clip distances (default 0.1, 1000)
  -workers n      Parallel subtree workers (default 1)
  -prune          Skip subtrees whose bounds are outside the frustum
  -nocull         Disable frustum culling
  -commands       Include every draw command

Examples:
  scenetool info assets/demo.yaml
  scenetool frame -pos 0,5,20 -look 0,0,0 assets/demo.yaml`)
}

func loadLevel(path string, opts level.Options) (*level.Level, error) {
	sc, err := scenefile.Load(path)
	if err != nil {
		return nil, err
	}
	return level.New(sc, opts)
}

func cmdInfo(args []string, w io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: scenetool info <scene>")
	}
	lvl, err := loadLevel(args[0], level.Options{})
	if err != nil {
		return err
	}
	scene.Resolve(lvl.Root)

	fmt.Fprintf(w, "Scene:     %s\n", lvl.Name)
	fmt.Fprintf(w, "Nodes:     %d\n", lvl.Root.Count())
	fmt.Fprintf(w, "Meshes:    %d\n", len(lvl.Meshes))
	fmt.Fprintf(w, "Materials: %d\n", len(lvl.Materials))
	fmt.Fprintf(w, "Vertices:  %d\n", len(lvl.Vertices))
	fmt.Fprintf(w, "Indices:   %d\n", len(lvl.Indices))
	if box, ok := lvl.Root.SubtreeBounds(); ok {
		fmt.Fprintf(w, "Bounds:    %v .. %v\n", formatVec(box.Min), formatVec(box.Max))
	}
	return nil
}

func cmdTree(args []string, w io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: scenetool tree <scene>")
	}
	lvl, err := loadLevel(args[0], level.Options{})
	if err != nil {
		return err
	}
	lvl.Root.Walk(func(n *scene.Node) bool {
		names := make([]string, 0, len(n.MeshIndices))
		for _, mi := range n.MeshIndices {
			names = append(names, lvl.Meshes[mi].Name)
		}
		fmt.Fprintf(w, "%s%s", strings.Repeat("  ", n.Depth()), n.Name)
		if len(names) > 0 {
			fmt.Fprintf(w, " [%s]", strings.Join(names, ", "))
		}
		fmt.Fprintln(w)
		return true
	})
	return nil
}

// frameReport is the JSON document printed by the frame command.
type frameReport struct {
	Scene    string              `json:"scene"`
	Camera   cameraReport        `json:"camera"`
	Stats    statsReport         `json:"stats"`
	Groups   []groupReport       `json:"groups"`
	Commands []batch.DrawCommand `json:"commands,omitempty"`
}

type cameraReport struct {
	Position [3]float32 `json:"position"`
	Forward  [3]float32 `json:"forward"`
}

// statsReport mirrors batch.Stats. LODThresholds are the coverage ratios at
// which each level gives way to the next finer one, for the deepest mesh.
type statsReport struct {
	NodesVisited      int       `json:"nodes_visited"`
	NodesCulled       int       `json:"nodes_culled"`
	SubtreesPruned    int       `json:"subtrees_pruned"`
	Commands          int       `json:"commands"`
	FrustumDegenerate bool      `json:"frustum_degenerate"`
	LODs              []uint32  `json:"lods"`
	LODThresholds     []float32 `json:"lod_thresholds"`
}

type groupReport struct {
	Material string `json:"material"`
	Index    uint32 `json:"index"`
	First    uint32 `json:"first"`
	Count    uint32 `json:"count"`
}

func cmdFrame(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("frame", flag.ContinueOnError)
	fs.SetOutput(w)
	pos := vec3Flag{Z: 10}
	look := vec3Flag{}
	fs.Var(&pos, "pos", "camera position x,y,z")
	fs.Var(&look, "look", "look-at point x,y,z")
	fov := fs.Float64("fov", 60, "vertical field of view in degrees")
	aspect := fs.Float64("aspect", 16.0/9.0, "aspect ratio")
	near := fs.Float64("near", 0.1, "near clip distance")
	far := fs.Float64("far", 1000, "far clip distance")
	workers := fs.Int("workers", 1, "parallel subtree workers")
	prune := fs.Bool("prune", false, "prune subtrees outside the frustum")
	nocull := fs.Bool("nocull", false, "disable frustum culling")
	commands := fs.Bool("commands", false, "include every draw command")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: scenetool frame [options] <scene>")
	}

	lvl, err := loadLevel(fs.Arg(0), level.Options{
		Batch:   batch.Options{PruneSubtrees: *prune, DisableCulling: *nocull},
		Workers: *workers,
	})
	if err != nil {
		return err
	}

	fp := camera.NewFirstPerson()
	fp.Pos = math.Vec3(pos)
	fp.LookAt(math.Vec3(look))
	cam := &camera.Camera{
		Positioner: fp,
		Projection: camera.Projection{
			FovY:   float32(*fov) * math32.Pi / 180,
			Aspect: float32(*aspect),
			Near:   float32(*near),
			Far:    float32(*far),
		},
	}

	b, err := lvl.Frame(context.Background(), cam)
	if err != nil {
		return err
	}

	report := buildReport(lvl, cam, b, *commands)
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func buildReport(lvl *level.Level, cam *camera.Camera, b *batch.RenderBatch, withCommands bool) frameReport {
	p, f := cam.Position(), cam.Forward()
	r := frameReport{
		Scene:  lvl.Name,
		Camera: cameraReport{Position: p.Arr(), Forward: f.Arr()},
		Stats: statsReport{
			NodesVisited:      b.Stats.NodesVisited,
			NodesCulled:       b.Stats.NodesCulled,
			SubtreesPruned:    b.Stats.SubtreesPruned,
			Commands:          b.Stats.Commands,
			FrustumDegenerate: b.Stats.FrustumDegenerate,
		},
		Groups: make([]groupReport, 0, len(b.Groups)),
	}

	// Trim trailing empty LOD buckets.
	hist := b.Stats.LODHistogram[:]
	for len(hist) > 0 && hist[len(hist)-1] == 0 {
		hist = hist[:len(hist)-1]
	}
	r.Stats.LODs = append([]uint32{}, hist...)

	deepest := uint32(0)
	for i := range lvl.Meshes {
		deepest = max(deepest, lvl.Meshes[i].LODCount())
	}
	r.Stats.LODThresholds = lod.Thresholds(deepest)

	for _, g := range b.Groups {
		name := ""
		if int(g.Material) < len(lvl.Materials) {
			name = lvl.Materials[g.Material].Name
		}
		r.Groups = append(r.Groups, groupReport{Material: name, Index: g.Material, First: g.First, Count: g.Count})
	}
	if withCommands {
		r.Commands = append([]batch.DrawCommand{}, b.Commands...)
	}
	return r
}

func formatVec(v math.Vec3) string {
	return fmt.Sprintf("(%.3g, %.3g, %.3g)", v.X, v.Y, v.Z)
}

// vec3Flag parses "x,y,z".
type vec3Flag math.Vec3

func (v *vec3Flag) String() string {
	return fmt.Sprintf("%g,%g,%g", v.X, v.Y, v.Z)
}

func (v *vec3Flag) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("want x,y,z, got %q", s)
	}
	var out [3]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
		out[i] = float32(f)
	}
	*v = vec3Flag{X: out[0], Y: out[1], Z: out[2]}
	return nil
}
