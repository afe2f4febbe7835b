// Package batch turns a resolved scene graph into an ordered list of indirect
// draw commands grouped by material.
package batch

import (
	"github.com/Faultbox/greed/internal/engine/lod"
	"github.com/Faultbox/greed/pkg/math"
)

// DrawCommand mirrors the layout of DrawElementsIndirectCommand.
type DrawCommand struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    uint32
	// BaseInstance is the index of the command's world matrix in
	// RenderBatch.Transforms.
	BaseInstance uint32
}

// MaterialGroup is a contiguous run of commands sharing one material.
type MaterialGroup struct {
	Material uint32
	First    uint32
	Count    uint32
}

// Stats summarizes one Build call.
type Stats struct {
	NodesVisited      int
	NodesCulled       int
	SubtreesPruned    int
	Commands          int
	Groups            int
	FrustumDegenerate bool
	LODHistogram      [lod.MaxLevels]uint32
}

// RenderBatch is the per-frame draw list. Commands, Transforms and Materials
// are parallel; commands of one material are contiguous and listed in Groups.
type RenderBatch struct {
	Commands   []DrawCommand
	Transforms []math.Mat4
	Materials  []uint32
	Groups     []MaterialGroup
	Stats      Stats
}

// Len returns the number of draw commands.
func (b *RenderBatch) Len() int {
	return len(b.Commands)
}

// Reset empties the batch, keeping allocated storage.
func (b *RenderBatch) Reset() {
	b.Commands = b.Commands[:0]
	b.Transforms = b.Transforms[:0]
	b.Materials = b.Materials[:0]
	b.Groups = b.Groups[:0]
	b.Stats = Stats{}
}

// GroupCommands returns the commands of g.
func (b *RenderBatch) GroupCommands(g MaterialGroup) []DrawCommand {
	return b.Commands[g.First : g.First+g.Count]
}
