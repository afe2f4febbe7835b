// Package lod picks a mesh detail level from the projected screen coverage of
// its bounding sphere.
package lod

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/Faultbox/greed/internal/engine/bounds"
	"github.com/Faultbox/greed/pkg/math"
)

// MaxLevels bounds the number of detail levels a mesh may carry.
const MaxLevels = 16

// ErrNoLODs is returned for a mesh without any detail level.
var ErrNoLODs = errors.New("lod: mesh has no detail levels")

// Ratio estimates the fraction of the screen covered by box: the bounding
// sphere radius is projected onto the near plane and squared into an area.
// forward is the unit view direction. It returns +Inf when the box center is
// on or behind the camera plane.
func Ratio(box bounds.Box, near float32, eye, forward math.Vec3) float32 {
	center := box.Center()
	depth := forward.Dot(center.Sub(eye))
	if depth <= 0 {
		return math32.Inf(1)
	}
	p := near * box.Radius() / depth
	return math32.Pi * p * p
}

// Decide returns a detail level in [0, lodCount-1]; 0 is the most detailed.
// Level i is kept while the coverage ratio stays below 1/2^i, so each coarser
// level covers half the screen area of the previous one. Non-finite ratios
// (objects at or behind the camera plane) select level 0.
func Decide(lodCount uint32, box bounds.Box, near float32, eye, forward math.Vec3) (uint32, error) {
	if lodCount == 0 {
		return 0, ErrNoLODs
	}
	if lodCount == 1 {
		return 0, nil
	}
	return Select(lodCount, Ratio(box, near, eye, forward)), nil
}

// Select maps a coverage ratio to a detail level for lodCount > 0.
func Select(lodCount uint32, ratio float32) uint32 {
	if math32.IsNaN(ratio) || math32.IsInf(ratio, 0) {
		return 0
	}
	lods := lodCount - 1
	for lods > 0 && ratio >= threshold(lods) {
		lods--
	}
	return lods
}

// Thresholds returns the minimum coverage ratio at which each level is left
// for the next finer one. Entry 0 is always 0.
func Thresholds(lodCount uint32) []float32 {
	out := make([]float32, lodCount)
	for i := uint32(1); i < lodCount; i++ {
		out[i] = threshold(i)
	}
	return out
}

// threshold is 2^-level. Levels past float32's range flush to 0, so deeper
// tables still step finer for any non-negative ratio.
func threshold(level uint32) float32 {
	return math32.Ldexp(1, -int(level))
}
