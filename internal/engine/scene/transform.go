package scene

import "github.com/Faultbox/greed/pkg/math"

// Transformation is a local translation-rotation-scale pose.
type Transformation struct {
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
}

// IdentityTransform returns a transformation that leaves points unchanged.
func IdentityTransform() Transformation {
	return Transformation{
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// Matrix returns Translate * Rotate * Scale: scale is applied first, then
// rotation, then translation.
func (t Transformation) Matrix() math.Mat4 {
	m := math.Translate(t.Translation.X, t.Translation.Y, t.Translation.Z)
	m = m.Mul(t.Rotation.ToMat4())
	return m.Mul(math.Scale(t.Scale.X, t.Scale.Y, t.Scale.Z))
}
