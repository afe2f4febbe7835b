package math

// Vec4 is a 4-component vector. It doubles as a plane (a, b, c, d) and as a
// homogeneous point.
type Vec4 [4]float32

// Add returns v + other.
func (v Vec4) Add(other Vec4) Vec4 {
	return Vec4{v[0] + other[0], v[1] + other[1], v[2] + other[2], v[3] + other[3]}
}

// Sub returns v - other.
func (v Vec4) Sub(other Vec4) Vec4 {
	return Vec4{v[0] - other[0], v[1] - other[1], v[2] - other[2], v[3] - other[3]}
}

// Scale returns v * s.
func (v Vec4) Scale(s float32) Vec4 {
	return Vec4{v[0] * s, v[1] * s, v[2] * s, v[3] * s}
}

// XYZ returns the first three components.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

// PlaneDistance evaluates the plane equation a*x + b*y + c*z + d at p.
func (v Vec4) PlaneDistance(p Vec3) float32 {
	return v[0]*p.X + v[1]*p.Y + v[2]*p.Z + v[3]
}
