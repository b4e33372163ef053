package core

import (
	"fmt"
	"math"
)

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float64
}

// NewVec3 creates a new Vec3
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Subtract returns the difference of two vectors
func (v Vec3) Subtract(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Multiply returns the vector scaled by a scalar
func (v Vec3) Multiply(scalar float64) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Length returns the magnitude of the vector
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Dot returns the dot product of two vectors
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// AbsDot returns the absolute value of the dot product
func (v Vec3) AbsDot(other Vec3) float64 {
	return math.Abs(v.Dot(other))
}

// Normalize returns a unit vector in the same direction
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{0, 0, 0}
	}
	return Vec3{v.X / length, v.Y / length, v.Z / length}
}

func (v Vec3) String() string {
	return fmt.Sprintf("[%g, %g, %g]", v.X, v.Y, v.Z)
}

// Vec2 holds a 2D point, mostly used for sample pairs in [0,1)²
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Local shading frame helpers. Directions are expressed in a frame where
// the z-axis is the shading normal.

// CosTheta returns the cosine of the angle between w and the normal
func CosTheta(w Vec3) float64 {
	return w.Z
}

// CosTheta2 returns the squared cosine of the angle between w and the normal
func CosTheta2(w Vec3) float64 {
	return w.Z * w.Z
}

// SinTheta2 returns the squared sine of the angle between w and the normal
func SinTheta2(w Vec3) float64 {
	return math.Max(0, 1-w.Z*w.Z)
}

// TanTheta2 returns the squared tangent of the angle between w and the normal.
// Returns 0 for directions lying in the tangent plane.
func TanTheta2(w Vec3) float64 {
	cos2 := w.Z * w.Z
	if cos2 == 0 {
		return 0
	}
	return SinTheta2(w) / cos2
}

// SphericalDirection builds a unit vector in the local frame from polar and azimuthal angles
func SphericalDirection(theta, phi float64) Vec3 {
	sinTheta, cosTheta := math.Sincos(theta)
	sinPhi, cosPhi := math.Sincos(phi)
	return Vec3{X: sinTheta * cosPhi, Y: sinTheta * sinPhi, Z: cosTheta}
}

// Reflect mirrors wi about the microfacet normal m: 2(wi·m)m - wi
func Reflect(wi, m Vec3) Vec3 {
	return m.Multiply(2 * wi.Dot(m)).Subtract(wi)
}
