package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for the BSDF routines
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// SamplePointInUnitDisk generates a random point in a unit disk using concentric mapping
// This avoids rejection sampling by mapping a square uniformly to a disk
func SamplePointInUnitDisk(sample Vec2) Vec3 {
	// Map sample to [-1,1]² and handle degeneracy at the origin
	uOffset := NewVec2(2*sample.X-1, 2*sample.Y-1)
	if uOffset.X == 0 && uOffset.Y == 0 {
		return NewVec3(0, 0, 0)
	}

	// Apply concentric mapping to point
	var theta, r float64
	if math.Abs(uOffset.X) > math.Abs(uOffset.Y) {
		r = uOffset.X
		theta = math.Pi / 4 * (uOffset.Y / uOffset.X)
	} else {
		r = uOffset.Y
		theta = math.Pi/2 - math.Pi/4*(uOffset.X/uOffset.Y)
	}

	return NewVec3(r*math.Cos(theta), r*math.Sin(theta), 0)
}

// SquareToCosineHemisphere lifts a concentric disk sample onto the hemisphere
// around the local z-axis, giving a cosine-weighted direction
func SquareToCosineHemisphere(sample Vec2) Vec3 {
	p := SamplePointInUnitDisk(sample)
	z := math.Sqrt(math.Max(0, 1-p.X*p.X-p.Y*p.Y))
	return NewVec3(p.X, p.Y, z)
}

// CosineHemispherePDF is the solid-angle density of SquareToCosineHemisphere
func CosineHemispherePDF(w Vec3) float64 {
	return CosTheta(w) / math.Pi
}

// SquareToUniformHemisphere maps a sample to a uniformly distributed
// direction on the hemisphere around the local z-axis
func SquareToUniformHemisphere(sample Vec2) Vec3 {
	z := sample.X
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// UniformHemispherePDF is the solid-angle density of SquareToUniformHemisphere
func UniformHemispherePDF() float64 {
	return 1 / (2 * math.Pi)
}
