package material

import (
	"github.com/df07/go-sgd-bsdf/pkg/core"
)

// BSDF is the capability a reflectance model exposes to an integrator.
// All directions are unit vectors in the local shading frame (z = normal).
type BSDF interface {
	// Evaluate returns the BSDF value times the foreshortening term for a direction pair
	Evaluate(q Query, measure Measure) core.Spectrum

	// PDF returns the solid-angle density with which Sample would generate q.Wo
	PDF(q Query, measure Measure) float64

	// Sample draws an outgoing direction for q.Wi from a 2D uniform sample.
	// q.Wo is ignored.
	Sample(q Query, sample core.Vec2) SampleResult
}

// Measure tags the integration measure a query is expressed in
type Measure int

const (
	SolidAngle Measure = iota
	Discrete
	Length
)

func (m Measure) String() string {
	switch m {
	case SolidAngle:
		return "solidAngle"
	case Discrete:
		return "discrete"
	case Length:
		return "length"
	}
	return "invalid"
}

// ComponentType is a bit mask of scattering lobe types
type ComponentType uint32

const (
	GlossyReflection ComponentType = 1 << iota
	DiffuseReflection

	AllTypes = GlossyReflection | DiffuseReflection
)

// Component indices. A query selects either a single component or all of them.
const (
	AllComponents    = -1
	ComponentGlossy  = 0
	ComponentDiffuse = 1
)

// Query carries the per-call direction pair and the lobe selection.
// It is owned by the caller; models never retain it.
type Query struct {
	Wi        core.Vec3
	Wo        core.Vec3
	TypeMask  ComponentType
	Component int
}

// NewQuery creates a query that enables every component
func NewQuery(wi, wo core.Vec3) Query {
	return Query{Wi: wi, Wo: wo, TypeMask: AllTypes, Component: AllComponents}
}

// WithComponent returns a copy of q restricted to a single component index
func (q Query) WithComponent(component int) Query {
	q.Component = component
	return q
}

// HasGlossy reports whether the glossy lobe is enabled
func (q Query) HasGlossy() bool {
	return q.TypeMask&GlossyReflection != 0 &&
		(q.Component == AllComponents || q.Component == ComponentGlossy)
}

// HasDiffuse reports whether the diffuse lobe is enabled
func (q Query) HasDiffuse() bool {
	return q.TypeMask&DiffuseReflection != 0 &&
		(q.Component == AllComponents || q.Component == ComponentDiffuse)
}

// SampleResult contains the outcome of BSDF sampling
type SampleResult struct {
	Wo               core.Vec3     // Sampled outgoing direction
	Weight           core.Spectrum // Evaluate / PDF, zero when the sample is rejected
	PDF              float64       // Density of Wo under the full sampling strategy
	SampledComponent int           // Index of the lobe that generated Wo
	SampledType      ComponentType // Type of the lobe that generated Wo
	Eta              float64       // Relative index of refraction, 1 for reflection
}

// IsZero reports whether the sample carries no energy
func (s SampleResult) IsZero() bool {
	return s.Weight.IsZero()
}
