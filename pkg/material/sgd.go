package material

import (
	"fmt"
	"math"
	"strings"

	"github.com/df07/go-sgd-bsdf/pkg/core"
)

const invPi = 1.0 / math.Pi

// SGD is a two-lobe reflectance model: a Lambertian diffuse lobe plus a
// microfacet specular lobe using the Shifted Gamma Distribution NDF, an
// angular shadowing term and a modified Schlick Fresnel term.
//
// Specular evaluation is per channel. Sampling uses a single Beckmann-style
// lobe of width Roughness, so Sample corrects the mismatch by returning
// Evaluate/PDF.
//
// An SGD is read-only after Configure and safe for concurrent use.
type SGD struct {
	ID string // Identifier reported by String

	params                 Params
	specularSamplingWeight float64
}

var _ BSDF = (*SGD)(nil)

// NewSGD creates a configured SGD material from a copy of params
func NewSGD(params Params) *SGD {
	s := &SGD{params: params}
	s.Configure()
	return s
}

// NewDefaultSGD creates an SGD material with DefaultParams
func NewDefaultSGD() *SGD {
	return NewSGD(DefaultParams())
}

// Configure recomputes the derived lobe selection weight. It must run after
// any parameter change and before the model is queried again.
func (s *SGD) Configure() {
	dAvg := s.params.DiffuseReflectance.Luminance()
	sAvg := s.params.SpecularReflectance.Luminance()
	if dAvg+sAvg > 0 {
		s.specularSamplingWeight = sAvg / (dAvg + sAvg)
	} else {
		s.specularSamplingWeight = 0
	}
}

// SetParams replaces every parameter and reconfigures. Callers must not
// query the model concurrently with SetParams.
func (s *SGD) SetParams(params Params) {
	s.params = params
	s.Configure()
}

// Params returns a copy of the model parameters
func (s *SGD) Params() Params {
	return s.params
}

// Roughness returns the sampling roughness
func (s *SGD) Roughness() float64 {
	return s.params.Roughness
}

// SpecularSamplingWeight returns the probability of choosing the specular lobe
// when both lobes are enabled
func (s *SGD) SpecularSamplingWeight() float64 {
	return s.specularSamplingWeight
}

// Evaluate implements BSDF
func (s *SGD) Evaluate(q Query, measure Measure) core.Spectrum {
	if measure != SolidAngle ||
		core.CosTheta(q.Wi) <= 0 ||
		core.CosTheta(q.Wo) <= 0 {
		return core.Spectrum{}
	}

	var result core.Spectrum
	if q.HasGlossy() {
		result = result.Add(s.evalSpecular(q.Wi, q.Wo))
	}
	if q.HasDiffuse() {
		result = result.Add(s.params.DiffuseReflectance.Scale(invPi).Scale(core.CosTheta(q.Wo)))
	}
	return result
}

// evalSpecular evaluates the microfacet lobe. Both directions are above the surface.
func (s *SGD) evalSpecular(wi, wo core.Vec3) core.Spectrum {
	h := wi.Add(wo).Normalize()
	cosThetaH := core.CosTheta(h)
	if cosThetaH <= 0 {
		return core.Spectrum{}
	}

	cosTheta2 := core.CosTheta2(h)
	cosTheta4 := cosTheta2 * cosTheta2
	if cosTheta4 == 0 {
		return core.Spectrum{}
	}
	tanTheta2 := core.TanTheta2(h)
	hwi := math.Min(1, wi.Dot(h))
	chi := chiPlus(cosThetaH)

	// G1 takes the cosine of wo in the incident slot and wi in the outgoing slot
	cosThetaI := core.CosTheta(wo)
	cosThetaO := core.CosTheta(wi)

	p := &s.params
	var result core.Spectrum
	for idx := 0; idx < core.SpectrumChannels; idx++ {
		x := p.Alpha[idx] + tanTheta2/p.Alpha[idx]
		p22 := p.Kappa[idx] * math.Exp(-x) / math.Pow(x, p.P[idx])
		d := chi * p22 * invPi / cosTheta4

		g := s.g1(idx, cosThetaI) * s.g1(idx, cosThetaO)
		f := fresnel(p.F0[idx], p.F1[idx], hwi)

		result[idx] = p.SpecularReflectance[idx] * invPi * d * g * f / core.CosTheta(wi)
	}
	// Underflow of grazing cosines leaves no representable value
	if !result.IsFinite() {
		return core.Spectrum{}
	}
	return result
}

// PDF implements BSDF. The glossy component must be permitted by the query;
// a diffuse-only query always has zero density.
func (s *SGD) PDF(q Query, measure Measure) float64 {
	if measure != SolidAngle ||
		core.CosTheta(q.Wi) <= 0 ||
		core.CosTheta(q.Wo) <= 0 ||
		(q.Component != AllComponents && q.Component != ComponentGlossy) ||
		q.TypeMask&GlossyReflection == 0 {
		return 0
	}

	hasSpecular := q.HasGlossy()
	hasDiffuse := q.HasDiffuse()

	diffuseProb, specProb := 0.0, 0.0
	if hasDiffuse {
		diffuseProb = core.CosineHemispherePDF(q.Wo)
	}
	if hasSpecular {
		specProb = s.specularPDF(q.Wi, q.Wo)
	}

	switch {
	case hasDiffuse && hasSpecular:
		return s.specularSamplingWeight*specProb + (1-s.specularSamplingWeight)*diffuseProb
	case hasDiffuse:
		return diffuseProb
	case hasSpecular:
		return specProb
	default:
		return 0
	}
}

// specularPDF is the density of the roughness-driven sampling lobe,
// converted from half-vector to outgoing-direction measure
func (s *SGD) specularPDF(wi, wo core.Vec3) float64 {
	h := wi.Add(wo)
	hLen := h.Length()
	if hLen == 0 {
		return 0
	}
	h = h.Multiply(1 / hLen)

	roughness2 := s.params.Roughness * s.params.Roughness
	cosTheta2 := core.CosTheta2(h)
	denom := roughness2 * cosTheta2 * cosTheta2 * 4 * wo.AbsDot(h)
	if denom == 0 {
		return 0
	}
	pdf := invPi * core.CosTheta(h) * math.Exp(-core.TanTheta2(h)/roughness2) / denom
	if math.IsNaN(pdf) || math.IsInf(pdf, 0) {
		return 0
	}
	return pdf
}

// Sample implements BSDF
func (s *SGD) Sample(q Query, sample core.Vec2) SampleResult {
	hasSpecular := q.HasGlossy()
	hasDiffuse := q.HasDiffuse()
	if !hasSpecular && !hasDiffuse {
		return SampleResult{}
	}

	// Pick a lobe and stretch the first coordinate back over [0,1)
	choseSpecular := hasSpecular
	if hasDiffuse && hasSpecular {
		w := s.specularSamplingWeight
		if w > 0 && sample.X <= w {
			sample.X /= w
		} else {
			sample.X = (sample.X - w) / (1 - w)
			choseSpecular = false
		}
	}

	result := SampleResult{Eta: 1}
	if choseSpecular {
		m := s.sampleMicrofacetNormal(sample)
		result.Wo = core.Reflect(q.Wi, m)
		result.SampledComponent = ComponentGlossy
		result.SampledType = GlossyReflection
	} else {
		result.Wo = core.SquareToCosineHemisphere(sample)
		result.SampledComponent = ComponentDiffuse
		result.SampledType = DiffuseReflection
	}

	sq := q
	sq.Wo = result.Wo
	result.PDF = s.PDF(sq, SolidAngle)

	// Explicit evaluate / pdf; rejected samples near grazing angles carry no weight
	if result.PDF == 0 || core.CosTheta(result.Wo) <= 0 {
		return result
	}
	if weight := s.Evaluate(sq, SolidAngle).Div(result.PDF); weight.IsFinite() {
		result.Weight = weight
	}
	return result
}

// sampleMicrofacetNormal inverts the Beckmann CDF of width Roughness
func (s *SGD) sampleMicrofacetNormal(sample core.Vec2) core.Vec3 {
	phiM := 2 * math.Pi * sample.Y
	tanThetaMSqr := -s.params.Roughness * s.params.Roughness * math.Log(1-sample.X)
	cosThetaM := 1 / math.Sqrt(1+tanThetaMSqr)
	sinThetaM := math.Sqrt(math.Max(0, 1-cosThetaM*cosThetaM))
	sinPhiM, cosPhiM := math.Sincos(phiM)

	return core.NewVec3(sinThetaM*cosPhiM, sinThetaM*sinPhiM, cosThetaM)
}

// fresnel is the modified Schlick approximation F0 + (1-F0)(1-c)^5 - F1*c
func fresnel(f0, f1, c float64) float64 {
	return f0 + (1-f0)*math.Pow(1-c, 5) - f1*c
}

// g1 is the per-channel shadowing factor for a direction with the given cosine
func (s *SGD) g1(idx int, cosTheta float64) float64 {
	theta := math.Acos(math.Max(-1, math.Min(1, cosTheta)))
	theta0 := s.params.Theta0[idx]
	if theta > theta0 {
		lambda := s.params.Lambda[idx]
		c := s.params.C[idx]
		k := s.params.K[idx]
		return 1 + lambda*(1-math.Exp(c*math.Pow(theta-theta0, k)))
	}
	return 1
}

// chiPlus is the positive characteristic function
func chiPlus(v float64) float64 {
	if v > 0 {
		return 1
	}
	return 0
}

func (s *SGD) String() string {
	var sb strings.Builder
	sb.WriteString("SGD[\n")
	fmt.Fprintf(&sb, "  id = %q,\n", s.ID)
	fmt.Fprintf(&sb, "  diffuseReflectance = %v,\n", s.params.DiffuseReflectance)
	fmt.Fprintf(&sb, "  specularReflectance = %v,\n", s.params.SpecularReflectance)
	fmt.Fprintf(&sb, "  roughness = %g\n", s.params.Roughness)
	sb.WriteString("]")
	return sb.String()
}
