package material

import (
	"github.com/df07/go-sgd-bsdf/pkg/core"
)

// Params holds the SGD model parameters. Every spectral field is evaluated
// channel by channel; Roughness only drives the sampling density.
type Params struct {
	DiffuseReflectance  core.Spectrum // Diffuse lobe weight
	SpecularReflectance core.Spectrum // Specular lobe weight

	Alpha core.Spectrum // NDF shape
	P     core.Spectrum // NDF exponent
	Kappa core.Spectrum // NDF normalization

	F0 core.Spectrum // Fresnel reflectance at normal incidence
	F1 core.Spectrum // Fresnel linear falloff

	Lambda core.Spectrum // Shadowing amplitude
	C      core.Spectrum // Shadowing exponential rate
	K      core.Spectrum // Shadowing angular exponent
	Theta0 core.Spectrum // Shadowing onset angle in radians

	Roughness float64 // Width of the approximate sampling NDF
}

// DefaultParams returns the parameters used when a property is not supplied
func DefaultParams() Params {
	return Params{
		DiffuseReflectance:  core.SpectrumFromScalar(0.5),
		SpecularReflectance: core.SpectrumFromScalar(0.2),
		Alpha:               core.SpectrumFromScalar(0.1),
		P:                   core.SpectrumFromScalar(0.1),
		Kappa:               core.SpectrumFromScalar(0.1),
		F0:                  core.SpectrumFromScalar(0.1),
		F1:                  core.SpectrumFromScalar(0.1),
		Lambda:              core.SpectrumFromScalar(0.1),
		C:                   core.SpectrumFromScalar(0.1),
		K:                   core.SpectrumFromScalar(0.1),
		Theta0:              core.SpectrumFromScalar(0.1),
		Roughness:           0.1,
	}
}

// spectra returns pointers to the spectral fields in persisted order
func (p *Params) spectra() []*core.Spectrum {
	return []*core.Spectrum{
		&p.DiffuseReflectance,
		&p.SpecularReflectance,
		&p.Alpha,
		&p.P,
		&p.Kappa,
		&p.F0,
		&p.F1,
		&p.Lambda,
		&p.C,
		&p.K,
		&p.Theta0,
	}
}
