package core

import (
	"fmt"
	"math"
)

// SpectrumChannels is the number of wavelength channels carried by a Spectrum
const SpectrumChannels = 3

// Spectrum is an RGB spectral quantity. All arithmetic is channel-wise.
type Spectrum [SpectrumChannels]float64

// NewSpectrum creates a spectrum from three channel values
func NewSpectrum(r, g, b float64) Spectrum {
	return Spectrum{r, g, b}
}

// SpectrumFromScalar creates a spectrum with the same value in every channel
func SpectrumFromScalar(v float64) Spectrum {
	return Spectrum{v, v, v}
}

// Add returns the channel-wise sum
func (s Spectrum) Add(other Spectrum) Spectrum {
	return Spectrum{s[0] + other[0], s[1] + other[1], s[2] + other[2]}
}

// Mul returns the channel-wise product
func (s Spectrum) Mul(other Spectrum) Spectrum {
	return Spectrum{s[0] * other[0], s[1] * other[1], s[2] * other[2]}
}

// Scale returns the spectrum multiplied by a scalar
func (s Spectrum) Scale(f float64) Spectrum {
	return Spectrum{s[0] * f, s[1] * f, s[2] * f}
}

// Div returns the spectrum divided by a scalar
func (s Spectrum) Div(f float64) Spectrum {
	return Spectrum{s[0] / f, s[1] / f, s[2] / f}
}

// Luminance returns the Y component of the linear sRGB value
func (s Spectrum) Luminance() float64 {
	return 0.212671*s[0] + 0.715160*s[1] + 0.072169*s[2]
}

// IsZero reports whether every channel is exactly zero
func (s Spectrum) IsZero() bool {
	return s[0] == 0 && s[1] == 0 && s[2] == 0
}

// IsFinite reports whether no channel is NaN or infinite
func (s Spectrum) IsFinite() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// IsValid reports whether every channel is finite and non-negative
func (s Spectrum) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

// Max returns the largest channel value
func (s Spectrum) Max() float64 {
	return math.Max(s[0], math.Max(s[1], s[2]))
}

func (s Spectrum) String() string {
	return fmt.Sprintf("[%g, %g, %g]", s[0], s[1], s[2])
}
