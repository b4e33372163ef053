package core

import (
	"math"
	"testing"
)

func TestVec3_Reflect(t *testing.T) {
	tests := []struct {
		name     string
		wi       Vec3
		m        Vec3
		expected Vec3
	}{
		{
			name:     "Normal incidence",
			wi:       NewVec3(0, 0, 1),
			m:        NewVec3(0, 0, 1),
			expected: NewVec3(0, 0, 1),
		},
		{
			name:     "45 degrees about the normal",
			wi:       NewVec3(1, 0, 1).Normalize(),
			m:        NewVec3(0, 0, 1),
			expected: NewVec3(-1, 0, 1).Normalize(),
		},
		{
			name:     "Tilted microfacet",
			wi:       NewVec3(0, 0, 1),
			m:        NewVec3(1, 0, 1).Normalize(),
			expected: NewVec3(1, 0, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Reflect(tt.wi, tt.m)

			const tolerance = 1e-9
			if result.Subtract(tt.expected).Length() > tolerance {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestFrameHelpers(t *testing.T) {
	tests := []struct {
		name      string
		w         Vec3
		cosTheta  float64
		tanTheta2 float64
	}{
		{"Normal", NewVec3(0, 0, 1), 1, 0},
		{"45 degrees", NewVec3(1, 0, 1).Normalize(), math.Sqrt(0.5), 1},
		{"60 degrees", SphericalDirection(math.Pi/3, 0.7), 0.5, 3},
		{"Tangent plane", NewVec3(1, 0, 0), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(CosTheta(tt.w)-tt.cosTheta) > 1e-9 {
				t.Errorf("CosTheta: got %f, expected %f", CosTheta(tt.w), tt.cosTheta)
			}
			if math.Abs(CosTheta2(tt.w)-tt.cosTheta*tt.cosTheta) > 1e-9 {
				t.Errorf("CosTheta2: got %f, expected %f", CosTheta2(tt.w), tt.cosTheta*tt.cosTheta)
			}
			if math.Abs(TanTheta2(tt.w)-tt.tanTheta2) > 1e-9 {
				t.Errorf("TanTheta2: got %f, expected %f", TanTheta2(tt.w), tt.tanTheta2)
			}
		})
	}
}

func TestSphericalDirection_IsUnit(t *testing.T) {
	for theta := 0.0; theta <= math.Pi; theta += 0.3 {
		for phi := 0.0; phi < 2*math.Pi; phi += 0.5 {
			w := SphericalDirection(theta, phi)
			if math.Abs(w.Length()-1) > 1e-12 {
				t.Fatalf("SphericalDirection(%f, %f) has length %f", theta, phi, w.Length())
			}
			if math.Abs(CosTheta(w)-math.Cos(theta)) > 1e-12 {
				t.Fatalf("SphericalDirection(%f, %f) has cosTheta %f", theta, phi, CosTheta(w))
			}
		}
	}
}

func TestVec3_NormalizeZero(t *testing.T) {
	zero := NewVec3(0, 0, 0)
	if zero.Normalize() != zero {
		t.Errorf("Normalizing the zero vector should return zero, got %v", zero.Normalize())
	}
}

func TestSpectrum_Arithmetic(t *testing.T) {
	a := NewSpectrum(1, 2, 3)
	b := NewSpectrum(0.5, 0.25, 2)

	if got := a.Add(b); got != NewSpectrum(1.5, 2.25, 5) {
		t.Errorf("Add: got %v", got)
	}
	if got := a.Mul(b); got != NewSpectrum(0.5, 0.5, 6) {
		t.Errorf("Mul: got %v", got)
	}
	if got := a.Scale(2); got != NewSpectrum(2, 4, 6) {
		t.Errorf("Scale: got %v", got)
	}
	if got := a.Div(2); got != NewSpectrum(0.5, 1, 1.5) {
		t.Errorf("Div: got %v", got)
	}
	if got := a.Max(); got != 3 {
		t.Errorf("Max: got %f", got)
	}
}

func TestSpectrum_Luminance(t *testing.T) {
	// White has unit luminance
	if l := SpectrumFromScalar(1).Luminance(); math.Abs(l-1) > 1e-5 {
		t.Errorf("Luminance of white: got %f, expected 1", l)
	}
	if l := SpectrumFromScalar(0.5).Luminance(); math.Abs(l-0.5) > 1e-5 {
		t.Errorf("Luminance of grey: got %f, expected 0.5", l)
	}
	if l := NewSpectrum(0, 1, 0).Luminance(); math.Abs(l-0.715160) > 1e-9 {
		t.Errorf("Luminance of green: got %f", l)
	}
}

func TestSpectrum_IsFinite(t *testing.T) {
	tests := []struct {
		name   string
		s      Spectrum
		finite bool
	}{
		{"Zero", Spectrum{}, true},
		{"Negative", NewSpectrum(-1, 0, 2), true},
		{"NaN", NewSpectrum(0, math.NaN(), 0), false},
		{"NegativeInf", NewSpectrum(math.Inf(-1), 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.s.IsFinite() != tt.finite {
				t.Errorf("IsFinite(%v) = %v, expected %v", tt.s, tt.s.IsFinite(), tt.finite)
			}
		})
	}
}

func TestSpectrum_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		s     Spectrum
		valid bool
	}{
		{"Zero", Spectrum{}, true},
		{"Positive", NewSpectrum(0.1, 2, 3), true},
		{"Negative", NewSpectrum(0.1, -2, 3), false},
		{"NaN", NewSpectrum(math.NaN(), 0, 0), false},
		{"Inf", NewSpectrum(0, 0, math.Inf(1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.s.IsValid() != tt.valid {
				t.Errorf("IsValid(%v) = %v, expected %v", tt.s, tt.s.IsValid(), tt.valid)
			}
		})
	}

	if !(Spectrum{}).IsZero() {
		t.Error("Zero spectrum should report IsZero")
	}
}
