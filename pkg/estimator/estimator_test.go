package estimator

import (
	"context"
	"math"
	"testing"

	"github.com/df07/go-sgd-bsdf/pkg/core"
	"github.com/df07/go-sgd-bsdf/pkg/material"
)

func glossyMaterial() *material.SGD {
	p := material.DefaultParams()
	p.SpecularReflectance = core.NewSpectrum(0.6, 0.5, 0.4)
	p.Alpha = core.SpectrumFromScalar(0.3)
	p.P = core.SpectrumFromScalar(0.5)
	p.Kappa = core.NewSpectrum(1.0, 0.8, 0.6)
	p.Roughness = 0.5
	return material.NewSGD(p)
}

func newTestEstimator(t *testing.T, workers int) *Estimator {
	t.Helper()
	e := New(Config{Workers: workers, ChunkSize: 1000, Seed: 42})
	t.Cleanup(e.Close)
	return e
}

func TestEstimator_DiffuseOnlyImportanceIsExact(t *testing.T) {
	p := material.DefaultParams()
	p.SpecularReflectance = core.Spectrum{}
	m := material.NewSGD(p)

	e := newTestEstimator(t, 4)
	est, err := e.ImportanceAlbedo(context.Background(), m, core.SphericalDirection(0.4, 1.0), 5000)
	if err != nil {
		t.Fatalf("ImportanceAlbedo failed: %v", err)
	}

	if est.Samples != 5000 {
		t.Errorf("Expected 5000 samples, got %d", est.Samples)
	}
	for c := 0; c < 3; c++ {
		if math.Abs(est.Mean[c]-p.DiffuseReflectance[c]) > 1e-9 {
			t.Errorf("Channel %d: cosine sampling of a Lambertian lobe should return exactly %f, got %f",
				c, p.DiffuseReflectance[c], est.Mean[c])
		}
	}
}

func TestEstimator_DiffuseOnlyUniform(t *testing.T) {
	p := material.DefaultParams()
	p.SpecularReflectance = core.Spectrum{}
	m := material.NewSGD(p)

	e := newTestEstimator(t, 4)
	est, err := e.UniformAlbedo(context.Background(), m, core.NewVec3(0, 0, 1), 100000)
	if err != nil {
		t.Fatalf("UniformAlbedo failed: %v", err)
	}
	for c := 0; c < 3; c++ {
		tolerance := 5*est.StdErr[c] + 1e-3
		if math.Abs(est.Mean[c]-p.DiffuseReflectance[c]) > tolerance {
			t.Errorf("Channel %d: expected %f ± %f, got %f", c, p.DiffuseReflectance[c], tolerance, est.Mean[c])
		}
	}
}

func TestEstimator_ImportanceMatchesUniform(t *testing.T) {
	m := glossyMaterial()
	e := newTestEstimator(t, 4)

	for _, thetaI := range []float64{0.2, 0.7, 1.1} {
		wi := core.SphericalDirection(thetaI, 0.3)

		importance, err := e.ImportanceAlbedo(context.Background(), m, wi, 200000)
		if err != nil {
			t.Fatalf("ImportanceAlbedo failed: %v", err)
		}
		uniform, err := e.UniformAlbedo(context.Background(), m, wi, 200000)
		if err != nil {
			t.Fatalf("UniformAlbedo failed: %v", err)
		}

		for c := 0; c < 3; c++ {
			sigma := math.Hypot(importance.StdErr[c], uniform.StdErr[c])
			tolerance := 5*sigma + 2e-3
			if math.Abs(importance.Mean[c]-uniform.Mean[c]) > tolerance {
				t.Errorf("theta %.1f channel %d: importance %f vs uniform %f (tolerance %f)",
					thetaI, c, importance.Mean[c], uniform.Mean[c], tolerance)
			}
			if !importance.Mean.IsValid() || !uniform.Mean.IsValid() {
				t.Errorf("theta %.1f: invalid estimates %v / %v", thetaI, importance.Mean, uniform.Mean)
			}
		}
	}
}

func TestEstimator_DeterministicAcrossWorkerCounts(t *testing.T) {
	m := glossyMaterial()
	wi := core.SphericalDirection(0.6, 0.0)

	var first Estimate
	for i, workers := range []int{1, 3, 8} {
		e := New(Config{Workers: workers, ChunkSize: 700, Seed: 7})
		est, err := e.ImportanceAlbedo(context.Background(), m, wi, 10000)
		e.Close()
		if err != nil {
			t.Fatalf("ImportanceAlbedo with %d workers failed: %v", workers, err)
		}
		if i == 0 {
			first = est
			continue
		}
		if est != first {
			t.Errorf("%d workers produced %v, expected %v", workers, est, first)
		}
	}
}

func TestEstimator_SeedChangesResult(t *testing.T) {
	m := glossyMaterial()
	wi := core.SphericalDirection(0.6, 0.0)

	a := New(Config{Workers: 2, ChunkSize: 500, Seed: 1})
	defer a.Close()
	b := New(Config{Workers: 2, ChunkSize: 500, Seed: 2})
	defer b.Close()

	estA, err := a.UniformAlbedo(context.Background(), m, wi, 2000)
	if err != nil {
		t.Fatalf("UniformAlbedo failed: %v", err)
	}
	estB, err := b.UniformAlbedo(context.Background(), m, wi, 2000)
	if err != nil {
		t.Fatalf("UniformAlbedo failed: %v", err)
	}
	if estA.Mean == estB.Mean {
		t.Error("Different seeds should give different estimates")
	}
}

func TestEstimator_Cancelled(t *testing.T) {
	e := newTestEstimator(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.ImportanceAlbedo(ctx, glossyMaterial(), core.NewVec3(0, 0, 1), 10000); err == nil {
		t.Error("Expected an error from a cancelled context")
	}
}

func TestEstimator_InvalidSampleCount(t *testing.T) {
	e := newTestEstimator(t, 1)
	for _, n := range []int{0, -5} {
		if _, err := e.UniformAlbedo(context.Background(), glossyMaterial(), core.NewVec3(0, 0, 1), n); err == nil {
			t.Errorf("Expected an error for %d samples", n)
		}
	}
}

func TestEstimator_Defaults(t *testing.T) {
	e := New(Config{})
	defer e.Close()

	if e.Workers() <= 0 {
		t.Errorf("Expected a positive worker count, got %d", e.Workers())
	}
	if e.config.ChunkSize != defaultChunkSize {
		t.Errorf("Expected default chunk size %d, got %d", defaultChunkSize, e.config.ChunkSize)
	}
}
