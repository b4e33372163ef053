package estimator

import (
	"math"

	"github.com/df07/go-sgd-bsdf/pkg/core"
)

// Stats accumulates per-channel sample moments
type Stats struct {
	Sum         core.Spectrum // Per-channel sum of samples
	SumSq       core.Spectrum // Per-channel sum of squared samples
	SampleCount int           // Number of samples taken
	ZeroCount   int           // Samples that were exactly zero
}

// AddSample adds one sample value
func (s *Stats) AddSample(value core.Spectrum) {
	s.Sum = s.Sum.Add(value)
	s.SumSq = s.SumSq.Add(value.Mul(value))
	s.SampleCount++
	if value.IsZero() {
		s.ZeroCount++
	}
}

// Merge folds another accumulator into this one
func (s *Stats) Merge(other Stats) {
	s.Sum = s.Sum.Add(other.Sum)
	s.SumSq = s.SumSq.Add(other.SumSq)
	s.SampleCount += other.SampleCount
	s.ZeroCount += other.ZeroCount
}

// Mean returns the per-channel sample mean
func (s *Stats) Mean() core.Spectrum {
	if s.SampleCount == 0 {
		return core.Spectrum{}
	}
	return s.Sum.Div(float64(s.SampleCount))
}

// StdErr returns the per-channel standard error of the mean
func (s *Stats) StdErr() core.Spectrum {
	var result core.Spectrum
	if s.SampleCount < 2 {
		return result
	}
	n := float64(s.SampleCount)
	mean := s.Mean()
	for c := range result {
		variance := (s.SumSq[c] - n*mean[c]*mean[c]) / (n - 1)
		result[c] = math.Sqrt(math.Max(0, variance) / n)
	}
	return result
}

// Estimate converts the accumulator to a summary
func (s *Stats) Estimate() Estimate {
	return Estimate{
		Mean:    s.Mean(),
		StdErr:  s.StdErr(),
		Samples: s.SampleCount,
		Zero:    s.ZeroCount,
	}
}
