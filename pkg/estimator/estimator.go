// Package estimator integrates reflectance models over the hemisphere with
// Monte Carlo sampling, spread across a worker pool.
package estimator

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/df07/go-sgd-bsdf/pkg/core"
	"github.com/df07/go-sgd-bsdf/pkg/material"
)

const (
	defaultChunkSize = 4096
	queueSize        = 256
	seedStride       = 1000003
)

// Config controls how estimates are computed
type Config struct {
	Workers   int         // Parallel workers (0 = runtime.NumCPU())
	ChunkSize int         // Samples per task (0 = 4096)
	Seed      int64       // Base seed; each chunk derives its own
	Logger    core.Logger // Optional progress output
}

// Estimate summarizes a Monte Carlo integral
type Estimate struct {
	Mean    core.Spectrum
	StdErr  core.Spectrum
	Samples int
	Zero    int // Samples that contributed nothing
}

func (e Estimate) String() string {
	return fmt.Sprintf("%v ± %v (%d samples, %d zero)", e.Mean, e.StdErr, e.Samples, e.Zero)
}

// Estimator runs albedo integrals. Results depend only on the seed, the
// chunk size and the sample count, never on scheduling.
type Estimator struct {
	config Config
	pool   worker.DynamicWorkerPool
}

// New creates an estimator with its own worker pool
func New(config Config) *Estimator {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = defaultChunkSize
	}
	if config.Logger == nil {
		config.Logger = core.NopLogger{}
	}

	return &Estimator{
		config: config,
		pool:   worker.NewDynamicWorkerPool(config.Workers, queueSize, time.Second),
	}
}

// Close stops the worker pool
func (e *Estimator) Close() {
	e.pool.Stop()
}

// Workers returns the number of workers in the pool
func (e *Estimator) Workers() int {
	return e.pool.GetMaxWorkers()
}

// ImportanceAlbedo estimates the directional albedo for wi by averaging the
// weights returned from bsdf.Sample
func (e *Estimator) ImportanceAlbedo(ctx context.Context, bsdf material.BSDF, wi core.Vec3, n int) (Estimate, error) {
	return e.run(ctx, n, func(sampler core.Sampler) core.Spectrum {
		return bsdf.Sample(material.NewQuery(wi, core.Vec3{}), sampler.Get2D()).Weight
	})
}

// UniformAlbedo estimates the directional albedo for wi by evaluating the
// model at uniformly distributed outgoing directions
func (e *Estimator) UniformAlbedo(ctx context.Context, bsdf material.BSDF, wi core.Vec3, n int) (Estimate, error) {
	return e.run(ctx, n, func(sampler core.Sampler) core.Spectrum {
		wo := core.SquareToUniformHemisphere(sampler.Get2D())
		f := bsdf.Evaluate(material.NewQuery(wi, wo), material.SolidAngle)
		return f.Div(core.UniformHemispherePDF())
	})
}

// run splits n samples into chunks, evaluates them on the pool and reduces
// the chunk statistics in chunk order
func (e *Estimator) run(ctx context.Context, n int, draw func(core.Sampler) core.Spectrum) (Estimate, error) {
	if n <= 0 {
		return Estimate{}, fmt.Errorf("sample count must be positive, got %d", n)
	}

	chunkSize := e.config.ChunkSize
	numChunks := (n + chunkSize - 1) / chunkSize
	results := make([]Stats, numChunks)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < numChunks; i++ {
		if ctx.Err() != nil {
			break
		}

		count := chunkSize
		if remaining := n - i*chunkSize; remaining < count {
			count = remaining
		}

		chunk := i
		wg.Add(1)
		e.pool.SubmitTask(worker.Task{
			ID: chunk,
			Do: func() (any, error) {
				defer wg.Done()
				if err := ctx.Err(); err != nil {
					return nil, err
				}

				seed := e.config.Seed + int64(chunk)*seedStride
				sampler := core.NewRandomSampler(rand.New(rand.NewSource(seed)))
				var stats Stats
				for j := 0; j < count; j++ {
					stats.AddSample(draw(sampler))
				}
				results[chunk] = stats
				return nil, nil
			},
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Estimate{}, fmt.Errorf("estimate cancelled: %w", err)
	}

	var total Stats
	for _, r := range results {
		total.Merge(r)
	}

	e.config.Logger.Printf("estimator: %d samples in %d chunks on %d workers (%v)\n",
		total.SampleCount, numChunks, e.config.Workers, time.Since(start))
	return total.Estimate(), nil
}
