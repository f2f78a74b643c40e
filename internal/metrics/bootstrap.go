package metrics

import (
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 10000

// bootstrapSeed keeps Summarize deterministic for identical timings.
const bootstrapSeed = 0x6c6f61646f7574

// Interval is a bootstrap confidence interval of the mean.
type Interval struct {
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
	Mean      float64 `json:"mean"`
	Level     float64 `json:"level"`
	Resamples int     `json:"resamples"`
}

// BootstrapCI computes a percentile bootstrap interval for the mean of
// values. level must be in (0, 1), e.g. 0.95. With fewer than two values the
// interval collapses to the mean and no resampling is done.
func BootstrapCI(values []float64, level float64, seed uint64) Interval {
	n := len(values)
	m := Mean(values)
	if n < 2 {
		return Interval{Lower: m, Upper: m, Mean: m, Level: level}
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	iters := DefaultBootstrapIterations

	means := make([]float64, iters)
	sample := make([]float64, n)
	for i := range means {
		for j := range sample {
			sample[j] = values[rng.IntN(n)]
		}
		means[i] = stat.Mean(sample, nil)
	}
	slices.Sort(means)

	alpha := 1 - level
	return Interval{
		Lower:     stat.Quantile(alpha/2, stat.Empirical, means, nil),
		Upper:     stat.Quantile(1-alpha/2, stat.Empirical, means, nil),
		Mean:      m,
		Level:     level,
		Resamples: iters,
	}
}
