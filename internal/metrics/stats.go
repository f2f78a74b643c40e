// Package metrics summarises repeated solver timings.
package metrics

import (
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean computes the arithmetic mean of a float64 slice.
// Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Variance computes the population variance of a float64 slice.
// Returns 0 for empty input.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	_, v := stat.PopMeanVariance(values, nil)
	return v
}

// StdDev computes the population standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// ConfidenceInterval95 returns the 95% confidence interval (low, high)
// using the normal approximation (z=1.96). Returns (mean, mean) when
// fewer than 2 data points are available.
func ConfidenceInterval95(values []float64) (float64, float64) {
	n := len(values)
	m := Mean(values)
	if n < 2 {
		return m, m
	}
	// stat.StdDev is the sample standard deviation (Bessel's correction).
	margin := 1.96 * stat.StdDev(values, nil) / math.Sqrt(float64(n))
	return m - margin, m + margin
}

// Percentile returns the empirical p-quantile (0 <= p <= 1).
// Returns 0 for empty input.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// Summary describes a set of timings in milliseconds.
type Summary struct {
	Runs   int     `json:"runs"`
	MeanMs float64 `json:"mean_ms"`
	StdDev float64 `json:"stddev_ms"`
	MinMs  float64 `json:"min_ms"`
	MaxMs  float64 `json:"max_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	CILow  float64 `json:"ci95_low_ms"`
	CIHigh float64 `json:"ci95_high_ms"`
	// Bootstrap is the percentile bootstrap 95% interval of the mean.
	Bootstrap Interval `json:"bootstrap_ci95_ms"`
}

// Summarize computes a Summary over the durations.
func Summarize(durations []time.Duration) Summary {
	if len(durations) == 0 {
		return Summary{}
	}
	ms := make([]float64, len(durations))
	for i, d := range durations {
		ms[i] = float64(d) / float64(time.Millisecond)
	}
	low, high := ConfidenceInterval95(ms)
	return Summary{
		Runs:   len(ms),
		MeanMs: Mean(ms),
		StdDev: StdDev(ms),
		MinMs:  floats.Min(ms),
		MaxMs:  floats.Max(ms),
		P50Ms:  Percentile(ms, 0.5),
		P95Ms:  Percentile(ms, 0.95),
		CILow:  low,
		CIHigh: high,

		Bootstrap: BootstrapCI(ms, 0.95, bootstrapSeed),
	}
}
