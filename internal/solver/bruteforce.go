package solver

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/spboyer/loadout/internal/models"
)

// DefaultBruteForceTimeLimit is the wall-clock budget of BruteForceSolver
// when none is configured.
const DefaultBruteForceTimeLimit = 30 * time.Second

// BruteForceSolver enumerates all 2^n subsets. Before each subset it checks
// the elapsed time; once TimeLimit is exceeded (or ctx is done) it returns
// the best subset seen so far with Terminated set and an extrapolated
// EstimatedTotalTimeSeconds, capped at math.MaxFloat64. Callers must check Terminated before treating
// TotalProfit as optimal.
type BruteForceSolver struct {
	TimeLimit time.Duration
}

func (*BruteForceSolver) Name() string { return BruteForce.DisplayName() }

func (s *BruteForceSolver) Solve(ctx context.Context, items []models.Item, c models.Container) (*models.Solution, error) {
	start := time.Now()
	if err := validate(items, c); err != nil {
		return nil, err
	}

	budget := s.TimeLimit
	if budget <= 0 {
		budget = DefaultBruteForceTimeLimit
	}

	n := len(items)
	maxItems := c.ItemLimit(n)
	totalSubsets := math.Ldexp(1, n)

	sol := models.NewSolution(s.Name(), c)

	subset := newSubsetCounter(n)
	var best *subsetCounter
	bestProfit := 0.0
	evaluated := 0.0

	for {
		if elapsed := time.Since(start); elapsed > budget || ctx.Err() != nil {
			perSubset := elapsed.Seconds() / math.Max(evaluated, 1)
			sol.Terminated = true
			// 2^n overflows float64 from n = 1024; JSON cannot carry +Inf.
			sol.EstimatedTotalTimeSeconds = math.Min(totalSubsets*perSubset, math.MaxFloat64)
			slog.Warn("brute force stopped before completion",
				"items", n, "evaluated", evaluated, "total", totalSubsets,
				"elapsed", elapsed, "estimated_total_s", sol.EstimatedTotalTimeSeconds)
			break
		}

		weight, profit, count := 0.0, 0.0, 0
		for j := 0; j < n; j++ {
			if subset.has(j) {
				weight += items[j].Weight
				profit += items[j].Profit
				count++
			}
		}
		evaluated++

		if weight <= c.Capacity && count <= maxItems && profit > bestProfit {
			bestProfit = profit
			best = subset.clone()
		}

		if !subset.next() {
			break
		}
	}

	if best != nil {
		for j := 0; j < n; j++ {
			if best.has(j) {
				sol.Add(items[j])
			}
		}
	}

	return finish(sol, start), nil
}

// subsetCounter is an n-bit binary counter spread over 64-bit words. Bit j
// set means items[j] is in the subset. One extra bit detects wrap-around so
// n >= 64 still works.
type subsetCounter struct {
	n     int
	words []uint64
}

func newSubsetCounter(n int) *subsetCounter {
	return &subsetCounter{n: n, words: make([]uint64, n/64+1)}
}

func (c *subsetCounter) has(j int) bool {
	return c.words[j/64]>>(uint(j)%64)&1 == 1
}

// next advances to the following subset and reports false after the last one.
func (c *subsetCounter) next() bool {
	for i := range c.words {
		c.words[i]++
		if c.words[i] != 0 {
			break
		}
	}
	return !c.has(c.n)
}

func (c *subsetCounter) clone() *subsetCounter {
	return &subsetCounter{n: c.n, words: append([]uint64(nil), c.words...)}
}
