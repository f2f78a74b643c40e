package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/spboyer/loadout/internal/metrics"
	"github.com/spboyer/loadout/internal/models"
	"github.com/spboyer/loadout/internal/solver"
)

// BenchResult holds repeated timings of one solver.
type BenchResult struct {
	Algorithm  string          `json:"algorithm"`
	Durations  []time.Duration `json:"-"`
	Summary    metrics.Summary `json:"summary"`
	Profit     float64         `json:"profit"`
	Terminated bool            `json:"terminated,omitempty"`
}

// Bench solves the instance runs times and summarises the execution times
// the solver reported. It stops at the first error or when ctx is done.
func Bench(ctx context.Context, s solver.Solver, items []models.Item, c models.Container, runs int) (*BenchResult, error) {
	if runs <= 0 {
		return nil, fmt.Errorf("runs must be positive, got %d", runs)
	}

	res := &BenchResult{Algorithm: s.Name(), Durations: make([]time.Duration, 0, runs)}
	for i := 0; i < runs; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sol, err := s.Solve(ctx, items, c)
		if err != nil {
			return nil, fmt.Errorf("%s run %d: %w", s.Name(), i+1, err)
		}
		res.Durations = append(res.Durations, time.Duration(sol.ExecutionTimeMicros)*time.Microsecond)
		res.Profit = sol.TotalProfit
		res.Terminated = res.Terminated || sol.Terminated
	}
	res.Summary = metrics.Summarize(res.Durations)
	return res, nil
}
