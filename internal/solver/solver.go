// Package solver implements the pallet selection (0/1 knapsack) solvers.
//
// All solvers share the Solver interface and fill models.Solution the same
// way, so their results can be compared directly:
//
//   - Greedy: ratio-sorted single pass, fast but not always optimal
//   - DynamicProgramming: profit table over (items, capacity[, count]), exact for integer weights
//   - Backtracking: include/exclude search with a remaining-profit bound
//   - BruteForce: 2^n enumeration with a wall-clock budget
//   - ILP: binary integer program handed to an ilp.Engine
//
// Solvers are stateless. They validate their input, never modify the caller's
// slices, and can be run concurrently on the same input.
//
// Example usage:
//
//	s, err := solver.New(solver.DynamicProgramming, solver.Options{})
//	if err != nil {
//	    return err
//	}
//	sol, err := s.Solve(ctx, items, models.WithMaxItems(100, 5))
package solver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spboyer/loadout/internal/ilp"
	"github.com/spboyer/loadout/internal/models"
)

// Solver selects a subset of items for a container.
type Solver interface {
	// Name is the human-readable algorithm name stored in Solution.Algorithm.
	Name() string

	// Solve returns a fresh Solution. Malformed input yields an error wrapping
	// models.ErrInvalidInput and no solution.
	Solve(ctx context.Context, items []models.Item, c models.Container) (*models.Solution, error)
}

// Algorithm identifies a solver.
type Algorithm string

const (
	BruteForce         Algorithm = "brute-force"
	Backtracking       Algorithm = "backtracking"
	DynamicProgramming Algorithm = "dynamic-programming"
	Greedy             Algorithm = "greedy"
	ILP                Algorithm = "ilp"
)

var aliases = map[string]Algorithm{
	"bf":                         BruteForce,
	"brute":                      BruteForce,
	"bruteforce":                 BruteForce,
	"bt":                         Backtracking,
	"dp":                         DynamicProgramming,
	"dynamic":                    DynamicProgramming,
	"dynamicprogramming":         DynamicProgramming,
	"integer-linear-programming": ILP,
	"lp":                         ILP,
}

// Algorithms returns every algorithm in menu order.
func Algorithms() []Algorithm {
	return []Algorithm{BruteForce, Backtracking, DynamicProgramming, Greedy, ILP}
}

// ExactAlgorithms returns the algorithms that guarantee an optimal answer.
func ExactAlgorithms() []Algorithm {
	return []Algorithm{BruteForce, Backtracking, DynamicProgramming, ILP}
}

// IsExact reports whether the algorithm guarantees optimality when it completes.
func (a Algorithm) IsExact() bool {
	return a != Greedy
}

// DisplayName returns the name used in reports.
func (a Algorithm) DisplayName() string {
	switch a {
	case BruteForce:
		return "Brute Force"
	case Backtracking:
		return "Backtracking"
	case DynamicProgramming:
		return "Dynamic Programming"
	case Greedy:
		return "Greedy"
	case ILP:
		return "Integer Linear Programming"
	default:
		return string(a)
	}
}

// ParseAlgorithm accepts canonical names, display names and short aliases.
func ParseAlgorithm(s string) (Algorithm, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "_", "-")
	key = strings.ReplaceAll(key, " ", "-")
	for _, a := range Algorithms() {
		if key == string(a) {
			return a, nil
		}
	}
	if a, ok := aliases[key]; ok {
		return a, nil
	}
	if a, ok := aliases[strings.ReplaceAll(key, "-", "")]; ok {
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Options tunes the solvers. Zero values select the defaults.
type Options struct {
	// TimeLimit bounds brute force (default DefaultBruteForceTimeLimit) and
	// the ILP engine (default unbounded).
	TimeLimit time.Duration `mapstructure:"time_limit" json:"time_limit,omitempty"`
	// MaxTableCells caps the dynamic programming table (default DefaultMaxTableCells).
	MaxTableCells int `mapstructure:"max_table_cells" json:"max_table_cells,omitempty"`
	// Precision is the largest power-of-ten scale the default ILP engine
	// tries when turning coefficients into integers (default ilp.DefaultPrecision).
	Precision int `mapstructure:"precision" json:"precision,omitempty"`
	// Engine overrides the ILP engine.
	Engine ilp.Engine `mapstructure:"-" json:"-"`
}

// New is a factory that creates a Solver for the given algorithm.
func New(alg Algorithm, opts Options) (Solver, error) {
	switch alg {
	case BruteForce:
		return &BruteForceSolver{TimeLimit: opts.TimeLimit}, nil
	case Backtracking:
		return &BacktrackingSolver{}, nil
	case DynamicProgramming:
		return &DPSolver{MaxTableCells: opts.MaxTableCells}, nil
	case Greedy:
		return &GreedySolver{}, nil
	case ILP:
		engine := opts.Engine
		if engine == nil {
			engine = &ilp.SATEngine{Precision: opts.Precision}
		}
		return &ILPSolver{Engine: engine, TimeLimit: opts.TimeLimit}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
}

func validate(items []models.Item, c models.Container) error {
	if err := models.ValidateItems(items); err != nil {
		return err
	}
	return models.ValidateContainer(c)
}

func finish(sol *models.Solution, start time.Time) *models.Solution {
	sol.ExecutionTimeMicros = time.Since(start).Microseconds()
	return sol
}
