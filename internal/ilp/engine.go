package ilp

import (
	"context"
	"fmt"
)

//go:generate go tool mockgen -destination=mock_engine.go -package=ilp . Engine

// Engine solves a Model. Implementations must not retain the model after
// Solve returns.
type Engine interface {
	Solve(ctx context.Context, m *Model) (*Result, error)
}

// Status is the outcome reported by an engine.
type Status int

const (
	StatusUnknown Status = iota
	// StatusOptimal means Values is a proven optimum.
	StatusOptimal
	// StatusFeasible means Values is feasible but optimality was not proven.
	StatusFeasible
	StatusInfeasible
	StatusTimeLimit
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusTimeLimit:
		return "time-limit"
	default:
		return "unknown"
	}
}

// Result holds the engine output. Values is indexed by Var.Index and is only
// meaningful when HasSolution is true.
type Result struct {
	Status    Status
	Values    []float64
	Objective float64
}

// IsOptimal returns true if the result is a proven optimum.
func (r *Result) IsOptimal() bool {
	return r != nil && r.Status == StatusOptimal
}

// HasSolution returns true if Values holds an assignment.
func (r *Result) HasSolution() bool {
	return r != nil && (r.Status == StatusOptimal || r.Status == StatusFeasible)
}

// Value returns the value of v, or 0 when no assignment is available.
func (r *Result) Value(v Var) float64 {
	if !r.HasSolution() || v.Index < 0 || v.Index >= len(r.Values) {
		return 0
	}
	return r.Values[v.Index]
}

func (r *Result) String() string {
	return fmt.Sprintf("status=%s objective=%g", r.Status, r.Objective)
}
