package orchestration

import (
	"fmt"
	"math"

	"github.com/spboyer/loadout/internal/models"
	"github.com/spboyer/loadout/internal/solver"
)

// CheckStatus is the verdict for one algorithm.
type CheckStatus string

const (
	CheckPassed     CheckStatus = "passed"
	CheckFailed     CheckStatus = "failed"
	CheckError      CheckStatus = "error"
	CheckSkipped    CheckStatus = "skipped"
	CheckSuboptimal CheckStatus = "suboptimal"
)

// Check is the verification verdict for one algorithm.
type Check struct {
	Algorithm solver.Algorithm `json:"algorithm"`
	Status    CheckStatus      `json:"status"`
	Profit    float64          `json:"profit"`
	Elapsed   int64            `json:"execution_time_us"`
	Message   string           `json:"message,omitempty"`
}

// Verification cross-checks a set of outcomes for the same instance.
type Verification struct {
	// Optimum is the best profit reported by a completed exact solver.
	Optimum float64 `json:"optimum"`
	// Reference is the exact solver that produced Optimum first.
	Reference solver.Algorithm `json:"reference,omitempty"`
	Tolerance float64          `json:"tolerance"`
	Checks    []Check          `json:"checks"`
}

// Passed reports whether no check failed or errored. Skipped and suboptimal
// (greedy) checks are informational.
func (v *Verification) Passed() bool {
	return len(v.Mismatches()) == 0
}

// Mismatches returns the failed and errored checks.
func (v *Verification) Mismatches() []Check {
	var out []Check
	for _, c := range v.Checks {
		if c.Status == CheckFailed || c.Status == CheckError {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many checks have the given status.
func (v *Verification) Count(status CheckStatus) int {
	n := 0
	for _, c := range v.Checks {
		if c.Status == status {
			n++
		}
	}
	return n
}

// Verify checks every solution's invariants and requires all completed exact
// solvers to agree on the optimal profit within tol. A terminated brute force
// or an inapplicable dynamic programming run is skipped. Greedy falling short
// of the optimum is reported as suboptimal, not as a failure.
func Verify(outcomes []Outcome, tol float64) *Verification {
	if tol <= 0 {
		tol = models.DefaultTolerance
	}
	v := &Verification{Tolerance: tol, Optimum: math.Inf(-1)}

	checks := make([]Check, len(outcomes))
	for i, o := range outcomes {
		check := Check{Algorithm: o.Algorithm}
		switch {
		case o.Err != nil && IsInapplicable(o.Err):
			check.Status = CheckSkipped
			check.Message = o.Err.Error()
		case o.Err != nil:
			check.Status = CheckError
			check.Message = o.Err.Error()
		case o.Solution.Terminated:
			check.Status = CheckSkipped
			check.Profit = o.Solution.TotalProfit
			check.Elapsed = o.Solution.ExecutionTimeMicros
			check.Message = fmt.Sprintf("time budget exceeded, full search estimated at %.1fs",
				o.Solution.EstimatedTotalTimeSeconds)
		default:
			check.Profit = o.Solution.TotalProfit
			check.Elapsed = o.Solution.ExecutionTimeMicros
			if err := o.Solution.Check(tol); err != nil {
				check.Status = CheckFailed
				check.Message = err.Error()
			} else if o.Algorithm.IsExact() && o.Solution.TotalProfit > v.Optimum {
				v.Optimum = o.Solution.TotalProfit
				v.Reference = o.Algorithm
			}
		}
		checks[i] = check
	}

	if math.IsInf(v.Optimum, -1) {
		v.Optimum = 0
		for i := range checks {
			if checks[i].Status == "" {
				checks[i].Status = CheckSkipped
				checks[i].Message = "no completed exact solver to compare against"
			}
		}
		v.Checks = checks
		return v
	}

	for i := range checks {
		c := &checks[i]
		if c.Status != "" {
			continue
		}
		diff := c.Profit - v.Optimum
		switch {
		case math.Abs(diff) <= tol:
			c.Status = CheckPassed
		case c.Algorithm.IsExact():
			c.Status = CheckFailed
			c.Message = fmt.Sprintf("profit %g differs from optimum %g (%s)", c.Profit, v.Optimum, v.Reference)
		case diff < 0:
			c.Status = CheckSuboptimal
			c.Message = fmt.Sprintf("%.2f%% below optimum %g", -diff/v.Optimum*100, v.Optimum)
		default:
			c.Status = CheckFailed
			c.Message = fmt.Sprintf("profit %g exceeds optimum %g", c.Profit, v.Optimum)
		}
	}
	v.Checks = checks
	return v
}
