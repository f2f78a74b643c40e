package ilp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/crillab/gophersat/solver"
)

const (
	// DefaultPrecision is the largest scale tried by SATEngine: coefficients
	// with up to twelve decimal places solve exactly.
	DefaultPrecision = 1_000_000_000_000

	// maxScaled bounds every scaled row sum and the scaled objective sum so
	// gophersat's int arithmetic stays exact.
	maxScaled = 1 << 52

	// roundingEps is the absolute slack, in model units, under which a
	// scaled coefficient counts as an integer.
	roundingEps = 1e-12
	// relativeEps is the same slack relative to the coefficient, so values
	// such as 10/3 are exact once scaled to twelve significant digits.
	relativeEps = 1e-12
)

// ErrCoefficientRange is returned when the model's coefficients cannot be
// scaled to integers without overflowing, even at scale 1.
var ErrCoefficientRange = errors.New("coefficients too large for the pseudo-boolean engine")

// SATEngine solves packing models with the gophersat pseudo-boolean
// optimiser, which works on integer coefficients only.
//
// Each model is scaled by the smallest power of ten, up to Precision, that
// makes every coefficient an integer within roundingEps or relativeEps.
// When no such scale exists the largest scale that fits is used with row
// coefficients rounded up and bounds rounded down, so the assignment is
// still feasible for the real-valued model, and the result is reported as
// StatusFeasible instead of StatusOptimal.
//
// gophersat's Minimize cannot be interrupted. When ctx is done Solve returns
// StatusTimeLimit at once, but the search goroutine keeps running until it
// finishes on its own.
type SATEngine struct {
	Precision int
}

// NewSATEngine returns an engine using DefaultPrecision.
func NewSATEngine() *SATEngine {
	return &SATEngine{Precision: DefaultPrecision}
}

type satRun struct {
	cost  int
	model []bool
	err   error
}

// Solve implements Engine. A context deadline stops waiting for the search
// and yields StatusTimeLimit.
func (e *SATEngine) Solve(ctx context.Context, m *Model) (*Result, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("ilp: invalid model %q: %w", m.Name, err)
	}

	precision := e.Precision
	if precision <= 0 {
		precision = DefaultPrecision
	}
	n := m.NumVars()

	objective := make([]float64, n)
	for _, t := range m.objective {
		objective[t.Var.Index] = t.Coef
	}

	scale, exact, err := chooseScale(m, objective, float64(precision))
	if err != nil {
		return nil, fmt.Errorf("ilp: model %q: %w", m.Name, err)
	}

	values := make([]float64, n)

	// Presolve: scale rows, drop those that can never be violated.
	var constrs []solver.PBConstr
	constrained := make([]bool, n)
	lit := make([]int, n) // model var -> 1-based gophersat var, 0 if free
	nextLit := 1
	for _, c := range m.constraints {
		bound := scaleBound(c.Upper, scale, exact)
		if bound < 0 {
			slog.Debug("ilp: row is infeasible", "model", m.Name, "constraint", c.Name)
			return &Result{Status: StatusInfeasible}, nil
		}

		type scaledTerm struct {
			idx    int
			weight int
		}
		var terms []scaledTerm
		sum := 0
		for _, t := range c.Terms {
			w := scaleCoef(t.Coef, scale, exact)
			if w == 0 {
				continue
			}
			terms = append(terms, scaledTerm{idx: t.Var.Index, weight: w})
			sum += w
		}
		if sum <= bound {
			continue
		}

		// sum(w x) <= b  <=>  sum(w not(x)) >= sum(w) - b
		lits := make([]int, len(terms))
		weights := make([]int, len(terms))
		for i, st := range terms {
			if lit[st.idx] == 0 {
				lit[st.idx] = nextLit
				nextLit++
			}
			constrained[st.idx] = true
			lits[i] = -lit[st.idx]
			weights[i] = st.weight
		}
		constrs = append(constrs, solver.GtEq(lits, weights, sum-bound))
	}

	// Variables outside every binding row only follow their objective sign.
	var costLits []solver.Lit
	var costWeights []int
	for i := 0; i < n; i++ {
		if !constrained[i] {
			if objective[i] > 0 {
				values[i] = 1
			}
			continue
		}
		if objective[i] <= 0 {
			continue
		}
		w := int(math.Round(objective[i] * scale))
		if w == 0 {
			continue
		}
		// minimise sum(p not(x)) == maximise sum(p x)
		costLits = append(costLits, solver.IntToLit(int32(-lit[i])))
		costWeights = append(costWeights, w)
	}

	if len(costLits) == 0 {
		return e.result(m, values, true), nil
	}

	slog.Debug("ilp: solving with gophersat",
		"model", m.Name, "vars", nextLit-1, "rows", len(constrs), "scale", scale, "exact", exact)

	pb := solver.ParsePBConstrs(constrs)
	pb.SetCostFunc(costLits, costWeights)
	s := solver.New(pb)

	done := make(chan satRun, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- satRun{cost: -1, err: fmt.Errorf("ilp: gophersat panicked: %v", r)}
			}
		}()
		cost := s.Minimize()
		if cost < 0 {
			done <- satRun{cost: cost}
			return
		}
		done <- satRun{cost: cost, model: s.Model()}
	}()

	var run satRun
	select {
	case <-ctx.Done():
		slog.Debug("ilp: search abandoned", "model", m.Name, "reason", ctx.Err())
		return &Result{Status: StatusTimeLimit}, nil
	case run = <-done:
	}

	if run.err != nil {
		return nil, run.err
	}
	if run.cost < 0 {
		return &Result{Status: StatusInfeasible}, nil
	}

	for i := 0; i < n; i++ {
		if !constrained[i] {
			continue
		}
		// Zero-profit variables are dropped; with non-negative rows that stays feasible.
		if objective[i] > 0 && lit[i]-1 < len(run.model) && run.model[lit[i]-1] {
			values[i] = 1
		}
	}

	return e.result(m, values, exact), nil
}

func (e *SATEngine) result(m *Model, values []float64, exact bool) *Result {
	status := StatusOptimal
	if !exact {
		status = StatusFeasible
	}
	return &Result{
		Status:    status,
		Values:    values,
		Objective: m.Evaluate(values),
	}
}

// chooseScale returns the smallest power of ten up to maxScale at which every
// coefficient is integral. Without one it returns the largest scale that
// fits, with exact false. Scales grow until a scaled sum passes maxScaled.
func chooseScale(m *Model, objective []float64, maxScale float64) (float64, bool, error) {
	fitted := 0.0
	for scale := 1.0; scale <= maxScale; scale *= 10 {
		fits, exact := scaleFits(m, objective, scale)
		if !fits {
			break
		}
		if exact {
			return scale, true, nil
		}
		fitted = scale
	}
	if fitted == 0 {
		return 0, false, ErrCoefficientRange
	}
	return fitted, false, nil
}

// scaleFits reports whether every row sum and the objective sum stay within
// maxScaled at scale, and whether all coefficients are integral there.
func scaleFits(m *Model, objective []float64, scale float64) (fits, exact bool) {
	exact = true
	for _, c := range m.constraints {
		sum := 0.0
		for _, t := range c.Terms {
			sum += t.Coef * scale
			if !integral(t.Coef, scale) {
				exact = false
			}
		}
		if sum > maxScaled {
			return false, false
		}
		// Bounds past the row sum never bind, so their digits do not matter.
		if c.Upper*scale <= sum && !integral(c.Upper, scale) {
			exact = false
		}
	}

	sum := 0.0
	for _, p := range objective {
		if p <= 0 {
			continue
		}
		sum += p * scale
		if !integral(p, scale) {
			exact = false
		}
	}
	if sum > maxScaled {
		return false, false
	}
	return true, exact
}

// integral reports whether v*scale is within rounding slack of an integer.
func integral(v, scale float64) bool {
	x := v * scale
	tol := math.Max(roundingEps, relativeEps*math.Abs(v)) * scale
	return math.Abs(x-math.Round(x)) <= tol
}

// scaleCoef converts a row coefficient. Inexact scales round up so the
// integer row is never looser than the real one.
func scaleCoef(coef, scale float64, exact bool) int {
	v := coef * scale
	if exact {
		return int(math.Round(v))
	}
	return int(math.Ceil(v - roundingEps*scale))
}

// scaleBound converts a row bound. Inexact scales round down. Bounds past
// maxScaled are capped, which leaves them non-binding.
func scaleBound(bound, scale float64, exact bool) int {
	v := bound * scale
	if v > maxScaled {
		return maxScaled + 1
	}
	if exact {
		return int(math.Round(v))
	}
	return int(math.Floor(v + roundingEps*scale))
}
