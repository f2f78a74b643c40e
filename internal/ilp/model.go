// Package ilp builds binary integer programs and hands them to a pluggable
// solving engine.
//
// Only packing-form models are supported: binary variables, rows of the form
// sum(coef * x) <= upper with non-negative coefficients, and a maximisation
// objective. That is all the knapsack formulation needs and it keeps engines
// simple to swap.
package ilp

import (
	"errors"
	"fmt"
	"math"
)

// Var is a binary decision variable owned by a Model.
type Var struct {
	Index int
	Name  string
}

// Term is coef * variable.
type Term struct {
	Var  Var
	Coef float64
}

// Constraint is the row sum(Terms) <= Upper.
type Constraint struct {
	Name  string
	Terms []Term
	Upper float64
}

// Model is a binary integer program under construction.
type Model struct {
	Name        string
	vars        []Var
	constraints []Constraint
	objective   []Term
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// NewBinaryVar adds a variable x in {0, 1}.
func (m *Model) NewBinaryVar(name string) Var {
	v := Var{Index: len(m.vars), Name: name}
	m.vars = append(m.vars, v)
	return v
}

// AddConstraint adds the row sum(terms) <= upper.
func (m *Model) AddConstraint(name string, terms []Term, upper float64) {
	m.constraints = append(m.constraints, Constraint{
		Name:  name,
		Terms: append([]Term(nil), terms...),
		Upper: upper,
	})
}

// Maximize sets the objective. Calling it again replaces the previous one.
func (m *Model) Maximize(terms []Term) {
	m.objective = append([]Term(nil), terms...)
}

func (m *Model) NumVars() int              { return len(m.vars) }
func (m *Model) Vars() []Var               { return m.vars }
func (m *Model) Constraints() []Constraint { return m.constraints }
func (m *Model) Objective() []Term         { return m.objective }

// Evaluate returns the objective value of an assignment.
func (m *Model) Evaluate(values []float64) float64 {
	total := 0.0
	for _, t := range m.objective {
		total += t.Coef * values[t.Var.Index]
	}
	return total
}

// Feasible reports whether an assignment satisfies every row within tol.
func (m *Model) Feasible(values []float64, tol float64) bool {
	for _, c := range m.constraints {
		lhs := 0.0
		for _, t := range c.Terms {
			lhs += t.Coef * values[t.Var.Index]
		}
		if lhs > c.Upper+tol {
			return false
		}
	}
	return true
}

// Validate checks that the model is in packing form.
func (m *Model) Validate() error {
	var errs []error
	checkTerms := func(where string, terms []Term) {
		seen := make(map[int]struct{}, len(terms))
		for _, t := range terms {
			if t.Var.Index < 0 || t.Var.Index >= len(m.vars) {
				errs = append(errs, fmt.Errorf("%s: unknown variable %q", where, t.Var.Name))
				continue
			}
			if _, dup := seen[t.Var.Index]; dup {
				errs = append(errs, fmt.Errorf("%s: variable %q appears twice", where, t.Var.Name))
			}
			seen[t.Var.Index] = struct{}{}
			if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) || t.Coef < 0 {
				errs = append(errs, fmt.Errorf("%s: coefficient of %q must be finite and >= 0, got %v", where, t.Var.Name, t.Coef))
			}
		}
	}

	for _, c := range m.constraints {
		where := fmt.Sprintf("constraint %q", c.Name)
		checkTerms(where, c.Terms)
		if math.IsNaN(c.Upper) || math.IsInf(c.Upper, 0) {
			errs = append(errs, fmt.Errorf("%s: upper bound must be finite", where))
		}
	}
	checkTerms("objective", m.objective)

	return errors.Join(errs...)
}
