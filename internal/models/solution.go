package models

import (
	"errors"
	"fmt"
	"math"
)

// DefaultTolerance is the absolute tolerance used when comparing profit and
// weight sums.
const DefaultTolerance = 1e-6

// Solution is the result of a single solver invocation. Every solver fills it
// the same way so results can be compared side by side.
type Solution struct {
	Algorithm     string    `json:"algorithm"`
	Container     Container `json:"container"`
	SelectedItems []Item    `json:"selected_items"`
	TotalProfit   float64   `json:"total_profit"`
	TotalWeight   float64   `json:"total_weight"`

	ExecutionTimeMicros int64 `json:"execution_time_us"`

	// Terminated is set when a time-bounded search stopped before finishing.
	// TotalProfit is then only the best value found so far.
	Terminated bool `json:"terminated,omitempty"`
	// EstimatedTotalTimeSeconds extrapolates how long the full search would take.
	EstimatedTotalTimeSeconds float64 `json:"estimated_total_time_s,omitempty"`
}

// NewSolution returns an empty solution for the given algorithm and a copy of
// the container.
func NewSolution(algorithm string, c Container) *Solution {
	return &Solution{
		Algorithm:     algorithm,
		Container:     c.Clone(),
		SelectedItems: []Item{},
	}
}

// Add appends an item to the selection and updates the totals.
func (s *Solution) Add(it Item) {
	s.SelectedItems = append(s.SelectedItems, it)
	s.TotalProfit += it.Profit
	s.TotalWeight += it.Weight
}

// SetSelection replaces the selection and recomputes the totals.
func (s *Solution) SetSelection(items []Item) {
	s.SelectedItems = make([]Item, 0, len(items))
	s.TotalProfit = 0
	s.TotalWeight = 0
	for _, it := range items {
		s.Add(it)
	}
}

// SelectedIDs returns the ids of the selected items in selection order.
func (s *Solution) SelectedIDs() []int {
	ids := make([]int, len(s.SelectedItems))
	for i, it := range s.SelectedItems {
		ids[i] = it.ID
	}
	return ids
}

// Check verifies the invariants every solution must satisfy: the selection
// fits the capacity and pallet limit, no id repeats, and the reported totals
// match the selection within tol.
func (s *Solution) Check(tol float64) error {
	var errs []error

	weight, profit := 0.0, 0.0
	seen := make(map[int]struct{}, len(s.SelectedItems))
	for _, it := range s.SelectedItems {
		if _, dup := seen[it.ID]; dup {
			errs = append(errs, fmt.Errorf("item %d selected more than once", it.ID))
		}
		seen[it.ID] = struct{}{}
		weight += it.Weight
		profit += it.Profit
	}

	if weight > s.Container.Capacity+tol {
		errs = append(errs, fmt.Errorf("selected weight %g exceeds capacity %g", weight, s.Container.Capacity))
	}
	if s.Container.MaxItems != nil && len(s.SelectedItems) > *s.Container.MaxItems {
		errs = append(errs, fmt.Errorf("selected %d items, limit is %d", len(s.SelectedItems), *s.Container.MaxItems))
	}
	if math.Abs(profit-s.TotalProfit) > tol {
		errs = append(errs, fmt.Errorf("total profit %g does not match selection sum %g", s.TotalProfit, profit))
	}

	return errors.Join(errs...)
}
