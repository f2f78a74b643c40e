package solver

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/spboyer/loadout/internal/models"
)

// DefaultMaxTableCells caps the table at 512 MiB of float64 cells.
const DefaultMaxTableCells = 1 << 26

// DPSolver fills a profit table T[i][w] (T[i][w][k] when the container has a
// pallet limit) and walks it backwards to recover the selection.
//
// Weights and capacity must be non-negative integers because the table is
// indexed by weight unit; anything else is rejected, never rounded. Time and
// memory are O(n*W), or O(n*W*K) with the count dimension, so large
// capacities combined with many items are refused through MaxTableCells.
type DPSolver struct {
	MaxTableCells int
}

func (*DPSolver) Name() string { return DynamicProgramming.DisplayName() }

func (s *DPSolver) Solve(_ context.Context, items []models.Item, c models.Container) (*models.Solution, error) {
	start := time.Now()
	if err := validate(items, c); err != nil {
		return nil, err
	}
	if err := requireIntegral(items, c); err != nil {
		return nil, err
	}

	sol := models.NewSolution(s.Name(), c)

	n := len(items)
	totalWeight := 0.0
	for _, it := range items {
		totalWeight += it.Weight
	}
	// Capacity beyond the total weight adds identical columns.
	capacity := math.Min(c.Capacity, totalWeight)

	depth := 1
	if c.HasMaxItems() {
		depth = c.ItemLimit(n) + 1
	}

	limit := s.MaxTableCells
	if limit <= 0 {
		limit = DefaultMaxTableCells
	}
	cells := float64(n+1) * (capacity + 1) * float64(depth)
	if cells > float64(limit) {
		return nil, fmt.Errorf("%w: %d items x capacity %g x %d count levels = %.0f cells, limit %d",
			ErrTableTooLarge, n, capacity, depth, cells, limit)
	}

	t := buildTable(items, int(capacity), depth, c.HasMaxItems())
	slog.Debug("dynamic programming table built",
		"items", n, "capacity", t.cols-1, "depth", depth, "cells", len(t.cells), "optimum", t.best())

	for _, it := range t.reconstruct(items) {
		sol.Add(it)
	}

	return finish(sol, start), nil
}

// profitTable is a flat (n+1) x (W+1) x depth table. With counted == false
// depth is 1 and the k index is always 0.
type profitTable struct {
	rows, cols, depth int
	counted           bool
	cells             []float64
}

func (t *profitTable) idx(i, w, k int) int    { return (i*t.cols+w)*t.depth + k }
func (t *profitTable) at(i, w, k int) float64 { return t.cells[t.idx(i, w, k)] }

// best is T[n][W] (or T[n][W][K]).
func (t *profitTable) best() float64 {
	return t.at(t.rows-1, t.cols-1, t.depth-1)
}

func buildTable(items []models.Item, capacity, depth int, counted bool) *profitTable {
	n := len(items)
	t := &profitTable{
		rows:    n + 1,
		cols:    capacity + 1,
		depth:   depth,
		counted: counted,
		cells:   make([]float64, (n+1)*(capacity+1)*depth),
	}

	for i := 1; i <= n; i++ {
		weight := int(items[i-1].Weight)
		profit := items[i-1].Profit
		for w := 0; w <= capacity; w++ {
			for k := 0; k < depth; k++ {
				best := t.at(i-1, w, k)
				if weight <= w && (!counted || k >= 1) {
					prev := k
					if counted {
						prev = k - 1
					}
					if take := t.at(i-1, w-weight, prev) + profit; take > best {
						best = take
					}
				}
				t.cells[t.idx(i, w, k)] = best
			}
		}
	}
	return t
}

// reconstruct walks from T[n][W][K] back to row 0. A row whose value differs
// from the row above took its item.
func (t *profitTable) reconstruct(items []models.Item) []models.Item {
	var selected []models.Item
	w, k := t.cols-1, t.depth-1
	for i := t.rows - 1; i > 0; i-- {
		if t.counted && k == 0 {
			break
		}
		if t.at(i, w, k) != t.at(i-1, w, k) {
			selected = append(selected, items[i-1])
			w -= int(items[i-1].Weight)
			if t.counted {
				k--
			}
		}
	}
	return selected
}

func requireIntegral(items []models.Item, c models.Container) error {
	if c.Capacity != math.Trunc(c.Capacity) {
		return fmt.Errorf("%w: %w", ErrNonIntegral, &models.InputError{
			Field:  "container.capacity",
			Reason: fmt.Sprintf("dynamic programming requires an integer capacity, got %g", c.Capacity),
		})
	}
	for i, it := range items {
		if it.Weight != math.Trunc(it.Weight) {
			return fmt.Errorf("%w: %w", ErrNonIntegral, &models.InputError{
				Field:  fmt.Sprintf("items[%d].weight", i),
				Reason: fmt.Sprintf("got %g (scale the data to integer units first)", it.Weight),
			})
		}
	}
	return nil
}
