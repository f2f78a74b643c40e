package solver

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/spboyer/loadout/internal/models"
)

// GreedySolver admits items in descending profit/weight order while they fit.
// It runs in O(n log n) and is feasible but not guaranteed optimal.
type GreedySolver struct{}

func (*GreedySolver) Name() string { return Greedy.DisplayName() }

func (s *GreedySolver) Solve(_ context.Context, items []models.Item, c models.Container) (*models.Solution, error) {
	start := time.Now()
	if err := validate(items, c); err != nil {
		return nil, err
	}

	sol := models.NewSolution(s.Name(), c)

	// Stable, so equal ratios keep input order.
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b models.Item) int {
		return cmp.Compare(ratio(b), ratio(a))
	})

	limit := c.ItemLimit(len(sorted))
	for _, it := range sorted {
		if len(sol.SelectedItems) >= limit {
			break
		}
		if sol.TotalWeight+it.Weight <= c.Capacity {
			sol.Add(it)
		}
	}

	return finish(sol, start), nil
}

func ratio(it models.Item) float64 {
	if it.Weight > 0 {
		return it.Profit / it.Weight
	}
	return 0
}
