package solver

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/spboyer/loadout/internal/models"
)

// BacktrackingSolver explores include/exclude decisions depth first in input
// order. A branch is cut when its profit plus every remaining item's profit
// cannot beat the best selection found so far. The bound ignores capacity, so
// it never cuts an optimal branch.
//
// There is no time budget: the worst case is exponential.
type BacktrackingSolver struct{}

func (*BacktrackingSolver) Name() string { return Backtracking.DisplayName() }

func (s *BacktrackingSolver) Solve(_ context.Context, items []models.Item, c models.Container) (*models.Solution, error) {
	start := time.Now()
	if err := validate(items, c); err != nil {
		return nil, err
	}

	n := len(items)
	b := &backtracker{
		items:    items,
		capacity: c.Capacity,
		limit:    c.ItemLimit(n),
		suffix:   make([]float64, n+1),
		current:  make([]models.Item, 0, n),
	}
	for i := n - 1; i >= 0; i-- {
		b.suffix[i] = b.suffix[i+1] + items[i].Profit
	}

	b.search(0, 0, 0)
	slog.Debug("backtracking finished", "items", n, "nodes", b.nodes, "best", b.bestProfit)

	sol := models.NewSolution(s.Name(), c)
	sol.SetSelection(b.best)
	return finish(sol, start), nil
}

// backtracker holds the state of one Solve call.
type backtracker struct {
	items    []models.Item
	suffix   []float64 // suffix[i] = sum of profits of items[i:]
	capacity float64
	limit    int

	current    []models.Item
	best       []models.Item
	bestProfit float64
	nodes      int
}

func (b *backtracker) search(index int, weight, profit float64) {
	b.nodes++

	if index == len(b.items) {
		if profit > b.bestProfit {
			b.bestProfit = profit
			b.best = slices.Clone(b.current)
		}
		return
	}

	if profit+b.suffix[index] <= b.bestProfit {
		return
	}

	b.search(index+1, weight, profit)

	it := b.items[index]
	if weight+it.Weight <= b.capacity && len(b.current) < b.limit {
		b.include(index, weight, profit)
	}
}

// include pushes items[index] for the duration of the recursive call.
func (b *backtracker) include(index int, weight, profit float64) {
	it := b.items[index]
	b.current = append(b.current, it)
	defer func() { b.current = b.current[:len(b.current)-1] }()

	b.search(index+1, weight+it.Weight, profit+it.Profit)
}
