package solver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spboyer/loadout/internal/ilp"
	"github.com/spboyer/loadout/internal/models"
)

// ILPSolver formulates the selection as a binary integer program:
//
//	maximize   sum(profit_i * x_i)
//	subject to sum(weight_i * x_i) <= capacity
//	           sum(x_i) <= maxItems      (only when the container has a limit)
//	           x_i in {0, 1}
//
// and delegates solving to Engine. Any status other than optimal is returned
// as an *EngineFailureError.
type ILPSolver struct {
	Engine ilp.Engine
	// TimeLimit bounds the engine call. Zero means no limit.
	TimeLimit time.Duration
}

func (*ILPSolver) Name() string { return ILP.DisplayName() }

func (s *ILPSolver) Solve(ctx context.Context, items []models.Item, c models.Container) (*models.Solution, error) {
	start := time.Now()
	if err := validate(items, c); err != nil {
		return nil, err
	}

	model, vars := buildKnapsackModel(items, c)

	if s.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.TimeLimit)
		defer cancel()
	}

	engine := s.Engine
	if engine == nil {
		engine = ilp.NewSATEngine()
	}

	res, err := engine.Solve(ctx, model)
	if err != nil {
		return nil, &EngineFailureError{Status: ilp.StatusUnknown, Err: err}
	}
	if res == nil {
		return nil, &EngineFailureError{Status: ilp.StatusUnknown}
	}
	slog.Debug("ilp engine finished", "items", len(items), "result", res.String())
	if !res.IsOptimal() {
		return nil, &EngineFailureError{Status: res.Status}
	}

	sol := models.NewSolution(s.Name(), c)
	for i, v := range vars {
		if res.Value(v) >= 0.5 {
			sol.Add(items[i])
		}
	}

	return finish(sol, start), nil
}

func buildKnapsackModel(items []models.Item, c models.Container) (*ilp.Model, []ilp.Var) {
	model := ilp.NewModel("knapsack")

	vars := make([]ilp.Var, len(items))
	weightTerms := make([]ilp.Term, len(items))
	countTerms := make([]ilp.Term, len(items))
	profitTerms := make([]ilp.Term, len(items))
	for i, it := range items {
		vars[i] = model.NewBinaryVar(fmt.Sprintf("x%d", it.ID))
		weightTerms[i] = ilp.Term{Var: vars[i], Coef: it.Weight}
		countTerms[i] = ilp.Term{Var: vars[i], Coef: 1}
		profitTerms[i] = ilp.Term{Var: vars[i], Coef: it.Profit}
	}

	model.AddConstraint("capacity", weightTerms, c.Capacity)
	if c.HasMaxItems() {
		model.AddConstraint("max_items", countTerms, float64(*c.MaxItems))
	}
	model.Maximize(profitTerms)

	return model, vars
}
