package solver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/spboyer/loadout/internal/ilp"
	"github.com/spboyer/loadout/internal/models"
)

func TestILPSolver_BuildsKnapsackModel(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := ilp.NewMockEngine(ctrl)

	items := []models.Item{models.NewItem(10, 6, 7), models.NewItem(20, 5, 5), models.NewItem(30, 5, 5)}

	engine.EXPECT().
		Solve(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *ilp.Model) (*ilp.Result, error) {
			require.Equal(t, 3, m.NumVars())
			require.Len(t, m.Constraints(), 2)
			assert.Equal(t, "capacity", m.Constraints()[0].Name)
			assert.InDelta(t, 10, m.Constraints()[0].Upper, 0)
			assert.Equal(t, "max_items", m.Constraints()[1].Name)
			assert.InDelta(t, 2, m.Constraints()[1].Upper, 0)
			return &ilp.Result{Status: ilp.StatusOptimal, Values: []float64{0, 0.9999, 1}, Objective: 10}, nil
		})

	sol, err := (&ILPSolver{Engine: engine}).Solve(context.Background(), items, models.WithMaxItems(10, 2))
	require.NoError(t, err)
	assert.Equal(t, []int{20, 30}, sol.SelectedIDs())
	assert.InDelta(t, 10, sol.TotalProfit, 1e-12)
	assert.Equal(t, "Integer Linear Programming", sol.Algorithm)
}

func TestILPSolver_NoCountRowWithoutLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := ilp.NewMockEngine(ctrl)

	engine.EXPECT().
		Solve(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *ilp.Model) (*ilp.Result, error) {
			assert.Len(t, m.Constraints(), 1)
			return &ilp.Result{Status: ilp.StatusOptimal, Values: []float64{0}}, nil
		})

	sol, err := (&ILPSolver{Engine: engine}).Solve(context.Background(),
		[]models.Item{models.NewItem(1, 2, 3)}, models.Unlimited(1))
	require.NoError(t, err)
	assert.Empty(t, sol.SelectedItems)
}

func TestILPSolver_EngineFailures(t *testing.T) {
	engineErr := errors.New("engine crashed")

	tests := []struct {
		name       string
		result     *ilp.Result
		err        error
		wantStatus ilp.Status
	}{
		{name: "infeasible", result: &ilp.Result{Status: ilp.StatusInfeasible}, wantStatus: ilp.StatusInfeasible},
		{name: "time limit", result: &ilp.Result{Status: ilp.StatusTimeLimit, Values: []float64{1}}, wantStatus: ilp.StatusTimeLimit},
		{name: "feasible only", result: &ilp.Result{Status: ilp.StatusFeasible, Values: []float64{1}}, wantStatus: ilp.StatusFeasible},
		{name: "engine error", err: engineErr, wantStatus: ilp.StatusUnknown},
		{name: "nil result", wantStatus: ilp.StatusUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			engine := ilp.NewMockEngine(ctrl)
			engine.EXPECT().Solve(gomock.Any(), gomock.Any()).Return(tt.result, tt.err)

			sol, err := (&ILPSolver{Engine: engine}).Solve(context.Background(),
				[]models.Item{models.NewItem(1, 1, 1)}, models.Unlimited(5))
			require.ErrorIs(t, err, ErrEngineFailure)
			assert.Nil(t, sol)

			var failure *EngineFailureError
			require.True(t, errors.As(err, &failure))
			assert.Equal(t, tt.wantStatus, failure.Status)
			if tt.err != nil {
				assert.ErrorIs(t, err, engineErr)
			}
		})
	}
}

func TestILPSolver_TimeLimitSetsDeadline(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := ilp.NewMockEngine(ctrl)

	engine.EXPECT().
		Solve(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *ilp.Model) (*ilp.Result, error) {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return &ilp.Result{Status: ilp.StatusOptimal}, nil
		})

	_, err := (&ILPSolver{Engine: engine, TimeLimit: time.Minute}).Solve(context.Background(), nil, models.Unlimited(1))
	require.NoError(t, err)
}

func TestILPSolver_DefaultEngine(t *testing.T) {
	items := []models.Item{models.NewItem(1, 6, 7), models.NewItem(2, 5, 5), models.NewItem(3, 5, 5)}
	sol, err := (&ILPSolver{}).Solve(context.Background(), items, models.Unlimited(10))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{2, 3}, sol.SelectedIDs())
}
