package orchestration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/spboyer/loadout/internal/cache"
	"github.com/spboyer/loadout/internal/ilp"
	"github.com/spboyer/loadout/internal/models"
	"github.com/spboyer/loadout/internal/solver"
)

func fixture() ([]models.Item, models.Container) {
	items := []models.Item{
		models.NewItem(1, 10, 60),
		models.NewItem(2, 20, 100),
		models.NewItem(3, 30, 120),
		models.NewItem(4, 15, 70),
	}
	return items, models.Unlimited(50)
}

func TestRunner_RunAllAlgorithms(t *testing.T) {
	items, c := fixture()
	r := NewRunner(WithWorkers(2))

	outcomes := r.Run(context.Background(), items, c, solver.Algorithms())
	require.Len(t, outcomes, len(solver.Algorithms()))

	for i, o := range outcomes {
		assert.Equal(t, solver.Algorithms()[i], o.Algorithm, "outcomes keep input order")
		require.NoError(t, o.Err, o.Algorithm)
		require.NotNil(t, o.Solution)
		assert.NoError(t, o.Solution.Check(models.DefaultTolerance))
		if o.Algorithm.IsExact() {
			assert.InDelta(t, 230.0, o.Solution.TotalProfit, 1e-9, o.Algorithm)
		}
	}
	assert.NoError(t, FirstError(outcomes))
	assert.Len(t, Solutions(outcomes), len(outcomes))
}

func TestRunner_DoesNotMutateInput(t *testing.T) {
	items, c := fixture()
	before := append([]models.Item(nil), items...)

	NewRunner().Run(context.Background(), items, c, solver.Algorithms())
	assert.Equal(t, before, items)
}

func TestRunner_FailureIsPerAlgorithm(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := ilp.NewMockEngine(ctrl)
	engine.EXPECT().Solve(gomock.Any(), gomock.Any()).Return(&ilp.Result{Status: ilp.StatusInfeasible}, nil)

	r := NewRunner(WithOptions(func(alg solver.Algorithm) (solver.Options, error) {
		return solver.Options{Engine: engine}, nil
	}))

	items, c := fixture()
	outcomes := r.Run(context.Background(), items, c, []solver.Algorithm{solver.DynamicProgramming, solver.ILP})

	require.NoError(t, outcomes[0].Err)
	require.Error(t, outcomes[1].Err)
	assert.ErrorIs(t, outcomes[1].Err, solver.ErrEngineFailure)
	var engErr *solver.EngineFailureError
	require.True(t, errors.As(outcomes[1].Err, &engErr))
	assert.Equal(t, ilp.StatusInfeasible, engErr.Status)
	assert.Equal(t, outcomes[1].Err, FirstError(outcomes))
	assert.Len(t, Solutions(outcomes), 1)
}

func TestRunner_OptionsError(t *testing.T) {
	boom := errors.New("bad solver options")
	r := NewRunner(WithOptions(func(solver.Algorithm) (solver.Options, error) {
		return solver.Options{}, boom
	}))

	items, c := fixture()
	out := r.Solve(context.Background(), solver.Greedy, items, c)
	assert.ErrorIs(t, out.Err, boom)
	assert.Nil(t, out.Solution)
}

func TestRunner_UnknownAlgorithm(t *testing.T) {
	items, c := fixture()
	out := NewRunner().Solve(context.Background(), solver.Algorithm("simulated-annealing"), items, c)
	assert.ErrorIs(t, out.Err, solver.ErrUnknownAlgorithm)
}

func TestRunner_Cache(t *testing.T) {
	store := cache.New(t.TempDir())
	r := NewRunner(WithCache(store))
	items, c := fixture()

	first := r.Solve(context.Background(), solver.Backtracking, items, c)
	require.NoError(t, first.Err)
	assert.False(t, first.Cached)

	second := r.Solve(context.Background(), solver.Backtracking, items, c)
	require.NoError(t, second.Err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Solution, second.Solution)

	// A different capacity is a different key.
	third := r.Solve(context.Background(), solver.Backtracking, items, models.Unlimited(40))
	require.NoError(t, third.Err)
	assert.False(t, third.Cached)
}

func TestRunner_ProgressEvents(t *testing.T) {
	store := cache.New(t.TempDir())
	r := NewRunner(WithCache(store), WithWorkers(1))

	var mu sync.Mutex
	counts := map[EventType]int{}
	r.OnProgress(func(e ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		counts[e.EventType]++
		assert.Equal(t, 2, e.Total)
	})

	items, c := fixture()
	algs := []solver.Algorithm{solver.Greedy, solver.Algorithm("nope")}
	r.Run(context.Background(), items, c, algs)
	r.Run(context.Background(), items, c, algs)

	assert.Equal(t, 4, counts[EventSolveStart])
	assert.Equal(t, 1, counts[EventSolveComplete])
	assert.Equal(t, 1, counts[EventSolveCached])
	assert.Equal(t, 2, counts[EventSolveFailed])
}

func TestNewRunner_NonPositiveWorkers(t *testing.T) {
	r := NewRunner(WithWorkers(0))
	assert.Equal(t, DefaultWorkers, r.workers)
}

func TestIsInapplicable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"table too large", solver.ErrTableTooLarge, true},
		{"wrapped non integral", errors.Join(errors.New("dp"), solver.ErrNonIntegral), true},
		{"engine failure", &solver.EngineFailureError{Status: ilp.StatusInfeasible}, false},
		{"invalid input", models.ErrInvalidInput, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInapplicable(tt.err))
		})
	}
}
