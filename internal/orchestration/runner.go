// Package orchestration runs several solvers over the same input, checks
// their answers against each other and benchmarks them.
package orchestration

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spboyer/loadout/internal/cache"
	"github.com/spboyer/loadout/internal/models"
	"github.com/spboyer/loadout/internal/solver"
)

// DefaultWorkers bounds concurrent solves when no worker count is set.
const DefaultWorkers = 4

// Runner solves one instance with several algorithms.
type Runner struct {
	workers int
	cache   cache.Store
	options OptionsFunc

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// OptionsFunc supplies the solver options for an algorithm, usually from
// project configuration.
type OptionsFunc func(solver.Algorithm) (solver.Options, error)

// Outcome is the result of one algorithm. Err is set instead of Solution
// when the solver failed; a failure never aborts the other algorithms.
type Outcome struct {
	Algorithm solver.Algorithm
	Solution  *models.Solution
	Cached    bool
	Err       error
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventSolveStart    EventType = "solve_start"
	EventSolveComplete EventType = "solve_complete"
	EventSolveCached   EventType = "solve_cached"
	EventSolveFailed   EventType = "solve_failed"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType  EventType
	Algorithm  solver.Algorithm
	Index      int
	Total      int
	DurationMs int64
	Err        error
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers caps how many solvers run at once.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithCache enables result caching
func WithCache(c cache.Store) RunnerOption {
	return func(r *Runner) {
		r.cache = c
	}
}

// WithOptions sets the per-algorithm option source.
func WithOptions(fn OptionsFunc) RunnerOption {
	return func(r *Runner) {
		r.options = fn
	}
}

// NewRunner creates a new runner
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		workers:   DefaultWorkers,
		listeners: []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	if r.workers <= 0 {
		r.workers = DefaultWorkers
	}
	return r
}

// OnProgress registers a progress listener
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run solves the instance with every algorithm in algs, at most workers at a
// time. Outcomes are returned in the order of algs. Each solver gets its own
// copy of the items and container.
func (r *Runner) Run(ctx context.Context, items []models.Item, c models.Container, algs []solver.Algorithm) []Outcome {
	outcomes := make([]Outcome, len(algs))

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, alg := range algs {
		itemsCopy := slices.Clone(items)
		containerCopy := c.Clone()
		g.Go(func() error {
			r.notifyProgress(ProgressEvent{EventType: EventSolveStart, Algorithm: alg, Index: i + 1, Total: len(algs)})

			outcome := r.solve(ctx, alg, itemsCopy, containerCopy)
			outcomes[i] = outcome

			event := ProgressEvent{Algorithm: alg, Index: i + 1, Total: len(algs), Err: outcome.Err}
			switch {
			case outcome.Err != nil:
				event.EventType = EventSolveFailed
			case outcome.Cached:
				event.EventType = EventSolveCached
			default:
				event.EventType = EventSolveComplete
				event.DurationMs = outcome.Solution.ExecutionTimeMicros / 1000
			}
			r.notifyProgress(event)
			return nil
		})
	}

	_ = g.Wait() // goroutines record failures in their Outcome
	return outcomes
}

// Solve runs a single algorithm.
func (r *Runner) Solve(ctx context.Context, alg solver.Algorithm, items []models.Item, c models.Container) Outcome {
	return r.solve(ctx, alg, items, c)
}

func (r *Runner) solve(ctx context.Context, alg solver.Algorithm, items []models.Item, c models.Container) Outcome {
	out := Outcome{Algorithm: alg}

	var opts solver.Options
	if r.options != nil {
		o, err := r.options(alg)
		if err != nil {
			out.Err = err
			return out
		}
		opts = o
	}

	var key string
	if r.cache != nil {
		k, err := cache.Key(alg, opts, items, c)
		if err == nil {
			key = k
			if sol, found := r.cache.Get(ctx, key); found {
				slog.Debug("cache hit", "algorithm", alg, "key", key)
				out.Solution = sol
				out.Cached = true
				return out
			}
		}
	}

	s, err := solver.New(alg, opts)
	if err != nil {
		out.Err = err
		return out
	}

	start := time.Now()
	sol, err := s.Solve(ctx, items, c)
	if err != nil {
		slog.Debug("solver failed", "algorithm", alg, "elapsed", time.Since(start), "error", err)
		out.Err = err
		return out
	}
	out.Solution = sol

	if key != "" {
		if err := r.cache.Put(ctx, key, sol); err != nil {
			slog.Warn("failed to write cache", "algorithm", alg, "error", err)
		}
	}
	return out
}

// Solutions returns the successful solutions in outcome order.
func Solutions(outcomes []Outcome) []*models.Solution {
	var sols []*models.Solution
	for _, o := range outcomes {
		if o.Solution != nil {
			sols = append(sols, o.Solution)
		}
	}
	return sols
}

// FirstError returns the first failure, if any.
func FirstError(outcomes []Outcome) error {
	for _, o := range outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}

// IsInapplicable reports whether err means the algorithm cannot handle this
// input (fractional weights for dynamic programming, or a table too large)
// as opposed to a genuine failure.
func IsInapplicable(err error) bool {
	return errors.Is(err, solver.ErrTableTooLarge) || errors.Is(err, solver.ErrNonIntegral)
}
