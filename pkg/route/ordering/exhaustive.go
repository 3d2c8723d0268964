package ordering

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/observability"
	"github.com/matzehuels/layerroute/pkg/perm"
	"github.com/matzehuels/layerroute/pkg/route"
)

// Exhaustive tries every permutation of the net indices in lexicographic
// order and keeps the best outcome.
type Exhaustive struct {
	Router *route.Router
	Policy grid.Policy

	// Timeout bounds the search. Zero means no limit beyond ctx.
	Timeout time.Duration
	// Limit caps the number of orders tried. Zero tries all n!.
	Limit int
	// Workers > 1 runs trials concurrently.
	Workers int
	// MaxNets rejects larger inputs. Zero means DefaultMaxNets.
	MaxNets int

	Progress ProgressFunc
}

// Optimize implements Optimizer.
//
// It fails with INVALID_INPUT when nets exceed MaxNets, and with TIMEOUT when
// the search is stopped before a single order was evaluated. A search stopped
// later returns the best outcome so far with Stats.Complete false.
func (e Exhaustive) Optimize(ctx context.Context, g *grid.Grid, nets []route.Net) (*Result, error) {
	maxNets := e.MaxNets
	if maxNets <= 0 {
		maxNets = DefaultMaxNets
	}
	if len(nets) > maxNets {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"%d nets exceed the exhaustive limit of %d; use the heuristic or auto strategy", len(nets), maxNets)
	}
	policy, err := normalizePolicy(e.Policy)
	if err != nil {
		return nil, err
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	s := &search{
		ctx:      ctx,
		router:   routerOrDefault(e.Router),
		grid:     g,
		policy:   policy,
		nets:     nets,
		total:    perm.Count(len(nets), e.Limit),
		progress: e.Progress,
		scores:   make(map[score]int),
	}

	start := time.Now()
	if e.Workers > 1 {
		err = s.runParallel(e.Workers, e.Limit)
	} else {
		err = s.runSerial(e.Limit)
	}
	elapsed := time.Since(start)
	observability.Routing().OnSearchComplete(ctx, string(StrategyExhaustive), s.trials, elapsed, err)
	if err != nil {
		return nil, err
	}

	if s.best == nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "order search stopped before any order was routed")
	}

	res := &Result{
		Best:      s.best,
		Occupancy: s.bestOcc,
		Stats:     s.stats(elapsed),
	}
	s.router.Logger.Debug("order search finished",
		"nets", len(nets),
		"trials", res.Stats.Trials,
		"complete", res.Stats.Complete,
		"order", res.Best.Order,
		"routed", res.Best.Routed,
		"cost", res.Best.TotalCost,
		"duration", elapsed)
	return res, nil
}

// search is the shared state of one Exhaustive run.
type search struct {
	ctx      context.Context
	router   *route.Router
	grid     *grid.Grid
	policy   grid.Policy
	nets     []route.Net
	total    int
	progress ProgressFunc

	mu       sync.Mutex
	trials   int
	costs    []float64
	scores   map[score]int
	best     *route.Outcome
	bestOcc  *grid.Occupancy
	bestRank int
}

func (s *search) runSerial(limit int) error {
	for rank, order := range perm.All(len(s.nets), limit) {
		if s.ctx.Err() != nil {
			return nil
		}
		if err := s.evaluate(s.ctx, rank, slices.Clone(order)); err != nil {
			return err
		}
	}
	return nil
}

func (s *search) runParallel(workers, limit int) error {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create worker pool")
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for rank, order := range perm.All(len(s.nets), limit) {
		if ctx.Err() != nil {
			break
		}
		order := slices.Clone(order)
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := s.evaluate(ctx, rank, order); err != nil {
				fail(err)
			}
		})
		if submitErr != nil {
			wg.Done()
			fail(errors.Wrap(errors.ErrCodeInternal, submitErr, "submit trial"))
			break
		}
	}
	wg.Wait()
	return firstErr
}

// evaluate routes one order and folds it into the best. Cancellation during
// the trial discards it.
func (s *search) evaluate(ctx context.Context, rank int, order []int) error {
	out, occ, err := trial(ctx, s.router, s.grid, s.policy, s.nets, order)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.trials++
	s.costs = append(s.costs, float64(out.TotalCost))
	s.scores[score{out.Routed, out.TotalCost}]++
	if s.best == nil || Better(out, s.best) || (!Better(s.best, out) && rank < s.bestRank) {
		s.best, s.bestOcc, s.bestRank = out, occ, rank
	}
	observability.Routing().OnTrialComplete(ctx, string(StrategyExhaustive), rank, out.Routed, out.TotalCost)
	if s.progress != nil {
		s.progress(s.trials, s.total, s.best.Routed, s.best.TotalCost)
	}
	return nil
}

func (s *search) stats(elapsed time.Duration) Stats {
	mean, std := costSpread(s.costs)
	return Stats{
		Strategy:   StrategyExhaustive,
		Trials:     s.trials,
		Total:      s.total,
		Complete:   s.trials == s.total,
		BestRank:   s.bestRank,
		Elapsed:    elapsed,
		MeanCost:   mean,
		StdDevCost: std,

		Distribution: distribution(s.scores),
	}
}
