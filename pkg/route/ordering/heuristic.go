package ordering

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/observability"
	"github.com/matzehuels/layerroute/pkg/perm"
	"github.com/matzehuels/layerroute/pkg/route"
)

// Heuristic routes once, shortest nets first. Nets are ranked by Manhattan
// distance plus layer span; ties keep input order. Short nets claim few
// cells, leaving more room for the long ones.
type Heuristic struct {
	Router *route.Router
	Policy grid.Policy
}

// Optimize implements Optimizer.
func (h Heuristic) Optimize(ctx context.Context, g *grid.Grid, nets []route.Net) (*Result, error) {
	return single(ctx, StrategyHeuristic, h.Router, h.Policy, g, nets, ShortestFirst(nets))
}

// ShortestFirst returns net indices sorted by ascending Manhattan distance
// plus layer span, then by index.
func ShortestFirst(nets []route.Net) []int {
	order := perm.Seq(len(nets))
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(span(nets[a]), span(nets[b]))
	})
	return order
}

func span(n route.Net) int { return n.Manhattan() + n.LayerSpan() }

// Sequential routes once in input order.
type Sequential struct {
	Router *route.Router
	Policy grid.Policy
}

// Optimize implements Optimizer.
func (s Sequential) Optimize(ctx context.Context, g *grid.Grid, nets []route.Net) (*Result, error) {
	return single(ctx, StrategySequential, s.Router, s.Policy, g, nets, perm.Seq(len(nets)))
}

// Auto runs Exhaustive when the net count is within its MaxNets and
// Heuristic otherwise.
type Auto struct {
	Exhaustive
}

// Optimize implements Optimizer.
func (a Auto) Optimize(ctx context.Context, g *grid.Grid, nets []route.Net) (*Result, error) {
	maxNets := a.MaxNets
	if maxNets <= 0 {
		maxNets = DefaultMaxNets
	}
	if len(nets) > maxNets {
		routerOrDefault(a.Router).Logger.Debug("too many nets for exhaustive search, using heuristic order",
			"nets", len(nets), "max", maxNets)
		return Heuristic{Router: a.Router, Policy: a.Policy}.Optimize(ctx, g, nets)
	}
	return a.Exhaustive.Optimize(ctx, g, nets)
}

func single(ctx context.Context, name Strategy, r *route.Router, p grid.Policy, g *grid.Grid, nets []route.Net, order []int) (*Result, error) {
	policy, err := normalizePolicy(p)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, occ, err := trial(ctx, routerOrDefault(r), g, policy, nets, order)
	elapsed := time.Since(start)
	observability.Routing().OnSearchComplete(ctx, string(name), 1, elapsed, err)
	if err != nil {
		return nil, err
	}
	observability.Routing().OnTrialComplete(ctx, string(name), 0, out.Routed, out.TotalCost)

	return &Result{
		Best:      out,
		Occupancy: occ,
		Stats: Stats{
			Strategy: name,
			Trials:   1,
			Total:    1,
			Complete: true,
			Elapsed:  elapsed,
			MeanCost: float64(out.TotalCost),

			Distribution: []Bucket{{Routed: out.Routed, Cost: out.TotalCost, Orders: 1}},
		},
	}, nil
}
