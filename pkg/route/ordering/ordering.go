package ordering

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/route"
)

// Optimizer chooses a net-processing order and routes the nets in it.
type Optimizer interface {
	Optimize(ctx context.Context, g *grid.Grid, nets []route.Net) (*Result, error)
}

// Result is the best outcome an Optimizer found.
type Result struct {
	// Best is the winning trial. Best.Order is the processing order.
	Best *route.Outcome
	// Occupancy is the grid state after routing Best.
	Occupancy *grid.Occupancy
	Stats     Stats
}

// Stats describes an order search.
type Stats struct {
	Strategy Strategy `json:"strategy"`
	// Trials counts the orders routed; Total is how many were planned.
	Trials int `json:"trials"`
	Total  int `json:"total"`
	// Complete is false when a timeout or cancellation cut the search short.
	Complete bool `json:"complete"`
	// BestRank is the enumeration rank of the winning order.
	BestRank int           `json:"best_rank"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	// Cost distribution over all trials.
	MeanCost   float64 `json:"mean_cost"`
	StdDevCost float64 `json:"stddev_cost"`
	// Distribution groups the trials by score, best first.
	Distribution []Bucket `json:"distribution,omitempty"`
}

// Bucket counts the trials that ended with the same score.
type Bucket struct {
	Routed int `json:"routed"`
	Cost   int `json:"cost"`
	Orders int `json:"orders"`
}

// distribution flattens per-score counts into buckets, more routed nets
// first and then lower cost.
func distribution(counts map[score]int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for sc, n := range counts {
		out = append(out, Bucket{Routed: sc.routed, Cost: sc.cost, Orders: n})
	}
	slices.SortFunc(out, func(a, b Bucket) int {
		if a.Routed != b.Routed {
			return b.Routed - a.Routed
		}
		return a.Cost - b.Cost
	})
	return out
}

type score struct{ routed, cost int }

// Better reports whether a scores strictly higher than b: more nets routed,
// then lower total cost. A nil b loses to any non-nil a.
func Better(a, b *route.Outcome) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	if a.Routed != b.Routed {
		return a.Routed > b.Routed
	}
	return a.TotalCost < b.TotalCost
}

// Strategy names an order search.
type Strategy string

const (
	StrategyExhaustive Strategy = "exhaustive"
	StrategyHeuristic  Strategy = "heuristic"
	StrategySequential Strategy = "sequential"
	StrategyAuto       Strategy = "auto"
)

// DefaultMaxNets is the largest net count Exhaustive accepts by default.
// 9! = 362880 orders.
const DefaultMaxNets = 9

// Strategies lists every strategy name, for flag help and validation.
func Strategies() []Strategy {
	return []Strategy{StrategyExhaustive, StrategyHeuristic, StrategySequential, StrategyAuto}
}

// ParseStrategy parses a strategy name case-insensitively. The empty string
// selects StrategyAuto.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return StrategyAuto, nil
	}
	for _, st := range Strategies() {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown strategy %q (want exhaustive, heuristic, sequential or auto)", s)
}

// Options configures New.
type Options struct {
	Router   *route.Router
	Policy   grid.Policy
	Timeout  time.Duration
	Limit    int
	Workers  int
	MaxNets  int
	Progress ProgressFunc
}

// ProgressFunc is called after every exhaustive trial with the number of
// orders explored so far, the planned total and the best score so far.
type ProgressFunc func(explored, total, bestRouted, bestCost int)

// New builds the optimizer for a strategy.
func New(s Strategy, opts Options) (Optimizer, error) {
	ex := Exhaustive{
		Router:   opts.Router,
		Policy:   opts.Policy,
		Timeout:  opts.Timeout,
		Limit:    opts.Limit,
		Workers:  opts.Workers,
		MaxNets:  opts.MaxNets,
		Progress: opts.Progress,
	}
	switch s {
	case StrategyExhaustive:
		return ex, nil
	case StrategyHeuristic:
		return Heuristic{Router: opts.Router, Policy: opts.Policy}, nil
	case StrategySequential:
		return Sequential{Router: opts.Router, Policy: opts.Policy}, nil
	case StrategyAuto, "":
		return Auto{Exhaustive: ex}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown strategy %q", s)
	}
}

func routerOrDefault(r *route.Router) *route.Router {
	if r == nil {
		return route.NewRouter(nil, nil)
	}
	return r
}

// trial routes nets in one order against a fresh model.
func trial(ctx context.Context, r *route.Router, g *grid.Grid, policy grid.Policy, nets []route.Net, order []int) (*route.Outcome, *grid.Occupancy, error) {
	m := grid.NewModel(g, policy)
	out, err := r.Route(ctx, m, nets, order)
	if err != nil {
		return nil, nil, err
	}
	return out, m.Occupancy, nil
}

func normalizePolicy(p grid.Policy) (grid.Policy, error) {
	np, err := p.Normalize()
	if err != nil {
		return p, errors.Wrap(errors.ErrCodeInvalidInput, err, "occupancy policy")
	}
	return np, nil
}
